package resolve

import (
	"context"

	"github.com/tkoester/pinset/pkg/integrations/pypi"
)

// PyPIFetcher adapts a [pypi.Client] to the [Fetcher] interface.
type PyPIFetcher struct {
	client *pypi.Client
}

// NewPyPIFetcher wraps a PyPI client for use by a Resolver.
func NewPyPIFetcher(client *pypi.Client) *PyPIFetcher {
	return &PyPIFetcher{client: client}
}

// Fetch retrieves release metadata. With a version it fetches that exact
// release; without one it fetches the latest.
func (f *PyPIFetcher) Fetch(ctx context.Context, name, version string, refresh bool) (*Package, error) {
	if version == "" {
		info, err := f.client.FetchPackage(ctx, name, refresh)
		if err != nil {
			return nil, err
		}
		return &Package{
			Name:         info.Name,
			Version:      info.Version,
			Dependencies: info.Dependencies,
			Summary:      info.Summary,
			License:      info.License,
		}, nil
	}

	info, err := f.client.FetchRelease(ctx, name, version, refresh)
	if err != nil {
		return nil, err
	}
	return &Package{
		Name:         info.Name,
		Version:      info.Version,
		Dependencies: info.Dependencies,
		Summary:      info.Summary,
		Yanked:       info.Yanked,
	}, nil
}

var _ Fetcher = (*PyPIFetcher)(nil)
