package osv

import (
	"context"
	"strings"
	"time"

	"github.com/tkoester/pinset/pkg/cache"
	"github.com/tkoester/pinset/pkg/integrations"
)

// DefaultBaseURL is the production OSV API endpoint.
const DefaultBaseURL = "https://api.osv.dev/v1"

// Vulnerability is one advisory affecting a queried package version.
type Vulnerability struct {
	ID       string    `json:"id"`                 // OSV id (e.g. "PYSEC-2021-140")
	Aliases  []string  `json:"aliases,omitempty"`  // CVE/GHSA aliases
	Summary  string    `json:"summary,omitempty"`  // One-line description
	Details  string    `json:"details,omitempty"`  // Full advisory text
	Modified time.Time `json:"modified,omitempty"` // Last advisory update
}

// IDs returns the OSV id plus all aliases, for matching against cited
// advisory identifiers.
func (v *Vulnerability) IDs() []string {
	ids := make([]string, 0, len(v.Aliases)+1)
	ids = append(ids, v.ID)
	ids = append(ids, v.Aliases...)
	return ids
}

// Matches reports whether id names this vulnerability, either directly or
// through an alias. Comparison is case-insensitive.
func (v *Vulnerability) Matches(id string) bool {
	for _, candidate := range v.IDs() {
		if strings.EqualFold(candidate, id) {
			return true
		}
	}
	return false
}

// Client provides access to the OSV.dev API.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates an OSV client with the given cache backend.
// An empty baseURL selects [DefaultBaseURL].
func NewClient(backend cache.Cache, baseURL string, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Client:  integrations.NewClient(backend, "osv", cacheTTL, nil),
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Query returns the known vulnerabilities affecting the exact version of a
// PyPI package. A package with no known vulnerabilities yields an empty
// slice, not an error.
func (c *Client) Query(ctx context.Context, pkg, version string, refresh bool) ([]Vulnerability, error) {
	pkg = integrations.NormalizePkgName(pkg)
	key := pkg + "==" + version

	var resp queryResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		payload := queryRequest{Version: version}
		payload.Package.Name = pkg
		payload.Package.Ecosystem = "PyPI"
		return c.Post(ctx, c.baseURL+"/query", payload, &resp)
	})
	if err != nil {
		return nil, err
	}
	return resp.Vulns, nil
}

type queryRequest struct {
	Version string `json:"version"`
	Package struct {
		Name      string `json:"name"`
		Ecosystem string `json:"ecosystem"`
	} `json:"package"`
}

type queryResponse struct {
	Vulns []Vulnerability `json:"vulns"`
}
