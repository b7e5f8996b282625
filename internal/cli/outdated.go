package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/config"
	"github.com/tkoester/pinset/pkg/integrations/pypi"
	"github.com/tkoester/pinset/pkg/manifest"
	"github.com/tkoester/pinset/pkg/pep440"
)

// staleness describes how one pin compares to the latest release.
type staleness struct {
	Pin    *manifest.Pin
	Latest string
	Behind bool
}

// newOutdatedCmd creates the outdated command.
//
// Outdated compares every top-level pin against the latest release on
// the registry. Pins behind the latest release are listed; the command
// itself does not fail, since an old pin may be deliberate.
func newOutdatedCmd() *cobra.Command {
	var refresh, noCache bool

	cmd := &cobra.Command{
		Use:   "outdated [file]",
		Short: "List pins that are behind the latest release",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			client := newPyPIClient(cfg, newCacheBackend(ctx, cfg, noCache))

			results, err := checkStaleness(ctx, client, m, refresh)
			if err != nil {
				return err
			}
			printStaleness(results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the HTTP cache")
	return cmd
}

// checkStaleness fetches the latest release for every pin and compares
// versions. A pin whose version does not parse is reported as current;
// lint owns version syntax.
func checkStaleness(ctx context.Context, client *pypi.Client, m *manifest.Manifest, refresh bool) ([]staleness, error) {
	logger := loggerFromContext(ctx)

	spin := newSpinner(ctx, fmt.Sprintf("Fetching latest releases for %d pins", len(m.Pins)))
	spin.Start()
	defer spin.Stop()

	prog := newProgress(logger)
	results := make([]staleness, 0, len(m.Pins))
	for _, p := range m.Pins {
		info, err := client.FetchPackage(ctx, p.Name, refresh)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", p.Name, err)
		}

		s := staleness{Pin: p, Latest: info.Version}
		pinned, errA := pep440.Parse(p.Version)
		latest, errB := pep440.Parse(info.Version)
		if errA == nil && errB == nil {
			s.Behind = pinned.Less(latest)
		}
		results = append(results, s)
	}
	prog.done(fmt.Sprintf("Compared %d pins", len(m.Pins)))
	return results, nil
}

func printStaleness(results []staleness) {
	behind := 0
	for _, s := range results {
		if !s.Behind {
			continue
		}
		behind++
		printInfo("%s %s %s", s.Pin.Spec(), StyleDim.Render(iconArrow), StyleHighlight.Render(s.Latest))
	}
	if behind == 0 {
		printSuccess("All %d pins are at the latest release", len(results))
		return
	}
	printDetail("%d of %d pins behind latest", behind, len(results))
}

// outdatedPins returns only the pins that are behind, for the bump picker.
func outdatedPins(ctx context.Context, cfg *config.Config, m *manifest.Manifest, refresh bool) ([]staleness, error) {
	client := newPyPIClient(cfg, newCacheBackend(ctx, cfg, false))
	results, err := checkStaleness(ctx, client, m, refresh)
	if err != nil {
		return nil, err
	}
	var behind []staleness
	for _, s := range results {
		if s.Behind {
			behind = append(behind, s)
		}
	}
	return behind, nil
}
