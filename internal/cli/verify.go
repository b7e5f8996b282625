package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/integrations"
	"github.com/tkoester/pinset/pkg/integrations/pypi"
	"github.com/tkoester/pinset/pkg/manifest"
)

// verifyOpts holds the command-line flags for the verify command.
type verifyOpts struct {
	refresh bool // bypass HTTP cache
	noCache bool // disable caching entirely
}

// newVerifyCmd creates the verify command.
//
// Verify checks every top-level pin against the registry: the pinned
// release must exist and must not have been yanked. Transitive entries
// are informational and are not checked.
func newVerifyCmd() *cobra.Command {
	opts := verifyOpts{}

	cmd := &cobra.Command{
		Use:   "verify [file]",
		Short: "Check that every pin exists on PyPI and is not yanked",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args)
			if err != nil {
				return err
			}
			return runVerify(cmd.Context(), m, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP cache")
	return cmd
}

func runVerify(ctx context.Context, m *manifest.Manifest, opts *verifyOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	client := newPyPIClient(cfg, newCacheBackend(ctx, cfg, opts.noCache))

	spin := newSpinner(ctx, fmt.Sprintf("Checking %d pins against PyPI", len(m.Pins)))
	spin.Start()

	prog := newProgress(logger)
	var problems int
	type verdict struct {
		pin  *manifest.Pin
		info *pypi.ReleaseInfo
		err  error
	}
	verdicts := make([]verdict, 0, len(m.Pins))
	for _, p := range m.Pins {
		info, err := client.FetchRelease(ctx, p.Name, p.Version, opts.refresh)
		verdicts = append(verdicts, verdict{pin: p, info: info, err: err})
		if ctx.Err() != nil {
			spin.Stop()
			return ctx.Err()
		}
	}
	spin.Stop()

	for _, v := range verdicts {
		switch {
		case errors.Is(v.err, integrations.ErrNotFound):
			problems++
			printError("%s: release not found on PyPI (line %d)", v.pin.Spec(), v.pin.Line)
		case v.err != nil:
			return fmt.Errorf("verify %s: %w", v.pin.Spec(), v.err)
		case v.info.Yanked:
			problems++
			if v.info.YankedReason != "" {
				printError("%s: release was yanked: %s", v.pin.Spec(), v.info.YankedReason)
			} else {
				printError("%s: release was yanked", v.pin.Spec())
			}
		default:
			logger.Debugf("%s ok", v.pin.Spec())
		}
	}

	prog.done(fmt.Sprintf("Checked %d pins", len(m.Pins)))

	if problems > 0 {
		return fmt.Errorf("%d pins failed verification", problems)
	}
	printSuccess("All %d pins exist and are not yanked", len(m.Pins))
	return nil
}
