package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/audit"
	"github.com/tkoester/pinset/pkg/manifest"
)

// auditOpts holds the command-line flags for the audit command.
type auditOpts struct {
	refresh bool
	noCache bool
	asJSON  bool
}

// newAuditCmd creates the audit command.
//
// Audit queries OSV.dev for every pin and cross-references the advisory
// identifiers cited in the manifest's comments. A pinned version with a
// known vulnerability fails the command; a cited advisory that no
// longer applies is reported as confirmation that the documented bump
// worked.
func newAuditCmd() *cobra.Command {
	opts := auditOpts{}

	cmd := &cobra.Command{
		Use:   "audit [file]",
		Short: "Check pins against OSV vulnerability data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args)
			if err != nil {
				return err
			}
			return runAudit(cmd.Context(), m, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the HTTP cache")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "output the report as JSON")
	return cmd
}

func runAudit(ctx context.Context, m *manifest.Manifest, opts *auditOpts) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	auditor := audit.New(newOSVClient(cfg, newCacheBackend(ctx, cfg, opts.noCache)))

	spin := newSpinner(ctx, fmt.Sprintf("Querying OSV for %d pins", len(m.Pins)))
	spin.Start()

	prog := newProgress(logger)
	report, err := auditor.Audit(ctx, m, opts.refresh)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Audited %d pins", report.Pins))

	if opts.asJSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	printAuditReport(report)
	if !report.Ok() {
		return fmt.Errorf("%d pins have known vulnerabilities", report.Errors)
	}
	return nil
}

func printAuditReport(report *audit.Report) {
	for _, f := range report.Findings {
		switch f.Kind {
		case audit.KindVulnerable:
			printError("%s", f.String())
			if f.Summary != "" {
				printDetail("%s", f.Summary)
			}
		case audit.KindCitedActive:
			printError("%s==%s: cited advisory still affects the pinned version", f.Package, f.Version)
			printDetail("line %d cites %v", f.Line, f.IDs)
		case audit.KindCitedFixed:
			printDetail("%s==%s: cited %v no longer apply", f.Package, f.Version, f.IDs)
		}
	}

	if report.Ok() {
		printSuccess("No known vulnerabilities in %d pins", report.Pins)
	}
	printDetail("report id: %s", report.ID)
}
