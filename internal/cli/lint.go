package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/manifest"
)

// newLintCmd creates the lint command.
//
// Lint checks the structural rules of a pin list: every non-comment line
// must have the name==version shape, names must be valid package names,
// versions must parse, and no package may be pinned twice at different
// versions. Warnings do not fail the command; errors do.
func newLintCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lint [file]",
		Short: "Check a pinned requirements manifest for structural problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(args)
			if err != nil {
				return err
			}
			report := m.Lint()

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(report)
			}
			printLintReport(m, report)
			if !report.Ok() {
				return fmt.Errorf("%d lint errors in %s", report.Errors, manifestArg(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output the report as JSON")
	return cmd
}

func printLintReport(m *manifest.Manifest, report *manifest.LintReport) {
	for _, f := range report.Findings {
		switch f.Severity {
		case manifest.SeverityError:
			printError("%s", f.String())
		case manifest.SeverityWarning:
			printWarning("%s", f.String())
		}
	}

	if report.Ok() {
		if report.Warnings > 0 {
			printSuccess("No errors (%d warnings)", report.Warnings)
		} else {
			printSuccess("Manifest is clean")
		}
	}
	printStats(len(m.Pins), len(report.Findings))
}
