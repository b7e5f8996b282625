package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/pkg/buildinfo"
	"github.com/tkoester/pinset/pkg/config"
)

// Execute runs the pinset CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, loads the optional config file,
// and executes the command tree.
//
// The logger is attached to the context and accessible to all commands
// via loggerFromContext; the loaded config via configFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          appName,
		Short:        "pinset keeps pinned Python requirements honest",
		Long:         `pinset lints, verifies and audits pinned requirements manifests: exact name==version pin lists with advisory citations in comments and indented transitive listings.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/pinset/config.toml)")

	root.AddCommand(newLintCmd())
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newOutdatedCmd())
	root.AddCommand(newAuditCmd())
	root.AddCommand(newTreeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newBumpCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
