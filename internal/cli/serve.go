package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tkoester/pinset/internal/server"
	"github.com/tkoester/pinset/pkg/audit"
	"github.com/tkoester/pinset/pkg/config"
	"github.com/tkoester/pinset/pkg/store"
)

// newServeCmd creates the serve command.
//
// Serve runs the HTTP API: POST /v1/lint and /v1/audit accept raw
// manifest text, audit reports are stored and retrievable under
// /v1/reports. Reports live in memory unless a MongoDB URI is
// configured.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the lint/audit HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := loggerFromContext(ctx)

			if addr == "" {
				addr = cfg.Server.Addr
			}

			reports, err := newReportStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer reports.Close(context.WithoutCancel(ctx))

			srv := server.New(server.Config{
				Addr:    addr,
				Auditor: audit.New(newOSVClient(cfg, newCacheBackend(ctx, cfg, false))),
				Store:   reports,
				Logger:  logger,
			})
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	return cmd
}

// newReportStore selects the report store: MongoDB when configured,
// otherwise in-memory.
func newReportStore(ctx context.Context, cfg *config.Config) (store.ReportStore, error) {
	if cfg.Server.MongoURI != "" {
		return store.NewMongoStore(ctx, cfg.Server.MongoURI, cfg.Server.MongoDB)
	}
	return store.NewMemoryStore(), nil
}
