package cmd

import (
	"context"
	"log/slog"

	"github.com/nfrund/accountdash/internal/config"
	"github.com/nfrund/accountdash/internal/logging"
	"github.com/nfrund/accountdash/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server until interrupted.

Without SURREAL_URL the server keeps users in memory; set DEV_USER_EMAIL and
DEV_USER_PASSWORD to seed an account for local development.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logging.New(cfg.GetLogFormat(), cfg.GetLogLevel())

		ctx, stop := server.WaitForShutdown(context.Background())
		defer stop()

		s, err := server.Build(ctx, cfg)
		if err != nil {
			slog.Error("Failed to build server", "error", err)
			return err
		}
		return s.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
