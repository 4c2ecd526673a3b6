// Command refresh recomputes the water system aggregate columns through the
// hosted backend's admin API, for when the ingest run skipped that step.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/adminapi"
	"github.com/tapsafe/sdwis-ingest/internal/config"
	"github.com/tapsafe/sdwis-ingest/internal/maintenance"
	"github.com/tapsafe/sdwis-ingest/internal/observability"
)

func main() {
	cmd := &cobra.Command{
		Use:           "refresh",
		Short:         "Recompute computed fields on water_systems via the admin API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context())
		},
	}
	if err := cmd.Execute(); err != nil {
		slog.Error("refresh failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireAdminAPI(); err != nil {
		return err
	}
	token, err := adminapi.ReadToken(cfg.AdminTokenFile)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := adminapi.NewClient(cfg.AdminAPIURL, cfg.AdminProjectRef, token, cfg.AdminTimeout, logger)
	return maintenance.NewRunner(client, logger).Refresh(ctx)
}
