// Command download fetches the EPA SDWA bulk download archive and unpacks it
// into DATA_DIR.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/epa"
	"github.com/tapsafe/sdwis-ingest/internal/config"
	"github.com/tapsafe/sdwis-ingest/internal/observability"
)

func main() {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:           "download",
		Short:         "Download and extract the EPA SDWA bulk CSV archive",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Minute, "limit for the whole transfer")

	if err := cmd.Execute(); err != nil {
		slog.Error("download failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := epa.NewDownloader(cfg.EPADownloadURL, timeout, logger).Fetch(ctx, cfg.DataDir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".csv") {
			fmt.Fprintln(out, f)
		}
	}
	return nil
}
