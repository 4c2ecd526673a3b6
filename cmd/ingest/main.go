// Command ingest loads the EPA SDWIS bulk CSV files found in DATA_DIR into
// Postgres, one table step at a time.
//
// Usage:
//
//	ingest [--skip-to N]
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/csvfile"
	httpadapter "github.com/tapsafe/sdwis-ingest/internal/adapter/http"
	kafkaadapter "github.com/tapsafe/sdwis-ingest/internal/adapter/kafka"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/postgres"
	"github.com/tapsafe/sdwis-ingest/internal/config"
	"github.com/tapsafe/sdwis-ingest/internal/maintenance"
	"github.com/tapsafe/sdwis-ingest/internal/observability"
	"github.com/tapsafe/sdwis-ingest/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var skipTo int
	cmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Load EPA SDWIS CSV files into Postgres",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), skipTo)
		},
	}
	cmd.Flags().IntVar(&skipTo, "skip-to", 1, fmt.Sprintf("first step to run (1-%d, 0 or 1 runs every step); earlier steps are reported as skipped", len(pipeline.Steps)))
	return cmd
}

func run(ctx context.Context, stdout io.Writer, skipTo int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseDSN, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	store := postgres.NewStore(pool)

	var options []pipeline.OrchestratorOption
	if cfg.RefreshComputedFields {
		options = append(options, pipeline.WithRefresher(maintenance.NewRunner(store, logger)))
	}
	if cfg.KafkaEnabled() {
		publisher := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSummaryTopic, logger)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		options = append(options, pipeline.WithSummarySink(publisher))
		logger.Info("run summary publishing enabled", "topic", cfg.KafkaSummaryTopic)
	}

	orch := pipeline.NewOrchestrator(store, pipeline.Options{
		DataDir: cfg.DataDir,
		CSV: csvfile.Options{
			RelaxQuotes:      cfg.RelaxQuotes,
			RelaxColumnCount: cfg.RelaxColumnCount,
		},
		BatchSize:     cfg.BatchSize,
		ChunkSize:     cfg.ChunkSize,
		ProgressEvery: cfg.ProgressEvery,
		DedupMaxKeys:  cfg.DedupMaxKeys,
		WriteRate:     cfg.WriteRate,
		CleanSlate:    cfg.CleanSlate,
	}, logger, metrics, options...)

	// The probe server lives exactly as long as the run.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	g, gctx := errgroup.WithContext(runCtx)

	var summary pipeline.RunSummary
	g.Go(func() error {
		defer cancelRun()
		var err error
		summary, err = orch.Run(gctx, skipTo)
		return err
	})
	if cfg.HTTPAddr != "" {
		srv := httpadapter.NewServer(cfg.HTTPAddr, orch, cfg.ShutdownTimeout, logger)
		g.Go(func() error { return srv.Run(gctx) })
	}
	runErr := g.Wait()

	if summary.RunID != "" {
		if err := pipeline.WriteSummary(stdout, summary); err != nil {
			logger.Error("write run summary failed", "error", err)
		}
		if cfg.PushgatewayURL != "" {
			pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := observability.Push(pushCtx, cfg.PushgatewayURL, metrics); err != nil {
				logger.Error("pushgateway push failed", "error", err)
			}
		}
	}
	return runErr
}
