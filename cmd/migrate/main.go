// Command migrate applies the embedded schema, index and RPC function
// migrations to DATABASE_DSN.
//
// Usage:
//
//	migrate up|down|status
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/postgres"
	"github.com/tapsafe/sdwis-ingest/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, m *postgres.Migrator, out io.Writer) error {
				results, err := m.Up(ctx)
				for _, r := range results {
					printResult(out, r)
				}
				if err == nil && len(results) == 0 {
					fmt.Fprintln(out, "schema is up to date")
				}
				return err
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, m *postgres.Migrator, out io.Writer) error {
				r, err := m.Down(ctx)
				if r != nil {
					printResult(out, r)
				}
				return err
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(ctx context.Context, m *postgres.Migrator, out io.Writer) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				return printStatus(out, statuses)
			}),
		},
	)
	return root
}

type migratorFunc func(ctx context.Context, m *postgres.Migrator, out io.Writer) error

func withMigrator(fn migratorFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		m, err := postgres.NewMigrator(cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		defer m.Close() //nolint:errcheck // process exits next
		return fn(cmd.Context(), m, cmd.OutOrStdout())
	}
}

func printResult(out io.Writer, r *goose.MigrationResult) {
	status := "OK"
	if r.Error != nil {
		status = "FAILED: " + r.Error.Error()
	}
	fmt.Fprintf(out, "%-5s %05d %s (%s) %s\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration.Round(time.Millisecond), status)
}

func printStatus(out io.Writer, statuses []*goose.MigrationStatus) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "version\tstate\tapplied at\tsource")
	for _, st := range statuses {
		applied := "-"
		if !st.AppliedAt.IsZero() {
			applied = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%05d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
	}
	return tw.Flush()
}
