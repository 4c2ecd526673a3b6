// Command verify checks the result of an ingestion run: every step's source
// file is present in DATA_DIR and every target table holds rows.
//
// Usage:
//
//	verify
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/csvfile"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/postgres"
	"github.com/tapsafe/sdwis-ingest/internal/config"
	"github.com/tapsafe/sdwis-ingest/internal/pipeline"
)

// errFailed signals that at least one phase failed after the report was printed.
var errFailed = errors.New("verification failed")

func main() {
	cmd := &cobra.Command{
		Use:           "verify",
		Short:         "Check source files and table row counts after a run",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			slog.Error("verify failed", "error", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.DatabaseDSN, cfg.DBMaxConns)
	if err != nil {
		return err
	}
	defer pool.Close()

	files, err := csvfile.List(cfg.DataDir)
	if err != nil {
		return err
	}

	phases := []*phase{
		checkSources(files),
		checkTables(ctx, postgres.NewStore(pool)),
	}
	if !report(out, phases) {
		return errFailed
	}
	return nil
}

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	notes  []string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// checkSources verifies every load step has a matching CSV.
func checkSources(files []csvfile.SourceFile) *phase {
	p := &phase{name: "Phase 1: Source files"}
	if len(files) == 0 {
		p.errorf("no csv files in data directory")
		return p
	}
	for _, step := range pipeline.Steps {
		if step.Kind != pipeline.StepLoad {
			continue
		}
		f, ok := csvfile.Match(files, step.Table.FilePattern)
		if !ok {
			p.errorf("step %d (%s): no file matching %q", step.Number, step.Name(), step.Table.FilePattern)
			continue
		}
		p.notef("%s: %s (%.1f MB)", step.Name(), f.Name, f.SizeMB())
	}
	return p
}

type counter interface {
	Count(ctx context.Context, table string) (int64, error)
}

// checkTables verifies every seeded or loaded table holds at least one row.
func checkTables(ctx context.Context, store counter) *phase {
	p := &phase{name: "Phase 2: Table row counts"}
	for _, step := range pipeline.Steps {
		if step.Kind == pipeline.StepRefresh {
			continue
		}
		n, err := store.Count(ctx, step.Table.Name)
		switch {
		case err != nil:
			p.errorf("%s: %v", step.Name(), err)
		case n == 0:
			p.errorf("%s: table is empty", step.Name())
		default:
			p.notef("%s: %d rows", step.Name(), n)
		}
	}
	return p
}

func report(out io.Writer, phases []*phase) bool {
	fmt.Fprintln(out, "=== SDWIS Ingestion Verification ===")
	fmt.Fprintln(out)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
		for _, n := range p.notes {
			fmt.Fprintf(out, "      %s\n", n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll checks passed.")
		return true
	}
	fmt.Fprintln(out, "\nVerification FAILED.")
	return false
}
