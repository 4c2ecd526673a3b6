package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tapsafe/sdwis-ingest/internal/adapter/csvfile"
	"github.com/tapsafe/sdwis-ingest/internal/dedup"
	"github.com/tapsafe/sdwis-ingest/internal/domain"
	"github.com/tapsafe/sdwis-ingest/internal/observability"
)

var (
	// ErrNoSourceFiles means the data directory holds no CSV files at all.
	ErrNoSourceFiles = errors.New("no source csv files found")
	// ErrInvalidStep means a skip-to value outside the step range.
	ErrInvalidStep = errors.New("invalid step number")
)

// TableStore is a Store that can also empty a table.
type TableStore interface {
	Store
	DeleteAll(ctx context.Context, table string) (int64, error)
}

// Refresher recomputes the water system aggregate columns.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SummarySink receives the summary of every finished run.
type SummarySink interface {
	Publish(ctx context.Context, summary RunSummary) error
}

// StepStatus is the final status of one step in a run.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepPartial   StepStatus = "partial"
	StepSkipped   StepStatus = "skipped"
	StepMissing   StepStatus = "missing"
	StepFailed    StepStatus = "failed"
	StepCancelled StepStatus = "cancelled"
)

// StepResult is the tally of one step.
type StepResult struct {
	Number      int           `json:"step"`
	Table       string        `json:"table"`
	File        string        `json:"file,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Status      StepStatus    `json:"status"`
	State       string        `json:"state,omitempty"`
	Read        int           `json:"read"`
	Rejected    int           `json:"rejected"`
	Duplicates  int           `json:"duplicates"`
	Dropped     int           `json:"dropped"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Cleared     int64         `json:"cleared,omitempty"`
	Evicted     int           `json:"dedup_evicted,omitempty"`
	Duration    time.Duration `json:"duration_ns"`
	Error       string        `json:"error,omitempty"`
}

// Skipped counts rows that were read but not persisted by design.
func (r StepResult) Skipped() int {
	return r.Rejected + r.Duplicates + r.Dropped
}

// RunSummary is the outcome of one orchestrated run.
type RunSummary struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	SkipTo     int          `json:"skip_to"`
	Steps      []StepResult `json:"tables"`
}

// Failed reports whether any step failed outright.
func (s RunSummary) Failed() bool {
	for _, st := range s.Steps {
		if st.Status == StepFailed {
			return true
		}
	}
	return false
}

// Options tunes an Orchestrator.
type Options struct {
	DataDir       string
	CSV           csvfile.Options
	BatchSize     int
	ChunkSize     int
	ProgressEvery int
	DedupMaxKeys  int
	WriteRate     float64
	// CleanSlate names tables emptied before their step runs.
	CleanSlate []string
}

// Orchestrator runs the table steps in order against one store.
type Orchestrator struct {
	store     TableStore
	refresher Refresher
	sinks     []SummarySink
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithRefresher enables the computed fields step. Without it the step is skipped.
func WithRefresher(r Refresher) OrchestratorOption {
	return func(o *Orchestrator) { o.refresher = r }
}

// WithSummarySink adds a destination for the run summary.
func WithSummarySink(s SummarySink) OrchestratorOption {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, s) }
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(store TableStore, opts Options, logger *slog.Logger, metrics *observability.Metrics, options ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// CheckReadiness returns nil once source files were found and the run started.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("ingestion run has not started yet")
	}
	return nil
}

// Run executes steps skipTo through the last one. Steps before skipTo are
// reported as skipped and any skipTo <= 1 runs every step. Only a skipTo past
// the last step or an empty data directory is an error; everything else is
// recorded in the summary.
func (o *Orchestrator) Run(ctx context.Context, skipTo int) (RunSummary, error) {
	if skipTo < 1 {
		skipTo = 1
	}
	if skipTo > len(Steps) {
		return RunSummary{}, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidStep, skipTo, len(Steps))
	}

	files, err := csvfile.List(o.opts.DataDir)
	if err != nil {
		return RunSummary{}, err
	}
	if len(files) == 0 {
		return RunSummary{}, fmt.Errorf("%w in %s", ErrNoSourceFiles, o.opts.DataDir)
	}

	summary := RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: domain.Now(),
		SkipTo:    skipTo,
	}
	logger := o.logger.With("run_id", summary.RunID)

	for _, f := range files {
		logger.Info("source file", "name", f.Name, "size_mb", fmt.Sprintf("%.1f", f.SizeMB()))
	}
	logger.Info("ingestion run started", "skip_to", skipTo, "files", len(files))
	o.ready.Store(true)

	for _, step := range Steps {
		var res StepResult
		switch {
		case step.Number < skipTo:
			res = StepResult{Number: step.Number, Table: step.Name(), Status: StepSkipped}
		case ctx.Err() != nil:
			res = StepResult{Number: step.Number, Table: step.Name(), Status: StepCancelled}
		default:
			logger.Info("step started", "step", step.Number, "table", step.Name())
			res = o.runStep(ctx, logger, step, files)
			o.metrics.StepDuration.WithLabelValues(step.Name()).Set(res.Duration.Seconds())
		}
		summary.Steps = append(summary.Steps, res)
	}

	summary.FinishedAt = domain.Now()
	o.metrics.LastRunTimestamp.Set(float64(summary.FinishedAt.Unix()))
	logger.Info("ingestion run finished", "duration", summary.FinishedAt.Sub(summary.StartedAt))

	o.publish(ctx, logger, summary)
	return summary, nil
}

func (o *Orchestrator) runStep(ctx context.Context, logger *slog.Logger, step Step, files []csvfile.SourceFile) StepResult {
	start := domain.Now()
	var res StepResult
	switch step.Kind {
	case StepSeed:
		res = o.seed(ctx, logger, step)
	case StepRefresh:
		res = o.refresh(ctx, logger, step)
	default:
		res = o.load(ctx, logger, step, files)
	}
	res.Number = step.Number
	res.Table = step.Name()
	res.Duration = domain.Since(start)

	logger.Info("step finished",
		"step", res.Number,
		"table", res.Table,
		"status", res.Status,
		"read", res.Read,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
		"skipped", res.Skipped(),
		"duration", res.Duration,
	)
	return res
}

func (o *Orchestrator) seed(ctx context.Context, logger *slog.Logger, step Step) StepResult {
	records := domain.StateRecords()
	out := o.newWriter(step.Table, logger).Write(ctx, records)
	return StepResult{
		Status:    StepCompleted,
		Read:      len(records),
		Succeeded: out.Succeeded,
		Failed:    out.Failed,
		Dropped:   out.Dropped,
	}
}

func (o *Orchestrator) refresh(ctx context.Context, logger *slog.Logger, step Step) StepResult {
	if o.refresher == nil {
		return StepResult{Status: StepSkipped}
	}
	if err := o.refresher.Refresh(ctx); err != nil {
		logger.Error("computed fields refresh failed", "step", step.Number, "error", err)
		return StepResult{Status: StepFailed, Error: err.Error()}
	}
	return StepResult{Status: StepCompleted}
}

func (o *Orchestrator) load(ctx context.Context, logger *slog.Logger, step Step, files []csvfile.SourceFile) StepResult {
	table := step.Table
	file, ok := csvfile.Match(files, table.FilePattern)
	if !ok {
		logger.Warn("no source file for table, skipping", "table", table.Name, "pattern", table.FilePattern)
		return StepResult{Status: StepMissing}
	}
	res := StepResult{File: file.Name}

	if slices.ContainsFunc(o.opts.CleanSlate, func(t string) bool { return strings.EqualFold(t, table.Name) }) {
		n, err := o.store.DeleteAll(ctx, table.Name)
		if err != nil {
			logger.Error("clean slate failed, loading on top of existing rows", "table", table.Name, "deleted", n, "error", err)
		} else {
			logger.Info("clean slate", "table", table.Name, "deleted", n)
		}
		res.Cleared = n
	}

	src, err := csvfile.Open(file.Path, o.opts.CSV)
	if err != nil {
		logger.Error("open source file failed", "table", table.Name, "file", file.Name, "error", err)
		res.Status = StepFailed
		res.Error = err.Error()
		return res
	}
	defer src.Close() //nolint:errcheck // read-only file

	driver := NewDriver(table, o.newWriter(table, logger), dedup.New(o.opts.DedupMaxKeys), o.opts.BatchSize, logger, o.metrics)
	out := driver.Run(ctx, src)

	res.State = out.State.String()
	res.Read = out.Read
	res.Rejected = out.Rejected
	res.Duplicates = out.Duplicates
	res.Dropped = out.Dropped
	res.Succeeded = out.Succeeded
	res.Failed = out.Failed
	res.Evicted = out.Evicted
	if out.Evicted > 0 {
		logger.Warn("dedup key cap reached, some duplicates may have been written",
			"table", table.Name,
			"evicted", out.Evicted,
			"max_keys", o.opts.DedupMaxKeys,
		)
	}
	res.Status = StepCompleted
	if out.Partial() {
		res.Status = StepPartial
		res.Error = out.Err.Error()
	} else {
		res.Fingerprint = src.Fingerprint()
	}
	return res
}

func (o *Orchestrator) newWriter(table Table, logger *slog.Logger) *BatchWriter {
	return NewBatchWriter(o.store, table, logger, o.metrics,
		WithRetryPolicy(DefaultRetryPolicy(o.opts.ChunkSize)),
		WithRateLimit(o.opts.WriteRate),
		WithProgressEvery(o.opts.ProgressEvery),
	)
}

func (o *Orchestrator) publish(ctx context.Context, logger *slog.Logger, summary RunSummary) {
	if len(o.sinks) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	for _, s := range o.sinks {
		if err := s.Publish(ctx, summary); err != nil {
			logger.Error("publish run summary failed", "error", err)
		}
	}
}
