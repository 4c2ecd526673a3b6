package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tapsafe/sdwis-ingest/internal/domain"
	"github.com/tapsafe/sdwis-ingest/internal/observability"
	"golang.org/x/time/rate"
)

// Store is the bulk write surface of the storage backend. Implementations
// return errors matching domain.ErrConflict for uniqueness violations.
type Store interface {
	Insert(ctx context.Context, table string, columns []string, rows [][]any) error
	Upsert(ctx context.Context, table string, columns, conflict []string, rows [][]any) error
	// InsertIgnore inserts rows, skipping any that conflict, and returns how many were inserted.
	InsertIgnore(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

// Granularity is one level of the retry policy. Size 0 means the whole batch.
type Granularity struct {
	Name string
	Size int
}

// RetryPolicy lists granularities from coarsest to finest. A unit that fails
// at one level is split and retried at the next; failures at the last level
// are recorded per row.
type RetryPolicy []Granularity

// DefaultRetryPolicy is batch, then chunks of chunkSize, then single rows.
func DefaultRetryPolicy(chunkSize int) RetryPolicy {
	return RetryPolicy{
		{Name: "batch", Size: 0},
		{Name: "chunk", Size: chunkSize},
		{Name: "row", Size: 1},
	}
}

// Outcome counts what happened to the rows of one Write call.
type Outcome struct {
	Succeeded int
	Failed    int
	// Dropped rows conflicted on a table without a conflict key.
	Dropped int
}

func (o *Outcome) add(other Outcome) {
	o.Succeeded += other.Succeeded
	o.Failed += other.Failed
	o.Dropped += other.Dropped
}

// Total is the number of rows accounted for.
func (o Outcome) Total() int {
	return o.Succeeded + o.Failed + o.Dropped
}

// BatchWriter writes batches of records to one table, degrading to finer
// granularity on failure. Write never returns an error: every row ends up
// succeeded, dropped or failed.
type BatchWriter struct {
	store   Store
	table   Table
	policy  RetryPolicy
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *observability.Metrics

	conflictIdx   []int
	progressEvery int
	totals        Outcome
	nextProgress  int
}

// WriterOption configures a BatchWriter.
type WriterOption func(*BatchWriter)

// WithRetryPolicy replaces the default batch, chunk, row policy.
func WithRetryPolicy(p RetryPolicy) WriterOption {
	return func(w *BatchWriter) { w.policy = p }
}

// WithRateLimit caps write attempts per second. Zero or less disables the cap.
func WithRateLimit(perSecond float64) WriterOption {
	return func(w *BatchWriter) {
		if perSecond > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithProgressEvery logs running totals each time another n rows have been written.
func WithProgressEvery(n int) WriterOption {
	return func(w *BatchWriter) { w.progressEvery = n }
}

// NewBatchWriter creates a writer for table.
func NewBatchWriter(store Store, table Table, logger *slog.Logger, metrics *observability.Metrics, opts ...WriterOption) *BatchWriter {
	w := &BatchWriter{
		store:   store,
		table:   table,
		policy:  DefaultRetryPolicy(100),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.conflictIdx = columnIndexes(table.Columns, table.ConflictKey)
	w.nextProgress = w.progressEvery
	return w
}

// Write stores records and reports per-row outcomes.
func (w *BatchWriter) Write(ctx context.Context, records []domain.Record) Outcome {
	if len(records) == 0 {
		return Outcome{}
	}
	start := time.Now()

	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = r.Values()
	}

	out := w.write(ctx, rows, 0)

	w.metrics.BatchSize.Observe(float64(len(records)))
	w.metrics.BatchWriteDuration.WithLabelValues(w.table.Name).Observe(time.Since(start).Seconds())
	w.metrics.RowsWritten.WithLabelValues(w.table.Name, "succeeded").Add(float64(out.Succeeded))
	w.metrics.RowsWritten.WithLabelValues(w.table.Name, "failed").Add(float64(out.Failed))
	w.metrics.RowsWritten.WithLabelValues(w.table.Name, "dropped").Add(float64(out.Dropped))

	w.totals.add(out)
	w.reportProgress()
	return out
}

// write attempts rows in units of the given policy level and descends on failure.
func (w *BatchWriter) write(ctx context.Context, rows [][]any, level int) Outcome {
	g := w.policy[level]
	var out Outcome

	for _, unit := range split(rows, g.Size) {
		if ctx.Err() != nil {
			out.Failed += len(unit)
			continue
		}

		res, err := w.attempt(ctx, unit)
		if err == nil {
			w.metrics.WriteAttempts.WithLabelValues(w.table.Name, g.Name, "ok").Inc()
			out.add(res)
			continue
		}
		w.metrics.WriteAttempts.WithLabelValues(w.table.Name, g.Name, "error").Inc()

		if level+1 >= len(w.policy) || ctx.Err() != nil {
			w.logger.Error("write failed",
				"table", w.table.Name,
				"granularity", g.Name,
				"rows", len(unit),
				"error", err,
			)
			out.Failed += len(unit)
			continue
		}

		next := w.policy[level+1]
		w.logger.Warn("write failed, retrying at finer granularity",
			"table", w.table.Name,
			"granularity", g.Name,
			"next", next.Name,
			"rows", len(unit),
			"error", err,
		)
		out.add(w.write(ctx, unit, level+1))
	}
	return out
}

// attempt makes one insert of rows. A uniqueness conflict turns into an
// upsert when the table has a conflict key, or an insert that skips the
// conflicting rows when it does not.
func (w *BatchWriter) attempt(ctx context.Context, rows [][]any) (Outcome, error) {
	if err := w.wait(ctx); err != nil {
		return Outcome{}, err
	}

	err := w.store.Insert(ctx, w.table.Name, w.table.Columns, rows)
	if err == nil {
		return Outcome{Succeeded: len(rows)}, nil
	}
	if !errors.Is(err, domain.ErrConflict) {
		return Outcome{}, err
	}

	if len(w.conflictIdx) > 0 {
		if err := w.wait(ctx); err != nil {
			return Outcome{}, err
		}
		if err := w.store.Upsert(ctx, w.table.Name, w.table.Columns, w.table.ConflictKey, collapseLast(rows, w.conflictIdx)); err != nil {
			return Outcome{}, fmt.Errorf("upsert after conflict: %w", err)
		}
		return Outcome{Succeeded: len(rows)}, nil
	}

	if err := w.wait(ctx); err != nil {
		return Outcome{}, err
	}
	inserted, err := w.store.InsertIgnore(ctx, w.table.Name, w.table.Columns, rows)
	if err != nil {
		return Outcome{}, fmt.Errorf("insert ignoring conflicts: %w", err)
	}
	return Outcome{Succeeded: int(inserted), Dropped: len(rows) - int(inserted)}, nil
}

func (w *BatchWriter) wait(ctx context.Context) error {
	if w.limiter == nil {
		return nil
	}
	return w.limiter.Wait(ctx)
}

func (w *BatchWriter) reportProgress() {
	if w.progressEvery <= 0 || w.totals.Total() < w.nextProgress {
		return
	}
	w.logger.Info("progress",
		"table", w.table.Name,
		"processed", w.totals.Total(),
		"succeeded", w.totals.Succeeded,
		"failed", w.totals.Failed,
		"dropped", w.totals.Dropped,
	)
	for w.nextProgress <= w.totals.Total() {
		w.nextProgress += w.progressEvery
	}
}

// split cuts rows into consecutive units of at most size rows. Size <= 0
// yields rows as a single unit.
func split(rows [][]any, size int) [][][]any {
	if size <= 0 || size >= len(rows) {
		return [][][]any{rows}
	}
	units := make([][][]any, 0, (len(rows)+size-1)/size)
	for i := 0; i < len(rows); i += size {
		units = append(units, rows[i:min(i+size, len(rows))])
	}
	return units
}

// collapseLast keeps only the last row for each conflict key, preserving the
// relative order of the survivors. Postgres cannot update one row twice in a
// single upsert statement.
func collapseLast(rows [][]any, keyIdx []int) [][]any {
	last := make(map[string]int, len(rows))
	for i, row := range rows {
		last[rowKey(row, keyIdx)] = i
	}
	if len(last) == len(rows) {
		return rows
	}
	out := make([][]any, 0, len(last))
	for i, row := range rows {
		if last[rowKey(row, keyIdx)] == i {
			out = append(out, row)
		}
	}
	return out
}

func rowKey(row []any, keyIdx []int) string {
	var b strings.Builder
	for i, idx := range keyIdx {
		if i > 0 {
			b.WriteByte(0x1f)
		}
		fmt.Fprint(&b, row[idx])
	}
	return b.String()
}

func columnIndexes(columns, names []string) []int {
	idx := make([]int, 0, len(names))
	for _, name := range names {
		for i, c := range columns {
			if c == name {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}
