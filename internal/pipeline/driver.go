package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/tapsafe/sdwis-ingest/internal/dedup"
	"github.com/tapsafe/sdwis-ingest/internal/domain"
	"github.com/tapsafe/sdwis-ingest/internal/observability"
)

// Source yields raw rows one at a time and returns io.EOF at the end.
// Any other error ends the stream; rows returned before it stay valid.
type Source interface {
	Next() (domain.RawRow, error)
}

// State is a pipeline driver state.
type State int

const (
	StateReading State = iota
	StatePausing
	StateWriting
	StateResuming
	StateEndOfFile
	StateParseError
	StateFlushing
	StateDone
	StateDonePartial
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StatePausing:
		return "pausing"
	case StateWriting:
		return "writing"
	case StateResuming:
		return "resuming"
	case StateEndOfFile:
		return "end_of_file"
	case StateParseError:
		return "parse_error"
	case StateFlushing:
		return "flushing"
	case StateDone:
		return "done"
	case StateDonePartial:
		return "done_partial"
	default:
		return "unknown"
	}
}

// Result is the tally of one table pipeline run.
type Result struct {
	Table      string
	State      State
	Read       int
	Rejected   int
	Duplicates int
	Succeeded  int
	Failed     int
	Dropped    int
	// Evicted counts dedup keys dropped to respect the key cap. Later
	// duplicates of those keys were not recognised.
	Evicted  int
	Duration time.Duration
	// Err is the parse or cancellation error that ended the run early.
	Err error
}

// Partial reports whether the source was not read to the end.
func (r Result) Partial() bool {
	return r.State == StateDonePartial
}

// Driver moves rows from a Source through transform and dedup into a
// BatchWriter, one batch at a time. The source is not read while a batch
// is being written, so at most one batch is buffered.
type Driver struct {
	table     Table
	writer    *BatchWriter
	seen      *dedup.Set
	batchSize int
	logger    *slog.Logger
	metrics   *observability.Metrics

	onTransition func(from, to State)
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithTransitionHook calls fn on every state change.
func WithTransitionHook(fn func(from, to State)) DriverOption {
	return func(d *Driver) { d.onTransition = fn }
}

// NewDriver creates a driver for one table. seen may be nil for tables
// without a DedupKey.
func NewDriver(table Table, writer *BatchWriter, seen *dedup.Set, batchSize int, logger *slog.Logger, metrics *observability.Metrics, opts ...DriverOption) *Driver {
	d := &Driver{
		table:     table,
		writer:    writer,
		seen:      seen,
		batchSize: batchSize,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.seen == nil && table.DedupKey != nil {
		d.seen = dedup.New(0)
	}
	return d
}

// Run drains src. It always returns a Result; parse errors and cancellation
// end the run in StateDonePartial with Result.Err set.
func (d *Driver) Run(ctx context.Context, src Source) Result {
	start := domain.Now()
	res := Result{Table: d.table.Name}
	batch := make([]domain.Record, 0, d.batchSize)
	state := StateReading

	d.metrics.PipelineActive.Set(1)
	defer d.metrics.PipelineActive.Set(0)

	move := func(to State) {
		if d.onTransition != nil {
			d.onTransition(state, to)
		}
		state = to
	}

	for {
		switch state {
		case StateReading:
			if err := ctx.Err(); err != nil {
				res.Err = err
				res.Failed += len(batch)
				batch = batch[:0]
				move(StateDonePartial)
				continue
			}
			row, err := src.Next()
			if errors.Is(err, io.EOF) {
				move(StateEndOfFile)
				continue
			}
			if err != nil {
				res.Err = err
				move(StateParseError)
				continue
			}
			res.Read++
			d.metrics.RowsRead.WithLabelValues(d.table.Name).Inc()

			rec, ok := d.accept(row, &res)
			if !ok {
				continue
			}
			batch = append(batch, rec)
			if len(batch) >= d.batchSize {
				move(StatePausing)
			}

		case StatePausing:
			move(StateWriting)

		case StateWriting:
			d.flush(ctx, &batch, &res)
			move(StateResuming)

		case StateResuming:
			move(StateReading)

		case StateEndOfFile:
			if len(batch) > 0 {
				move(StateFlushing)
			} else {
				move(StateDone)
			}

		case StateParseError:
			d.metrics.ParseErrors.WithLabelValues(d.table.Name).Inc()
			d.logger.Warn("source parse error, keeping rows read so far",
				"table", d.table.Name,
				"rows_read", res.Read,
				"error", res.Err,
			)
			move(StateFlushing)

		case StateFlushing:
			d.flush(ctx, &batch, &res)
			if res.Err != nil {
				move(StateDonePartial)
			} else {
				move(StateDone)
			}

		case StateDone, StateDonePartial:
			if d.seen != nil {
				res.Evicted = d.seen.Evicted()
			}
			res.State = state
			res.Duration = domain.Since(start)
			return res
		}
	}
}

// accept transforms and dedups one row, counting rejects and duplicates.
func (d *Driver) accept(row domain.RawRow, res *Result) (domain.Record, bool) {
	rec, ok := d.table.Transform(row)
	if !ok {
		res.Rejected++
		d.metrics.RowsRejected.WithLabelValues(d.table.Name).Inc()
		return nil, false
	}
	if d.table.DedupKey != nil {
		key := d.table.DedupKey(row)
		if d.seen.Seen(key) {
			res.Duplicates++
			d.metrics.RowsDuplicate.WithLabelValues(d.table.Name).Inc()
			return nil, false
		}
		d.seen.Remember(key)
	}
	return rec, true
}

func (d *Driver) flush(ctx context.Context, batch *[]domain.Record, res *Result) {
	if len(*batch) == 0 {
		return
	}
	out := d.writer.Write(ctx, *batch)
	res.Succeeded += out.Succeeded
	res.Failed += out.Failed
	res.Dropped += out.Dropped
	*batch = (*batch)[:0]
}
