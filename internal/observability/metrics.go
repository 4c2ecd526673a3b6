package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sdwis_ingest"

// Metrics holds the Prometheus counters, histograms, and gauges for ingestion runs.
type Metrics struct {
	RowsRead       *prometheus.CounterVec // labels: table
	RowsRejected   *prometheus.CounterVec // labels: table
	RowsDuplicate  *prometheus.CounterVec // labels: table
	RowsWritten    *prometheus.CounterVec // labels: table, outcome={succeeded,failed,dropped}
	ParseErrors    *prometheus.CounterVec // labels: table
	PipelineActive prometheus.Gauge

	// Batch writer metrics.
	WriteAttempts      *prometheus.CounterVec // labels: table, granularity, result={ok,error}
	BatchSize          prometheus.Histogram
	BatchWriteDuration *prometheus.HistogramVec // labels: table

	// Run level.
	StepDuration     *prometheus.GaugeVec // labels: table
	LastRunTimestamp prometheus.Gauge
}

// NewMetrics creates and registers all ingestion metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.Collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Collectors returns every metric, for registration or pushing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.RowsRejected,
		m.RowsDuplicate,
		m.RowsWritten,
		m.ParseErrors,
		m.PipelineActive,
		m.WriteAttempts,
		m.BatchSize,
		m.BatchWriteDuration,
		m.StepDuration,
		m.LastRunTimestamp,
	}
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Data rows read from source CSV files.",
		}, []string{"table"}),
		RowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_rejected_total",
			Help:      "Rows rejected for missing mandatory fields.",
		}, []string{"table"}),
		RowsDuplicate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_duplicate_total",
			Help:      "Rows dropped by the in-process deduplicator.",
		}, []string{"table"}),
		RowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Rows handed to the batch writer by final outcome.",
		}, []string{"table", "outcome"}),
		ParseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Source files that stopped early on a parse error.",
		}, []string{"table"}),
		PipelineActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_active",
			Help:      "1 while a table pipeline is running, 0 otherwise.",
		}),
		WriteAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_attempts_total",
			Help:      "Storage write attempts by granularity and result.",
		}, []string{"table", "granularity", "result"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of records per batch handed to the writer.",
			Buckets:   []float64{1, 10, 50, 100, 250, 500, 750, 1000, 2500, 5000},
		}),
		BatchWriteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_write_duration_seconds",
			Help:      "Duration of one batch write including any retries.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"table"}),
		StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of the most recent run of each table step.",
		}, []string{"table"}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent run finished.",
		}),
	}
}
