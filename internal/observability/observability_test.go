package observability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "info", "json").Info("hello", "table", "violations")
	assert.Contains(t, buf.String(), `"table":"violations"`)

	buf.Reset()
	newLogger(&buf, "info", "text").Info("hello", "table", "violations")
	assert.Contains(t, buf.String(), "table=violations")

	buf.Reset()
	newLogger(&buf, "warn", "text").Info("dropped")
	assert.Empty(t, buf.String())
}

func TestMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.RowsRead.WithLabelValues("violations").Add(3)
	assert.InDelta(t, 3, testutil.ToFloat64(a.RowsRead.WithLabelValues("violations")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.RowsRead.WithLabelValues("violations")), 0)

	reg := prometheus.NewRegistry()
	require.NoError(t, registerAll(reg, a))
}

func registerAll(reg *prometheus.Registry, m *Metrics) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func TestPush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gw.Close)

	m := NewMetricsForTesting()
	m.RowsRead.WithLabelValues("water_systems").Inc()

	require.NoError(t, Push(context.Background(), gw.URL, m))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/sdwis_ingest", path)
	assert.NotEmpty(t, body)
}

func TestPush_EmptyURL(t *testing.T) {
	assert.Error(t, Push(context.Background(), "", NewMetricsForTesting()))
}
