package maintenance_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tapsafe/sdwis-ingest/internal/maintenance"
)

type recordingExecutor struct {
	ran  []string
	fail map[int]error
}

func (e *recordingExecutor) Exec(_ context.Context, statement string) (int64, error) {
	i := len(e.ran)
	e.ran = append(e.ran, statement)
	if err := e.fail[i]; err != nil {
		return 0, err
	}
	return int64(i), nil
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunner_RunsEveryStatementInOrder(t *testing.T) {
	exec := &recordingExecutor{}

	err := maintenance.NewRunner(exec, logger()).Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, exec.ran, len(maintenance.Statements))
	for i, st := range maintenance.Statements {
		assert.Equal(t, st.SQL, exec.ran[i])
		assert.True(t, strings.HasPrefix(st.SQL, "UPDATE water_systems"), st.Name)
	}
}

func TestRunner_ContinuesPastFailure(t *testing.T) {
	boom := errors.New("relation \"site_visits\" does not exist")
	exec := &recordingExecutor{fail: map[int]error{1: boom}}

	err := maintenance.NewRunner(exec, logger()).Refresh(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "last_site_visit")
	assert.Len(t, exec.ran, len(maintenance.Statements))
}

func TestRunner_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &recordingExecutor{}

	err := maintenance.NewRunner(exec, logger()).Refresh(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, exec.ran)
}

func TestStatements_CoverComputedColumns(t *testing.T) {
	var all strings.Builder
	for _, st := range maintenance.Statements {
		all.WriteString(st.SQL)
	}
	for _, col := range []string{
		"violation_count", "health_violation_count", "last_violation_date",
		"last_site_visit_date", "lead_90th_percentile", "copper_90th_percentile", "county_served",
	} {
		assert.Contains(t, all.String(), col)
	}
}
