// Package maintenance recomputes the water system columns derived from
// the other tables after a load.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Statement is one named recomputation.
type Statement struct {
	Name string
	SQL  string
}

// Statements run in order. Each is idempotent.
var Statements = []Statement{
	{
		Name: "violation_counts",
		SQL: `UPDATE water_systems ws SET
  violation_count = COALESCE(v.cnt, 0),
  health_violation_count = COALESCE(v.health_cnt, 0),
  last_violation_date = v.last_date
FROM (
  SELECT pwsid,
    COUNT(*) AS cnt,
    COUNT(*) FILTER (WHERE is_health_based) AS health_cnt,
    MAX(begin_date) AS last_date
  FROM violations
  GROUP BY pwsid
) v
WHERE ws.pwsid = v.pwsid`,
	},
	{
		Name: "last_site_visit",
		SQL: `UPDATE water_systems ws SET
  last_site_visit_date = sv.last_visit
FROM (
  SELECT pwsid, MAX(visit_date) AS last_visit
  FROM site_visits
  GROUP BY pwsid
) sv
WHERE ws.pwsid = sv.pwsid`,
	},
	{
		Name: "lead_copper_90th",
		SQL: `UPDATE water_systems ws SET
  lead_90th_percentile = lcr.lead_val,
  copper_90th_percentile = lcr.copper_val
FROM (
  SELECT pwsid,
    MAX(CASE WHEN contaminant_code = 'PB90' THEN sample_measure END) AS lead_val,
    MAX(CASE WHEN contaminant_code = 'CU90' THEN sample_measure END) AS copper_val
  FROM lcr_samples
  WHERE sampling_end_date = (
    SELECT MAX(sampling_end_date) FROM lcr_samples l2 WHERE l2.pwsid = lcr_samples.pwsid
  )
  GROUP BY pwsid
) lcr
WHERE ws.pwsid = lcr.pwsid`,
	},
	{
		Name: "county_from_geographic_areas",
		SQL: `UPDATE water_systems ws SET
  county_served = ga.county_served
FROM (
  SELECT DISTINCT ON (pwsid) pwsid, county_served
  FROM geographic_areas
  WHERE county_served IS NOT NULL AND county_served != ''
  ORDER BY pwsid
) ga
WHERE ws.pwsid = ga.pwsid AND (ws.county_served IS NULL OR ws.county_served = '')`,
	},
}

// Executor runs one SQL statement. A negative count means the backend does
// not report affected rows.
type Executor interface {
	Exec(ctx context.Context, statement string) (int64, error)
}

// Runner executes Statements against one backend.
type Runner struct {
	exec   Executor
	logger *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(exec Executor, logger *slog.Logger) *Runner {
	return &Runner{exec: exec, logger: logger}
}

// Refresh runs every statement. A failed statement does not stop the ones
// after it; all failures are returned joined.
func (r *Runner) Refresh(ctx context.Context) error {
	var errs []error
	for _, st := range Statements {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		start := time.Now()
		n, err := r.exec.Exec(ctx, st.SQL)
		if err != nil {
			r.logger.Error("computed field update failed", "statement", st.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", st.Name, err))
			continue
		}
		attrs := []any{"statement", st.Name, "duration", time.Since(start)}
		if n >= 0 {
			attrs = append(attrs, "rows", n)
		}
		r.logger.Info("computed field updated", attrs...)
	}
	return errors.Join(errs...)
}
