package pipeline

import "github.com/tapsafe/sdwis-ingest/internal/domain"

// Table describes one target table and how CSV rows become its records.
type Table struct {
	Name string
	// FilePattern is matched case-insensitively against source file names.
	FilePattern string
	Columns     []string
	// ConflictKey names the unique columns used for upserts. Empty means
	// conflicting rows are dropped instead of updated.
	ConflictKey []string
	Transform   func(domain.RawRow) (domain.Record, bool)
	// DedupKey is set for tables without a storage-side unique constraint.
	DedupKey func(domain.RawRow) string
}

func record[T domain.Record](f func(domain.RawRow) (T, bool)) func(domain.RawRow) (domain.Record, bool) {
	return func(row domain.RawRow) (domain.Record, bool) {
		rec, ok := f(row)
		if !ok {
			return nil, false
		}
		return rec, true
	}
}

var (
	StatesTable = Table{
		Name:    "states",
		Columns: domain.StateColumns,
	}
	RefCodeValuesTable = Table{
		Name:        "ref_code_values",
		FilePattern: "REF_CODE_VALUES",
		Columns:     domain.RefCodeValueColumns,
		ConflictKey: []string{"value_type", "value_code"},
		Transform:   record(domain.TransformRefCodeValue),
	}
	WaterSystemsTable = Table{
		Name:        "water_systems",
		FilePattern: "PUB_WATER_SYSTEMS",
		Columns:     domain.WaterSystemColumns,
		ConflictKey: []string{"pwsid"},
		Transform:   record(domain.TransformWaterSystem),
	}
	ViolationsTable = Table{
		Name:        "violations",
		FilePattern: "VIOLATIONS_ENFORCEMENT",
		Columns:     domain.ViolationColumns,
		ConflictKey: []string{"pwsid", "violation_id"},
		Transform:   record(domain.TransformViolation),
	}
	LcrSamplesTable = Table{
		Name:        "lcr_samples",
		FilePattern: "LCR_SAMPLE",
		Columns:     domain.LcrSampleColumns,
		Transform:   record(domain.TransformLcrSample),
		DedupKey:    domain.LcrSampleKey,
	}
	SiteVisitsTable = Table{
		Name:        "site_visits",
		FilePattern: "SITE_VISITS",
		Columns:     domain.SiteVisitColumns,
		ConflictKey: []string{"pwsid", "visit_id"},
		Transform:   record(domain.TransformSiteVisit),
	}
	GeographicAreasTable = Table{
		Name:        "geographic_areas",
		FilePattern: "GEOGRAPHIC_AREAS",
		Columns:     domain.GeographicAreaColumns,
		Transform:   record(domain.TransformGeographicArea),
		DedupKey:    domain.GeographicAreaKey,
	}
)

// StepKind distinguishes what a step does.
type StepKind int

const (
	StepSeed StepKind = iota
	StepLoad
	StepRefresh
)

// Step is one numbered stage of a full ingestion run.
type Step struct {
	Number int
	Kind   StepKind
	Table  Table
}

// Name returns the table name, or a label for steps without a table.
func (s Step) Name() string {
	if s.Kind == StepRefresh {
		return "computed_fields"
	}
	return s.Table.Name
}

// Steps is the fixed run order. Tables that others reference come first.
var Steps = []Step{
	{Number: 1, Kind: StepSeed, Table: StatesTable},
	{Number: 2, Kind: StepLoad, Table: RefCodeValuesTable},
	{Number: 3, Kind: StepLoad, Table: WaterSystemsTable},
	{Number: 4, Kind: StepLoad, Table: ViolationsTable},
	{Number: 5, Kind: StepLoad, Table: LcrSamplesTable},
	{Number: 6, Kind: StepLoad, Table: SiteVisitsTable},
	{Number: 7, Kind: StepLoad, Table: GeographicAreasTable},
	{Number: 8, Kind: StepRefresh},
}
