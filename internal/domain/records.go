package domain

// Column lists per table, in the order each record's Values returns them.
var (
	StateColumns = []string{"code", "name", "slug", "abbreviation", "epa_region"}

	RefCodeValueColumns = []string{"value_type", "value_code", "value_description"}

	WaterSystemColumns = []string{
		"pwsid", "pws_name", "slug", "primacy_agency_code", "epa_region",
		"pws_activity_code", "pws_type_code", "gw_sw_code", "owner_type_code",
		"population_served", "service_connections", "primary_source_code",
		"is_wholesaler", "is_school_or_daycare", "org_name", "admin_name",
		"phone_number", "address_line1", "address_line2", "city_name",
		"state_code", "zip_code", "county_served", "source_water_protection_code",
		"outstanding_performer", "seasonal_system",
	}

	ViolationColumns = []string{
		"pwsid", "violation_id", "facility_id", "contaminant_code", "violation_code",
		"violation_category_code", "is_health_based", "viol_measure", "unit_of_measure",
		"federal_mcl", "state_mcl", "is_major_violation", "violation_status",
		"public_notification_tier", "rule_code", "rule_group_code", "rule_family_code",
		"enforcement_id", "enforcement_date", "enforcement_action_type_code",
		"begin_date", "end_date",
	}

	LcrSampleColumns = []string{
		"pwsid", "sample_id", "contaminant_code", "sample_measure", "unit_of_measure",
		"result_sign_code", "sampling_start_date", "sampling_end_date",
	}

	SiteVisitColumns = []string{
		"pwsid", "visit_id", "visit_date", "visit_reason_code", "compliance_eval",
		"treatment_eval", "distribution_eval", "source_water_eval", "financial_eval",
		"security_eval",
	}

	GeographicAreaColumns = []string{
		"pwsid", "area_type_code", "state_served", "county_served", "city_served",
		"zip_code_served", "tribal_code",
	}
)

// State is one row of the fixed states and territories lookup.
type State struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Abbreviation string `json:"abbreviation"`
	EPARegion    string `json:"epa_region"`
}

func (s State) Values() []any {
	return []any{s.Code, s.Name, s.Slug, s.Abbreviation, s.EPARegion}
}

// RefCodeValue maps an SDWIS code of a given type to its description.
type RefCodeValue struct {
	ValueType        string
	ValueCode        string
	ValueDescription *string
}

func (r RefCodeValue) Values() []any {
	return []any{r.ValueType, r.ValueCode, r.ValueDescription}
}

// WaterSystem is a public water system. Aggregate columns such as
// violation_count are computed after ingestion and are not part of the record.
type WaterSystem struct {
	PWSID                     string
	Name                      string
	Slug                      string
	PrimacyAgencyCode         *string
	EPARegion                 *string
	ActivityCode              string
	TypeCode                  *string
	GwSwCode                  *string
	OwnerTypeCode             *string
	PopulationServed          int
	ServiceConnections        int
	PrimarySourceCode         *string
	IsWholesaler              bool
	IsSchoolOrDaycare         bool
	OrgName                   *string
	AdminName                 *string
	PhoneNumber               *string
	AddressLine1              *string
	AddressLine2              *string
	CityName                  *string
	StateCode                 string
	ZipCode                   *string
	CountyServed              *string
	SourceWaterProtectionCode *string
	OutstandingPerformer      bool
	SeasonalSystem            bool
}

func (w WaterSystem) Values() []any {
	return []any{
		w.PWSID, w.Name, w.Slug, w.PrimacyAgencyCode, w.EPARegion,
		w.ActivityCode, w.TypeCode, w.GwSwCode, w.OwnerTypeCode,
		w.PopulationServed, w.ServiceConnections, w.PrimarySourceCode,
		w.IsWholesaler, w.IsSchoolOrDaycare, w.OrgName, w.AdminName,
		w.PhoneNumber, w.AddressLine1, w.AddressLine2, w.CityName,
		w.StateCode, w.ZipCode, w.CountyServed, w.SourceWaterProtectionCode,
		w.OutstandingPerformer, w.SeasonalSystem,
	}
}

// Violation is a violation with its latest enforcement action.
type Violation struct {
	PWSID                     string
	ViolationID               string
	FacilityID                *string
	ContaminantCode           *string
	ViolationCode             *string
	ViolationCategoryCode     *string
	IsHealthBased             bool
	ViolMeasure               *float64
	UnitOfMeasure             *string
	FederalMCL                *float64
	StateMCL                  *float64
	IsMajorViolation          bool
	ViolationStatus           *string
	PublicNotificationTier    *string
	RuleCode                  *string
	RuleGroupCode             *string
	RuleFamilyCode            *string
	EnforcementID             *string
	EnforcementDate           *string
	EnforcementActionTypeCode *string
	BeginDate                 *string
	EndDate                   *string
}

func (v Violation) Values() []any {
	return []any{
		v.PWSID, v.ViolationID, v.FacilityID, v.ContaminantCode, v.ViolationCode,
		v.ViolationCategoryCode, v.IsHealthBased, v.ViolMeasure, v.UnitOfMeasure,
		v.FederalMCL, v.StateMCL, v.IsMajorViolation, v.ViolationStatus,
		v.PublicNotificationTier, v.RuleCode, v.RuleGroupCode, v.RuleFamilyCode,
		v.EnforcementID, v.EnforcementDate, v.EnforcementActionTypeCode,
		v.BeginDate, v.EndDate,
	}
}

// LcrSample is a lead and copper rule sample result.
type LcrSample struct {
	PWSID             string
	SampleID          *string
	ContaminantCode   *string
	SampleMeasure     *float64
	UnitOfMeasure     *string
	ResultSignCode    *string
	SamplingStartDate *string
	SamplingEndDate   *string
}

func (l LcrSample) Values() []any {
	return []any{
		l.PWSID, l.SampleID, l.ContaminantCode, l.SampleMeasure, l.UnitOfMeasure,
		l.ResultSignCode, l.SamplingStartDate, l.SamplingEndDate,
	}
}

// SiteVisit is an inspection with its six evaluation outcome codes.
type SiteVisit struct {
	PWSID            string
	VisitID          string
	VisitDate        *string
	VisitReasonCode  *string
	ComplianceEval   *string
	TreatmentEval    *string
	DistributionEval *string
	SourceWaterEval  *string
	FinancialEval    *string
	SecurityEval     *string
}

func (s SiteVisit) Values() []any {
	return []any{
		s.PWSID, s.VisitID, s.VisitDate, s.VisitReasonCode, s.ComplianceEval,
		s.TreatmentEval, s.DistributionEval, s.SourceWaterEval, s.FinancialEval,
		s.SecurityEval,
	}
}

// GeographicArea is one area a water system serves.
type GeographicArea struct {
	PWSID         string
	AreaTypeCode  *string
	StateServed   *string
	CountyServed  *string
	CityServed    *string
	ZipCodeServed *string
	TribalCode    *string
}

func (g GeographicArea) Values() []any {
	return []any{
		g.PWSID, g.AreaTypeCode, g.StateServed, g.CountyServed, g.CityServed,
		g.ZipCodeServed, g.TribalCode,
	}
}
