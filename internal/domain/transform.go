package domain

import "strings"

// defaultActivityCode marks a system as active when the export leaves it blank.
const defaultActivityCode = "A"

// TransformRefCodeValue maps a REF_CODE_VALUES row. Both VALUE_TYPE and VALUE_CODE are mandatory.
func TransformRefCodeValue(row RawRow) (RefCodeValue, bool) {
	valueType, valueCode := row.Get("VALUE_TYPE"), row.Get("VALUE_CODE")
	if valueType == "" || valueCode == "" {
		return RefCodeValue{}, false
	}
	return RefCodeValue{
		ValueType:        valueType,
		ValueCode:        valueCode,
		ValueDescription: ParseString(row["VALUE_DESCRIPTION"]),
	}, true
}

// TransformWaterSystem maps a PUB_WATER_SYSTEMS row. PWSID, PWS_NAME and a
// state code are mandatory. The state code falls back from STATE_CODE to
// PRIMACY_AGENCY_CODE and keeps at most two characters.
func TransformWaterSystem(row RawRow) (WaterSystem, bool) {
	pwsid, name := row.Get("PWSID"), row.Get("PWS_NAME")
	if pwsid == "" || name == "" {
		return WaterSystem{}, false
	}

	stateCode := row.Get("STATE_CODE")
	if stateCode == "" {
		stateCode = row.Get("PRIMACY_AGENCY_CODE")
	}
	stateCode = truncate(stateCode, 2)
	if stateCode == "" {
		return WaterSystem{}, false
	}

	activity := row.Get("PWS_ACTIVITY_CODE")
	if activity == "" {
		activity = defaultActivityCode
	}

	return WaterSystem{
		PWSID:                     pwsid,
		Name:                      name,
		Slug:                      Slugify(pwsid+"-"+name, SystemSlugMax),
		PrimacyAgencyCode:         ParseString(row["PRIMACY_AGENCY_CODE"]),
		EPARegion:                 ParseString(row["EPA_REGION"]),
		ActivityCode:              activity,
		TypeCode:                  ParseString(row["PWS_TYPE_CODE"]),
		GwSwCode:                  ParseString(row["GW_SW_CODE"]),
		OwnerTypeCode:             ParseString(row["OWNER_TYPE_CODE"]),
		PopulationServed:          ParseCount(row["POPULATION_SERVED_COUNT"]),
		ServiceConnections:        ParseCount(row["SERVICE_CONNECTIONS_COUNT"]),
		PrimarySourceCode:         ParseString(row["PRIMARY_SOURCE_CODE"]),
		IsWholesaler:              ParseBool(row["IS_WHOLESALER_IND"]),
		IsSchoolOrDaycare:         ParseBool(row["IS_SCHOOL_OR_DAYCARE_IND"]),
		OrgName:                   ParseString(row["ORG_NAME"]),
		AdminName:                 ParseString(row["ADMIN_NAME"]),
		PhoneNumber:               ParseString(row["PHONE_NUMBER"]),
		AddressLine1:              ParseString(row["ADDRESS_LINE1"]),
		AddressLine2:              ParseString(row["ADDRESS_LINE2"]),
		CityName:                  ParseString(row["CITY_NAME"]),
		StateCode:                 stateCode,
		ZipCode:                   ParseString(row["ZIP_CODE"]),
		CountyServed:              ParseString(row["COUNTY_SERVED"]),
		SourceWaterProtectionCode: ParseString(row["SOURCE_WATER_PROTECTION_CODE"]),
		OutstandingPerformer:      ParseBool(row["OUTSTANDING_PERFORMER"]),
		SeasonalSystem:            ParseBool(row["SEASONAL_STARTUP_SYSTEM"]),
	}, true
}

// TransformViolation maps a VIOLATIONS_ENFORCEMENT row. PWSID and VIOLATION_ID are mandatory.
func TransformViolation(row RawRow) (Violation, bool) {
	pwsid, violationID := row.Get("PWSID"), row.Get("VIOLATION_ID")
	if pwsid == "" || violationID == "" {
		return Violation{}, false
	}
	return Violation{
		PWSID:                     pwsid,
		ViolationID:               violationID,
		FacilityID:                ParseString(row["FACILITY_ID"]),
		ContaminantCode:           ParseString(row["CONTAMINANT_CODE"]),
		ViolationCode:             ParseString(row["VIOLATION_CODE"]),
		ViolationCategoryCode:     ParseString(row["VIOLATION_CATEGORY_CODE"]),
		IsHealthBased:             ParseBool(row["IS_HEALTH_BASED_IND"]),
		ViolMeasure:               ParseNumber(row["VIOL_MEASURE"]),
		UnitOfMeasure:             ParseString(row["UNIT_OF_MEASURE"]),
		FederalMCL:                ParseNumber(row["FEDERAL_MCL"]),
		StateMCL:                  ParseNumber(row["STATE_MCL"]),
		IsMajorViolation:          ParseBool(row["IS_MAJOR_VIOL_IND"]),
		ViolationStatus:           ParseString(row["VIOLATION_STATUS"]),
		PublicNotificationTier:    ParseString(row["PUBLIC_NOTIFICATION_TIER"]),
		RuleCode:                  ParseString(row["RULE_CODE"]),
		RuleGroupCode:             ParseString(row["RULE_GROUP_CODE"]),
		RuleFamilyCode:            ParseString(row["RULE_FAMILY_CODE"]),
		EnforcementID:             ParseString(row["ENFORCEMENT_ID"]),
		EnforcementDate:           ParseDate(row["ENFORCEMENT_DATE"]),
		EnforcementActionTypeCode: ParseString(row["ENFORCEMENT_ACTION_TYPE_CODE"]),
		BeginDate:                 ParseDate(row["NON_COMPL_PER_BEGIN_DATE"]),
		EndDate:                   ParseDate(row["NON_COMPL_PER_END_DATE"]),
	}, true
}

// TransformLcrSample maps an LCR_SAMPLE row. PWSID is mandatory.
func TransformLcrSample(row RawRow) (LcrSample, bool) {
	pwsid := row.Get("PWSID")
	if pwsid == "" {
		return LcrSample{}, false
	}
	return LcrSample{
		PWSID:             pwsid,
		SampleID:          ParseString(row["SAMPLE_ID"]),
		ContaminantCode:   ParseString(row["CONTAMINANT_CODE"]),
		SampleMeasure:     ParseNumber(row["SAMPLE_MEASURE"]),
		UnitOfMeasure:     ParseString(row["UNIT_OF_MEASURE"]),
		ResultSignCode:    ParseString(row["RESULT_SIGN_CODE"]),
		SamplingStartDate: ParseDate(row["SAMPLING_START_DATE"]),
		SamplingEndDate:   ParseDate(row["SAMPLING_END_DATE"]),
	}, true
}

// TransformSiteVisit maps a SITE_VISITS row. PWSID and VISIT_ID are mandatory.
func TransformSiteVisit(row RawRow) (SiteVisit, bool) {
	pwsid, visitID := row.Get("PWSID"), row.Get("VISIT_ID")
	if pwsid == "" || visitID == "" {
		return SiteVisit{}, false
	}
	return SiteVisit{
		PWSID:            pwsid,
		VisitID:          visitID,
		VisitDate:        ParseDate(row["VISIT_DATE"]),
		VisitReasonCode:  ParseString(row["VISIT_REASON_CODE"]),
		ComplianceEval:   ParseString(row["COMPLIANCE_EVAL_CODE"]),
		TreatmentEval:    ParseString(row["TREATMENT_EVAL_CODE"]),
		DistributionEval: ParseString(row["DISTRIBUTION_EVAL_CODE"]),
		SourceWaterEval:  ParseString(row["SOURCE_WATER_EVAL_CODE"]),
		FinancialEval:    ParseString(row["FINANCIAL_EVAL_CODE"]),
		SecurityEval:     ParseString(row["SECURITY_EVAL_CODE"]),
	}, true
}

// TransformGeographicArea maps a GEOGRAPHIC_AREAS row. PWSID is mandatory.
func TransformGeographicArea(row RawRow) (GeographicArea, bool) {
	pwsid := row.Get("PWSID")
	if pwsid == "" {
		return GeographicArea{}, false
	}
	return GeographicArea{
		PWSID:         pwsid,
		AreaTypeCode:  ParseString(row["AREA_TYPE_CODE"]),
		StateServed:   ParseString(row["STATE_SERVED"]),
		CountyServed:  ParseString(row["COUNTY_SERVED"]),
		CityServed:    ParseString(row["CITY_SERVED"]),
		ZipCodeServed: ParseString(row["ZIP_CODE_SERVED"]),
		TribalCode:    ParseString(row["TRIBAL_CODE"]),
	}, true
}

// LcrSampleKey identifies a sample result across snapshots: the sample
// analytical result id when present, otherwise every column that tells two
// results of the same system apart.
func LcrSampleKey(row RawRow) string {
	if sar := row.Get("SAR_ID"); sar != "" {
		return "sar:" + sar
	}
	return joinKey(row, "PWSID", "CONTAMINANT_CODE", "SAMPLING_END_DATE", "SAMPLE_MEASURE")
}

// GeographicAreaKey identifies a served area across snapshots.
func GeographicAreaKey(row RawRow) string {
	return joinKey(row, "PWSID", "AREA_TYPE_CODE", "STATE_SERVED", "COUNTY_SERVED", "CITY_SERVED", "ZIP_CODE_SERVED")
}

func joinKey(row RawRow, columns ...string) string {
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = row.Get(c)
	}
	return strings.Join(parts, "|")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
