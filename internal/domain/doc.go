// Package domain models the EPA Safe Drinking Water Information System (SDWIS)
// bulk export as typed, table-shaped records.
//
// # Data Source
//
// The EPA ECHO site publishes a quarterly snapshot of SDWIS as a zip of CSV
// files (SDWA_latest_downloads.zip). Each snapshot republishes both new and
// previously seen rows, so every table must tolerate re-ingestion.
//
// # SDWIS Conventions
//
// Identifiers:
//
//	PWSID is the Public Water System Identifier, e.g. "CA1910067". The first
//	two characters are usually the primacy agency (state) code.
//	Violations are keyed by (PWSID, VIOLATION_ID), site visits by (PWSID, VISIT_ID).
//
// Dates arrive in three shapes and are normalised to YYYY-MM-DD:
//
//	"2023-04-01T00:00:00"  ISO, truncated to the date part
//	"20230401"             compact
//	"4/1/2023"             US, month and day zero-padded
//	"00000000" and blanks mean no date.
//
// Flags are "Y"/"N" indicators; "Y", "1" and "TRUE" are true, anything else false.
//
// Counts (population served, service connections) are never absent: blanks
// and garbage read as 0. Measurements (MCLs, sample results) keep the
// distinction between zero and unknown.
//
// # Records
//
// Each transformer returns a record and a bool. A false bool is a reject:
// the row is missing a mandatory identity field and is dropped without error.
// Every record lists its values in the same order as its table's columns so
// the writer can bind them without reflection.
package domain
