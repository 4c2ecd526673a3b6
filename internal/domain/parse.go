package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	compactDateRe = regexp.MustCompile(`^\d{8}$`)
	usDateRe      = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	leadingIntRe  = regexp.MustCompile(`^[+-]?\d+`)
	leadingNumRe  = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// noDate is the SDWIS sentinel for a missing date.
const noDate = "00000000"

// ParseString trims s and returns nil when nothing is left.
func ParseString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ParseBool reports whether s is one of the SDWIS truthy indicators.
func ParseBool(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "1", "TRUE":
		return true
	}
	return false
}

// ParseCount parses the leading integer of s. Unparsable input is 0.
func ParseCount(s string) int {
	m := leadingIntRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// ParseNumber parses the leading decimal of s. Unparsable input is nil.
func ParseNumber(s string) *float64 {
	m := leadingNumRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseDate normalises an SDWIS date to YYYY-MM-DD. Unrecognised shapes,
// impossible calendar dates, blanks and the 00000000 sentinel are nil.
func ParseDate(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == noDate {
		return nil
	}

	var out string
	switch {
	case isoDateRe.MatchString(s):
		out = s[:10]
	case compactDateRe.MatchString(s):
		out = s[:4] + "-" + s[4:6] + "-" + s[6:8]
	default:
		m := usDateRe.FindStringSubmatch(s)
		if m == nil {
			return nil
		}
		out = fmt.Sprintf("%s-%s-%s", m[3], padTwo(m[1]), padTwo(m[2]))
	}
	// The column type is DATE; a value Postgres would refuse costs the whole row.
	if _, err := time.Parse(time.DateOnly, out); err != nil {
		return nil
	}
	return &out
}

// FormatDate renders t in the compact YYYYMMDD form used by SDWIS exports.
func FormatDate(t time.Time) string {
	return t.Format("20060102")
}

func padTwo(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
