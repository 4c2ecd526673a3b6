package domain

import "strings"

// RawRow is one CSV data row keyed by header name.
type RawRow map[string]string

// Get returns the trimmed value of column, or "" if the column is absent.
func (r RawRow) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// Record is a typed row ready to be written. Values are in table column order.
type Record interface {
	Values() []any
}
