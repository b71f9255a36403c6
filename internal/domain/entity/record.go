package entity

import "strings"

// Special columns the lookup reads.
const (
	ColumnMachineName = "Machine Name"
	ColumnProblem     = "Problem"
)

// Record one row of the dataset. Values are stored in column order.
type Record struct {
	columns []string
	values  map[string]string
}

// NewRecord builds a record over the given column order. Values for columns
// not present in the map are missing.
func NewRecord(columns []string, values map[string]string) Record {
	cols := make([]string, len(columns))
	copy(cols, columns)
	vals := make(map[string]string, len(values))
	for _, c := range cols {
		if v, ok := values[c]; ok {
			vals[c] = v
		}
	}
	return Record{columns: cols, values: vals}
}

// Columns returns the record's column order.
func (r Record) Columns() []string {
	out := make([]string, len(r.columns))
	copy(out, r.columns)
	return out
}

// Get returns the value for a column and whether it is present (non-empty).
func (r Record) Get(column string) (string, bool) {
	v, ok := r.values[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Value returns the value or "" when missing.
func (r Record) Value(column string) string {
	v, _ := r.Get(column)
	return v
}

// Values returns the record's cells in column order.
func (r Record) Values() []string {
	out := make([]string, len(r.columns))
	for i, c := range r.columns {
		out[i] = r.values[c]
	}
	return out
}

// Map returns a copy of the column -> value mapping.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// IsEmpty reports whether every cell is blank.
func (r Record) IsEmpty() bool {
	for _, v := range r.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
