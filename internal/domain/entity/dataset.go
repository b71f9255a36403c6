package entity

import "strings"

// Dataset ordered records with a unique column list.
type Dataset struct {
	Columns []string
	Records []Record
}

// NewDataset builds a dataset from a header row and raw data rows. Header
// names are trimmed; empty, "Unnamed*" and duplicate headers are dropped
// together with their cells. Rows shorter than the header are padded and
// fully blank rows are skipped.
func NewDataset(header []string, rows [][]string) *Dataset {
	columns, index := HeaderColumns(header)

	ds := &Dataset{Columns: columns, Records: make([]Record, 0, len(rows))}
	for _, row := range rows {
		if BlankRow(row, index) {
			continue
		}
		values := make(map[string]string, len(index))
		for i, col := range index {
			if col < len(row) {
				values[columns[i]] = row[col]
			}
		}
		ds.Records = append(ds.Records, NewRecord(columns, values))
	}
	return ds
}

// HeaderColumns returns the kept column names and their positions in the
// raw header row.
func HeaderColumns(header []string) (names []string, index []int) {
	seen := make(map[string]struct{}, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" || strings.HasPrefix(name, "Unnamed") {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		index = append(index, i)
	}
	if names == nil {
		names = []string{}
	}
	return names, index
}

// BlankRow reports whether every kept cell of row is blank.
func BlankRow(row []string, index []int) bool {
	for _, col := range index {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			return false
		}
	}
	return true
}

// HasColumn reports whether the dataset carries the column.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns returns a SchemaError for the first absent column.
func (d *Dataset) RequireColumns(names ...string) error {
	for _, n := range names {
		if !d.HasColumn(n) {
			return &SchemaError{Column: n}
		}
	}
	return nil
}

// Len number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// Append returns a new dataset with the record added at the end. The
// receiver is left untouched.
func (d *Dataset) Append(rec Record) *Dataset {
	next := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Records: make([]Record, 0, len(d.Records)+1),
	}
	next.Records = append(next.Records, d.Records...)
	next.Records = append(next.Records, NewRecord(next.Columns, rec.Map()))
	return next
}

// Tail returns up to n trailing records.
func (d *Dataset) Tail(n int) []Record {
	if d == nil || n <= 0 {
		return nil
	}
	if n >= len(d.Records) {
		return append([]Record(nil), d.Records...)
	}
	return append([]Record(nil), d.Records[len(d.Records)-n:]...)
}
