package excel

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

// numFormat built-in number format id or custom format code
type numFormat struct {
	id     int
	custom string
}

func (n numFormat) isGeneral() bool {
	return n.id == 0 && n.custom == ""
}

// cellValue a cell as it is written back: the typed value plus the number
// format it was displayed with. value is nil for an empty cell.
type cellValue struct {
	value  interface{}
	format numFormat
}

// numFmtCache resolves style ids of the source workbook to number formats.
type numFmtCache struct {
	f     *excelize.File
	sheet string
	byID  map[int]numFormat
}

func (c *numFmtCache) lookup(cell string) (numFormat, error) {
	id, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil || id == 0 {
		return numFormat{}, err
	}
	if cached, ok := c.byID[id]; ok {
		return cached, nil
	}
	style, err := c.f.GetStyle(id)
	if err != nil {
		return numFormat{}, err
	}
	n := numFormat{id: style.NumFmt}
	if style.CustomNumFmt != nil {
		n.custom = *style.CustomNumFmt
	}
	c.byID[id] = n
	return n, nil
}

// readCells returns the typed cells of every kept row, aligned with the
// records entity.NewDataset builds from the same rows.
func readCells(f *excelize.File, sheet string, rows, raw [][]string) ([][]cellValue, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	_, index := entity.HeaderColumns(rows[0])
	fmts := &numFmtCache{f: f, sheet: sheet, byID: make(map[int]numFormat)}

	var out [][]cellValue
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if entity.BlankRow(row, index) {
			continue
		}
		var rawRow []string
		if i < len(raw) {
			rawRow = raw[i]
		}
		cells := make([]cellValue, len(index))
		for j, col := range index {
			if col >= len(row) {
				continue
			}
			name, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return nil, err
			}
			c, err := readCell(f, sheet, name, row[col], at(rawRow, col), fmts)
			if err != nil {
				return nil, err
			}
			cells[j] = c
		}
		out = append(out, cells)
	}
	return out, nil
}

func readCell(f *excelize.File, sheet, cell, formatted, raw string, fmts *numFmtCache) (cellValue, error) {
	if formatted == "" && raw == "" {
		return cellValue{}, nil
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return cellValue{}, err
	}
	switch typ {
	case excelize.CellTypeBool:
		return cellValue{value: raw == "1" || strings.EqualFold(raw, "true")}, nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeFormula:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cellValue{value: formatted}, nil
		}
		format, err := fmts.lookup(cell)
		return cellValue{value: n, format: format}, err
	default:
		return cellValue{value: formatted}, nil
	}
}

// recordCells types the values of a new record. Input that reads back as
// the same number is stored as a number.
func recordCells(columns []string, rec entity.Record) []cellValue {
	out := make([]cellValue, len(columns))
	for i, col := range columns {
		v, ok := rec.Get(col)
		if !ok {
			continue
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil && strconv.FormatFloat(n, 'f', -1, 64) == v {
			out[i] = cellValue{value: n}
			continue
		}
		out[i] = cellValue{value: v}
	}
	return out
}

func at(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// writeCells fills one sheet row, restoring the number formats.
func writeCells(f *excelize.File, sheet string, rowIdx int, cells []cellValue, styles map[numFormat]int) error {
	for i, c := range cells {
		if c.value == nil {
			continue
		}
		name, err := excelize.CoordinatesToCellName(i+1, rowIdx)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, c.value); err != nil {
			return err
		}
		if c.format.isGeneral() {
			continue
		}
		id, ok := styles[c.format]
		if !ok {
			style := &excelize.Style{NumFmt: c.format.id}
			if c.format.custom != "" {
				custom := c.format.custom
				style = &excelize.Style{CustomNumFmt: &custom}
			}
			if id, err = f.NewStyle(style); err != nil {
				return err
			}
			styles[c.format] = id
		}
		if err := f.SetCellStyle(sheet, name, name, id); err != nil {
			return err
		}
	}
	return nil
}
