package excel

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
)

func writeFixture(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func fixturePath(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breakdowns.xlsx")
	writeFixture(t, path, [][]interface{}{
		{" Machine Name ", "Problem", "", "Date"},
		{"Press-1", "Overheat", "junk", "2025-05-01"},
		{"Press-1", "Jam"},
		{},
		{"Lathe-2", "Overheat", nil, "2025-05-03"},
	})
	return path
}

func TestLoad_TrimsAndDropsUnnamedColumns(t *testing.T) {
	repo := NewDatasetRepository(fixturePath(t), "")

	ds, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Machine Name", "Problem", "Date"}, ds.Columns)
	require.Equal(t, 3, ds.Len(), "blank row must be skipped")
	assert.Equal(t, "Press-1", ds.Records[0].Value(entity.ColumnMachineName))
	assert.Equal(t, "2025-05-01", ds.Records[0].Value("Date"))
	_, ok := ds.Records[1].Get("Date")
	assert.False(t, ok, "short row leaves trailing cells missing")
	assert.Same(t, ds, repo.Snapshot())
}

func TestLoad_MissingFile(t *testing.T) {
	repo := NewDatasetRepository(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestAppend_PersistsWholeDataset(t *testing.T) {
	path := fixturePath(t)
	repo := NewDatasetRepository(path, "")
	ctx := context.Background()
	before, err := repo.Load(ctx)
	require.NoError(t, err)

	rec := entity.NewRecord(before.Columns, map[string]string{
		entity.ColumnMachineName: "Mill-3",
		entity.ColumnProblem:     "Vibration",
	})
	after, err := repo.Append(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 3, before.Len(), "previous dataset is not mutated")
	assert.Equal(t, 4, after.Len())

	reread, err := NewDatasetRepository(path, "").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, after.Columns, reread.Columns)
	require.Equal(t, 4, reread.Len())
	assert.Equal(t, "Mill-3", reread.Records[3].Value(entity.ColumnMachineName))
	assert.Equal(t, "Vibration", reread.Records[3].Value(entity.ColumnProblem))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".dataset-*.xlsx"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp workbook must be renamed away")
}

func TestAppend_BeforeLoad(t *testing.T) {
	repo := NewDatasetRepository(fixturePath(t), "")
	_, err := repo.Append(context.Background(), entity.Record{})
	require.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestExport_RoundTrips(t *testing.T) {
	repo := NewDatasetRepository(fixturePath(t), "")
	ctx := context.Background()
	_, err := repo.Load(ctx)
	require.NoError(t, err)

	data, err := repo.Export(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Machine Name", "Problem", "Date"}, rows[0])
	assert.Equal(t, []string{"Lathe-2", "Overheat", "2025-05-03"}, rows[3])
}

func TestExportTo_WritesFile(t *testing.T) {
	repo := NewDatasetRepository(fixturePath(t), "")
	ctx := context.Background()
	_, err := repo.Load(ctx)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "copy.xlsx")
	require.NoError(t, repo.ExportTo(ctx, out))
	st, err := os.Stat(out)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}

func TestReload_SkipsOwnWrite(t *testing.T) {
	path := fixturePath(t)
	repo := NewDatasetRepository(path, "")
	ctx := context.Background()
	ds, err := repo.Load(ctx)
	require.NoError(t, err)

	_, err = repo.Append(ctx, entity.NewRecord(ds.Columns, map[string]string{entity.ColumnMachineName: "X"}))
	require.NoError(t, err)

	reloaded, err := repo.Reload(ctx)
	require.NoError(t, err)
	assert.False(t, reloaded)

	writeFixture(t, path, [][]interface{}{
		{"Machine Name", "Problem"},
		{"Saw-9", "Blade"},
	})
	reloaded, err = repo.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, 1, repo.Snapshot().Len())
}

func TestAppend_KeepsCellTypes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed.xlsx")
	f := excelize.NewFile()
	for cell, v := range map[string]interface{}{
		"A1": "Machine Name", "B1": "Problem", "C1": "Downtime", "D1": "Cost", "E1": "Date", "F1": "Fixed",
		"A2": "Press-1", "B2": "Overheat", "C2": 45, "D2": 12.5,
		"E2": time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "F2": true,
	} {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	custom := "0.00"
	costStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "D2", "D2", costStyle))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	readBack := func(cell string) (excelize.CellType, string, string) {
		t.Helper()
		wb, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer wb.Close()
		typ, err := wb.GetCellType("Sheet1", cell)
		require.NoError(t, err)
		formatted, err := wb.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		raw, err := wb.GetCellValue("Sheet1", cell, excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		return typ, formatted, raw
	}
	_, dateBefore, dateRawBefore := readBack("E2")

	repo := NewDatasetRepository(path, "")
	ctx := context.Background()
	ds, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12.50", ds.Records[0].Value("Cost"))

	_, err = repo.Append(ctx, entity.NewRecord(ds.Columns, map[string]string{
		entity.ColumnMachineName: "Mill-3",
		"Downtime":               "30",
		"Cost":                   "007",
	}))
	require.NoError(t, err)

	textTypes := []excelize.CellType{excelize.CellTypeSharedString, excelize.CellTypeInlineString}

	typ, _, raw := readBack("C2")
	assert.NotContains(t, textTypes, typ, "number must stay a number")
	assert.Equal(t, "45", raw)

	typ, formatted, raw := readBack("D2")
	assert.NotContains(t, textTypes, typ)
	assert.Equal(t, "12.5", raw)
	assert.Equal(t, "12.50", formatted, "number format is kept")

	typ, formatted, raw = readBack("E2")
	assert.NotContains(t, textTypes, typ)
	assert.Equal(t, dateRawBefore, raw)
	assert.Equal(t, dateBefore, formatted, "date format is kept")

	typ, _, _ = readBack("F2")
	assert.Equal(t, excelize.CellTypeBool, typ)

	typ, _, raw = readBack("C3")
	assert.NotContains(t, textTypes, typ, "numeric input is stored as a number")
	assert.Equal(t, "30", raw)

	typ, formatted, _ = readBack("D3")
	assert.Contains(t, textTypes, typ, "input that does not read back the same stays text")
	assert.Equal(t, "007", formatted)
}
