// Package excel keeps the breakdown dataset in an .xlsx workbook.
package excel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/pkg/logger"
)

const defaultSheet = "Sheet1"

// ErrDatasetNotFound the workbook does not exist yet
var ErrDatasetNotFound = errors.New("dataset file not found")

// DatasetRepository workbook-backed dataset. Appends rewrite the whole file
// through a temp file and rename so readers never see a half written sheet.
type DatasetRepository struct {
	path  string
	sheet string

	mu      sync.RWMutex
	dataset *entity.Dataset
	cells   [][]cellValue // typed cells, one row per record
	loaded  string        // sheet the dataset was read from

	writeMu  sync.Mutex
	ownStamp fileStamp

	log *zap.Logger
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// NewDatasetRepository returns a repository for path. sheet may be empty to
// use the first sheet of the workbook.
func NewDatasetRepository(path, sheet string) *DatasetRepository {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &DatasetRepository{
		path:  filepath.Clean(path),
		sheet: sheet,
		log:   logger.Named("excel"),
	}
}

// Path the workbook location
func (r *DatasetRepository) Path() string { return r.path }

// Load reads the workbook and replaces the in-memory dataset.
func (r *DatasetRepository) Load(ctx context.Context) (*entity.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, cells, sheet, err := readWorkbook(r.path, r.sheet)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.dataset = ds
	r.cells = cells
	r.loaded = sheet
	r.mu.Unlock()

	r.log.Info("dataset loaded",
		zap.String("path", r.path),
		zap.String("sheet", sheet),
		zap.Int("rows", ds.Len()),
		zap.Strings("columns", ds.Columns))
	return ds, nil
}

// Snapshot returns the dataset currently in memory (nil before Load).
func (r *DatasetRepository) Snapshot() *entity.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dataset
}

// Append adds the record, persists the full dataset and swaps it in.
func (r *DatasetRepository) Append(ctx context.Context, record entity.Record) (*entity.Dataset, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, cells := r.typedSnapshot()
	if current == nil {
		return nil, fmt.Errorf("append before load: %w", ErrDatasetNotFound)
	}
	next := current.Append(record)
	nextCells := make([][]cellValue, 0, len(cells)+1)
	nextCells = append(nextCells, cells...)
	nextCells = append(nextCells, recordCells(next.Columns, record))

	if err := r.persist(next, nextCells); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.dataset = next
	r.cells = nextCells
	r.mu.Unlock()
	return next, nil
}

// Export returns the in-memory dataset as workbook bytes.
func (r *DatasetRepository) Export(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, cells := r.typedSnapshot()
	if ds == nil {
		return nil, ErrDatasetNotFound
	}
	f, err := buildWorkbook(ds.Columns, cells, r.sheetName())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportTo writes the in-memory dataset to another file.
func (r *DatasetRepository) ExportTo(ctx context.Context, path string) error {
	data, err := r.Export(ctx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (r *DatasetRepository) typedSnapshot() (*entity.Dataset, [][]cellValue) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dataset, r.cells
}

func (r *DatasetRepository) sheetName() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded != "" {
		return r.loaded
	}
	if r.sheet != "" {
		return r.sheet
	}
	return defaultSheet
}

func (r *DatasetRepository) persist(ds *entity.Dataset, cells [][]cellValue) error {
	f, err := buildWorkbook(ds.Columns, cells, r.sheetName())
	if err != nil {
		return err
	}
	defer f.Close()

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".dataset-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp workbook: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp workbook: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}

	if st, err := os.Stat(r.path); err == nil {
		r.setOwnStamp(fileStamp{modTime: st.ModTime(), size: st.Size()})
	}
	r.log.Debug("dataset persisted", zap.String("path", r.path), zap.Int("rows", ds.Len()))
	return nil
}

func (r *DatasetRepository) setOwnStamp(s fileStamp) {
	r.mu.Lock()
	r.ownStamp = s
	r.mu.Unlock()
}

func (r *DatasetRepository) isOwnWrite(s fileStamp) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ownStamp.size == s.size && r.ownStamp.modTime.Equal(s.modTime)
}

func readWorkbook(path, sheet string) (*entity.Dataset, [][]cellValue, string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, "", fmt.Errorf("%w: %s", ErrDatasetNotFound, path)
		}
		return nil, nil, "", err
	}
	if err := checkSignature(path); err != nil {
		return nil, nil, "", err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, "", fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return entity.NewDataset(nil, nil), nil, sheet, nil
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, "", fmt.Errorf("read raw sheet %q: %w", sheet, err)
	}
	cells, err := readCells(f, sheet, rows, raw)
	if err != nil {
		return nil, nil, "", fmt.Errorf("read cell types %q: %w", sheet, err)
	}
	return entity.NewDataset(rows[0], rows[1:]), cells, sheet, nil
}

// buildWorkbook writes the header and every typed row to a new workbook.
func buildWorkbook(columns []string, cells [][]cellValue, sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	header := make([]cellValue, len(columns))
	for i, col := range columns {
		header[i] = cellValue{value: col}
	}
	styles := make(map[numFormat]int)
	if err := writeCells(f, sheet, 1, header, styles); err != nil {
		_ = f.Close()
		return nil, err
	}
	for i, row := range cells {
		if err := writeCells(f, sheet, i+2, row, styles); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return f, nil
}
