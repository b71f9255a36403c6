package excel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotWorkbook the file is not an .xlsx workbook
var ErrNotWorkbook = errors.New("not an xlsx workbook")

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// checkSignature reads the magic number of path. Legacy .xls (OLE2) files
// and anything that is not a zip archive are rejected before excelize sees them.
func checkSignature(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic):
		return nil
	case bytes.HasPrefix(head, oleMagic):
		return fmt.Errorf("%w: %s is a legacy .xls file, save it as .xlsx", ErrNotWorkbook, path)
	default:
		return fmt.Errorf("%w: %s", ErrNotWorkbook, path)
	}
}
