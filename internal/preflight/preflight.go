// Package preflight validates locally chosen spreadsheets before upload.
//
// The backend does the real parsing; these checks only catch the mistakes
// an operator can fix immediately (wrong file type, oversized file,
// corrupt workbook) without a round trip.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Result describes a spreadsheet that passed validation.
type Result struct {
	Path       string   `json:"path"`
	Name       string   `json:"name"`
	Size       int64    `json:"size"`
	SheetNames []string `json:"sheet_names"`
	RowCount   int      `json:"row_count"`
}

// Check opens the spreadsheet at path and verifies it against the
// configured limits. maxSize <= 0 disables the size check; an empty
// formats list accepts any extension.
func Check(path string, maxSize int64, formats []string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a spreadsheet", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if len(formats) > 0 && !contains(formats, ext) {
		return nil, fmt.Errorf("unsupported file format %q, expected one of %s", ext, strings.Join(formats, ", "))
	}

	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("file is %d bytes, exceeding the %d byte limit", info.Size(), maxSize)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	return &Result{
		Path:       path,
		Name:       filepath.Base(path),
		Size:       info.Size(),
		SheetNames: sheets,
		RowCount:   len(rows),
	}, nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
