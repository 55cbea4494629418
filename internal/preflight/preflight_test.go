package preflight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestCheck(t *testing.T) {
	formats := []string{".xlsx", ".xls"}

	t.Run("valid workbook passes", func(t *testing.T) {
		path := writeWorkbook(t, "orders.xlsx", [][]any{
			{"shop", "order_id", "amount"},
			{"ShopA", "O-1", 12.5},
			{"ShopB", "O-2", 7.0},
		})

		result, err := Check(path, 10*1024*1024, formats)
		require.NoError(t, err)

		assert.Equal(t, "orders.xlsx", result.Name)
		assert.Equal(t, 3, result.RowCount)
		assert.NotEmpty(t, result.SheetNames)
		assert.Greater(t, result.Size, int64(0))
	})

	t.Run("missing file is rejected", func(t *testing.T) {
		_, err := Check(filepath.Join(t.TempDir(), "nope.xlsx"), 0, formats)
		assert.Error(t, err)
	})

	t.Run("unsupported extension is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "orders.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

		_, err := Check(path, 0, formats)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported file format")
	})

	t.Run("oversized file is rejected", func(t *testing.T) {
		path := writeWorkbook(t, "big.xlsx", [][]any{{"h"}})

		_, err := Check(path, 10, formats)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeding")
	})

	t.Run("corrupt workbook is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

		_, err := Check(path, 0, formats)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot open workbook")
	})
}
