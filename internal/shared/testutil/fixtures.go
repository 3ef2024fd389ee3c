package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ExampleHeader is the header of the reference time study.
var ExampleHeader = []string{"Linha", "Estação", "Tempo (s)", "Categoria"}

// ExampleRows is a small two-station study. Station 1 totals 90 s with
// 60 s VA, station 2 totals 30 s of VA only, so the mean takt is 60 s.
var ExampleRows = [][]any{
	{"L1", "1", 60, "VA"},
	{"L1", "1", 20, "NVA"},
	{"L1", "1", 10, "MUDA"},
	{"L1", "2", 30, "VA"},
}

// WriteWorkbook saves an .xlsx file with header and rows on a sheet named
// sheet (the default "Sheet1" when empty) and returns its path.
func WriteWorkbook(t *testing.T, name, sheet string, header []string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	} else {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}

	for col, h := range header {
		require.NoError(t, f.SetCellValue(sheet, cellName(t, col+1, 1), h))
	}
	for r, row := range rows {
		for col, v := range row {
			require.NoError(t, f.SetCellValue(sheet, cellName(t, col+1, r+2), v))
		}
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteCSV saves header and rows as a comma separated file and returns its
// path.
func WriteCSV(t *testing.T, name string, header []string, rows [][]any) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.Write(header))
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = cellString(v)
		}
		require.NoError(t, w.Write(record))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func cellName(t *testing.T, col, row int) string {
	t.Helper()
	name, err := excelize.CoordinatesToCellName(col, row)
	require.NoError(t, err)
	return name
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return ""
	}
}
