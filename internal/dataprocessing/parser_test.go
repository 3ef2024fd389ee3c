package dataprocessing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/shared/testutil"
)

func writeText(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadTable_Workbook(t *testing.T) {
	path := testutil.WriteWorkbook(t, "study.xlsx", "", testutil.ExampleHeader, testutil.ExampleRows)

	table, err := ReadTable(path, "")

	require.NoError(t, err)
	assert.Equal(t, "Sheet1", table.Sheet)
	assert.Equal(t, testutil.ExampleHeader, table.Header)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, []string{"L1", "1", "60", "VA"}, table.Rows[0].Cells)
}

func TestReadTable_NamedSheet(t *testing.T) {
	path := testutil.WriteWorkbook(t, "study.xlsx", "Linha A", testutil.ExampleHeader, testutil.ExampleRows)

	table, err := ReadTable(path, "Linha A")
	require.NoError(t, err)
	assert.Equal(t, "Linha A", table.Sheet)

	_, err = ReadTable(path, "Linha B")
	require.Error(t, err)
	assert.True(t, apperrors.IsInputError(err))
}

func TestReadTable_CSV(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantHeader []string
		wantRows   [][]string
		wantLines  []int
	}{
		{
			name:       "comma separated",
			content:    "station,time,category\nA,10,VA\nB,20,NVA\n",
			wantHeader: []string{"station", "time", "category"},
			wantRows:   [][]string{{"A", "10", "VA"}, {"B", "20", "NVA"}},
			wantLines:  []int{2, 3},
		},
		{
			name:       "semicolon with decimal comma",
			content:    "Estação;Tempo (min);Categoria\n1;1,5;VA\n",
			wantHeader: []string{"Estação", "Tempo (min)", "Categoria"},
			wantRows:   [][]string{{"1", "1,5", "VA"}},
			wantLines:  []int{2},
		},
		{
			name:       "byte order mark and blank rows",
			content:    "\xEF\xBB\xBFstation,time,category\n\n,,\nA,10,VA\n",
			wantHeader: []string{"station", "time", "category"},
			wantRows:   [][]string{{"A", "10", "VA"}},
			wantLines:  []int{4},
		},
		{
			name:       "ragged rows",
			content:    "station,time,category\nA,10\n",
			wantHeader: []string{"station", "time", "category"},
			wantRows:   [][]string{{"A", "10"}},
			wantLines:  []int{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadTable(writeText(t, "study.csv", tt.content), "")

			require.NoError(t, err)
			assert.Equal(t, tt.wantHeader, table.Header)
			require.Len(t, table.Rows, len(tt.wantRows))
			for i, row := range table.Rows {
				assert.Equal(t, tt.wantRows[i], row.Cells)
				assert.Equal(t, tt.wantLines[i], row.Line)
			}
		})
	}
}

func TestReadTableFrom(t *testing.T) {
	table, err := ReadTableFrom(strings.NewReader("station,time,category\nA,10,VA\n"), "upload.csv", "")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)

	xlsx := testutil.WriteWorkbook(t, "upload.xlsx", "", testutil.ExampleHeader, testutil.ExampleRows)
	file, err := os.Open(xlsx)
	require.NoError(t, err)
	defer file.Close()

	table, err = ReadTableFrom(file, "upload.xlsx", "")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 4)

	_, err = ReadTableFrom(strings.NewReader("x"), "upload.txt", "")
	assert.True(t, apperrors.IsInputError(err))
}

func TestReadTable_Errors(t *testing.T) {
	_, err := ReadTable(writeText(t, "notes.txt", "station,time"), "")
	assert.True(t, apperrors.IsInputError(err))

	_, err = ReadTable(writeText(t, "broken.xlsx", "not a zip"), "")
	assert.True(t, apperrors.IsInputError(err))
}

func TestTableRow_Cell(t *testing.T) {
	row := TableRow{Cells: []string{"a", "b"}}

	assert.Equal(t, "b", row.Cell(1))
	assert.Equal(t, "", row.Cell(2))
	assert.Equal(t, "", row.Cell(-1))
}
