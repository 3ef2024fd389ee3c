package dataprocessing

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/shared/testutil"
	"yamazumi/pkg/contracts/domain"
)

func TestLoad_ExampleWorkbook(t *testing.T) {
	path := testutil.WriteWorkbook(t, "study.xlsx", "", testutil.ExampleHeader, testutil.ExampleRows)

	records, err := Load(path, "")

	require.NoError(t, err)
	assert.Equal(t, []domain.NormalizedRecord{
		{Station: "1", DurationSeconds: 60, Category: domain.CategoryVA},
		{Station: "1", DurationSeconds: 20, Category: domain.CategoryNVA},
		{Station: "1", DurationSeconds: 10, Category: domain.CategoryMuda},
		{Station: "2", DurationSeconds: 30, Category: domain.CategoryVA},
	}, records)
}

func TestLoad_CSVMatchesWorkbook(t *testing.T) {
	xlsx := testutil.WriteWorkbook(t, "study.xlsx", "", testutil.ExampleHeader, testutil.ExampleRows)
	csvPath := testutil.WriteCSV(t, "study.csv", testutil.ExampleHeader, testutil.ExampleRows)

	fromXLSX, err := Load(xlsx, "")
	require.NoError(t, err)
	fromCSV, err := Load(csvPath, "")
	require.NoError(t, err)

	assert.Equal(t, fromXLSX, fromCSV)
}

func TestLoad_UnitConversion(t *testing.T) {
	header := []string{"Estação", "Tempo (min)", "Categoria"}

	t.Run("minutes header", func(t *testing.T) {
		path := testutil.WriteWorkbook(t, "min.xlsx", "", header, [][]any{{"A", 2.0, "VA"}})

		records, err := Load(path, "")

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, 120.0, records[0].DurationSeconds)
	})

	t.Run("seconds header", func(t *testing.T) {
		path := testutil.WriteWorkbook(t, "sec.xlsx", "", []string{"Station", "Time", "Category"}, [][]any{{"A", 120.0, "VA"}})

		records, err := Load(path, "")

		require.NoError(t, err)
		assert.Equal(t, 120.0, records[0].DurationSeconds)
	})

	t.Run("hint overrides header", func(t *testing.T) {
		path := testutil.WriteCSV(t, "hint.csv", header, [][]any{{"A", 2.0, "VA"}})

		records, err := Load(path, "segundos")

		require.NoError(t, err)
		assert.Equal(t, 2.0, records[0].DurationSeconds)
	})

	t.Run("decimal comma", func(t *testing.T) {
		path := writeText(t, "comma.csv", "Estação;Tempo (min);Categoria\nA;1,5;va\n")

		records, err := Load(path, "")

		require.NoError(t, err)
		assert.Equal(t, 90.0, records[0].DurationSeconds)
		assert.Equal(t, domain.CategoryVA, records[0].Category)
	})
}

func TestLoad_Errors(t *testing.T) {
	header := []string{"Station", "Time", "Category"}

	tests := []struct {
		name     string
		path     func(t *testing.T) string
		hint     string
		wantType apperrors.ErrorType
		wantMsg  string
	}{
		{
			name:     "missing file",
			path:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.xlsx") },
			wantType: apperrors.ErrTypeInput,
		},
		{
			name:     "unsupported format",
			path:     func(t *testing.T) string { return writeText(t, "study.txt", "x") },
			wantType: apperrors.ErrTypeInput,
		},
		{
			name: "missing category column",
			path: func(t *testing.T) string {
				return testutil.WriteWorkbook(t, "s.xlsx", "", []string{"Estação", "Tempo"}, [][]any{{"A", 1}})
			},
			wantType: apperrors.ErrTypeSchema,
			wantMsg:  "category",
		},
		{
			name: "non-numeric duration",
			path: func(t *testing.T) string {
				return testutil.WriteCSV(t, "s.csv", header, [][]any{{"A", 10, "VA"}, {"A", "abc", "VA"}})
			},
			wantType: apperrors.ErrTypeValidation,
			wantMsg:  "row 3",
		},
		{
			name: "negative duration",
			path: func(t *testing.T) string {
				return testutil.WriteCSV(t, "s.csv", header, [][]any{{"A", -5, "VA"}})
			},
			wantType: apperrors.ErrTypeValidation,
			wantMsg:  "negative",
		},
		{
			name: "blank duration",
			path: func(t *testing.T) string {
				return testutil.WriteCSV(t, "s.csv", header, [][]any{{"A", "", "VA"}})
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "infinite duration",
			path: func(t *testing.T) string {
				return testutil.WriteCSV(t, "s.csv", header, [][]any{{"A", "Inf", "VA"}})
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "bad unit hint",
			path: func(t *testing.T) string {
				return testutil.WriteCSV(t, "s.csv", header, [][]any{{"A", 1, "VA"}})
			},
			hint:     "hours",
			wantType: apperrors.ErrTypeValidation,
			wantMsg:  "unit must be minutes or seconds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Load(tt.path(t), tt.hint)

			require.Error(t, err)
			assert.Nil(t, records)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoader_LoadTable(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	loader := NewLoader(logger)

	table := &Table{
		Name:   "inline",
		Header: []string{"station", "time", "category"},
		Rows: []TableRow{
			{Line: 2, Cells: []string{"A", "10", " va "}},
			{Line: 3, Cells: []string{"  ", "99", "VA"}},
			{Line: 4, Cells: []string{"B", "5"}},
			{Line: 5, Cells: []string{"A", "7", "Setup"}},
		},
	}

	result, err := loader.LoadTable(context.Background(), table, "")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, domain.UnitSourceDefault, result.Unit.Source)
	assert.Equal(t, []domain.NormalizedRecord{
		{Station: "A", DurationSeconds: 10, Category: domain.CategoryVA},
		{Station: "B", DurationSeconds: 5, Category: ""},
		{Station: "A", DurationSeconds: 7, Category: "SETUP"},
	}, result.Records)
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "skipping row without station")
	assert.True(t, handler.ContainsAttr("row", int64(3)))
}

func TestLoader_LoadTable_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(nil).LoadTable(ctx, &Table{}, "")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_EmptyTableHasNoRecords(t *testing.T) {
	path := testutil.WriteCSV(t, "empty.csv", []string{"station", "time", "category"}, nil)

	records, err := Load(path, "")

	require.NoError(t, err)
	assert.Empty(t, records)
}
