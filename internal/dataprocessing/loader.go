package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/infrastructure"
	"yamazumi/internal/validation"
	"yamazumi/pkg/contracts/domain"
)

// LoadResult is the output of the load stage.
type LoadResult struct {
	Source  string
	Sheet   string
	Columns ColumnMap
	Unit    UnitResolution
	Records []domain.NormalizedRecord
	// Skipped counts rows dropped for a blank station.
	Skipped int
}

// Loader reads time studies and normalizes them to seconds.
type Loader struct {
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewLoader creates a loader. A nil logger falls back to the global logger.
func NewLoader(logger *slog.Logger) *Loader {
	logger = infrastructure.WithComponent(logger, "loader")
	return &Loader{
		logger:    logger,
		validator: validation.NewFileValidator(logger),
	}
}

// Load validates path, reads its table and normalizes it. sheet is only
// used for workbooks.
func (l *Loader) Load(ctx context.Context, path, sheet, unitHint string) (*LoadResult, error) {
	if _, err := l.validator.ValidateInputFile(path); err != nil {
		return nil, err
	}

	table, err := ReadTable(path, sheet)
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to read table",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	return l.LoadTable(ctx, table, unitHint)
}

// LoadTable resolves columns and unit on an in-memory table and converts
// every data row to a NormalizedRecord.
func (l *Loader) LoadTable(ctx context.Context, table *Table, unitHint string) (*LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	columns, err := ResolveColumns(table.Header)
	if err != nil {
		l.logger.WarnContext(ctx, "required columns missing",
			slog.String("source", table.Name),
			slog.Any("header", table.Header))
		return nil, err
	}

	unit, err := ResolveUnit(unitHint, columns.TimeHeader)
	if err != nil {
		return nil, err
	}
	l.logger.InfoContext(ctx, "time unit resolved",
		slog.String("source", table.Name),
		slog.String("unit", string(unit.Unit)),
		slog.String("unit_source", string(unit.Source)),
		slog.String("time_header", columns.TimeHeader))

	result := &LoadResult{
		Source:  table.Name,
		Sheet:   table.Sheet,
		Columns: columns,
		Unit:    unit,
		Records: make([]domain.NormalizedRecord, 0, len(table.Rows)),
	}

	factor := unit.Factor()
	for _, row := range table.Rows {
		raw := columns.Raw(row)
		record, ok, err := normalizeRow(raw, factor)
		if err != nil {
			return nil, err
		}
		if !ok {
			result.Skipped++
			l.logger.WarnContext(ctx, "skipping row without station",
				slog.String("source", table.Name),
				slog.Int("row", raw.Line))
			continue
		}
		result.Records = append(result.Records, record)
	}

	l.logger.InfoContext(ctx, "table loaded",
		slog.String("source", table.Name),
		slog.Int("records", len(result.Records)),
		slog.Int("skipped", result.Skipped))

	return result, nil
}

// normalizeRow converts raw to seconds. ok is false for a row without a
// station.
func normalizeRow(raw domain.RawRow, factor float64) (domain.NormalizedRecord, bool, error) {
	station := strings.TrimSpace(raw.Station)
	if station == "" {
		return domain.NormalizedRecord{}, false, nil
	}

	duration, err := parseDuration(raw.Duration)
	if err != nil {
		return domain.NormalizedRecord{}, false, apperrors.NewAppValidationError(
			fmt.Sprintf("row %d: invalid duration %q", raw.Line, raw.Duration), err).
			WithContext("row", raw.Line).
			WithContext("value", raw.Duration)
	}

	return domain.NormalizedRecord{
		Station:         station,
		DurationSeconds: duration * factor,
		Category:        domain.Category(strings.ToUpper(strings.TrimSpace(raw.Category))),
	}, true, nil
}

// parseDuration reads a non-negative finite number. A lone decimal comma
// ("1,5") is accepted.
func parseDuration(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value is not finite")
	}
	if v < 0 {
		return 0, fmt.Errorf("value is negative")
	}
	return v, nil
}

// Load reads path and returns its normalized records using the default
// logger.
func Load(path, unitHint string) ([]domain.NormalizedRecord, error) {
	result, err := NewLoader(nil).Load(context.Background(), path, "", unitHint)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

// LoadTable normalizes an in-memory table using the default logger.
func LoadTable(table *Table, unitHint string) ([]domain.NormalizedRecord, error) {
	result, err := NewLoader(nil).LoadTable(context.Background(), table, unitHint)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}
