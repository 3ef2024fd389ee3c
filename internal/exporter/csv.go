package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/infrastructure"
	"yamazumi/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	return &CSVWriter{logger: infrastructure.WithComponent(logger, "csv_writer")}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV encodes the headers and records to out.
func (w *CSVWriter) WriteCSV(out io.Writer, options WriteOptions) error {
	w.logger.Debug("encoding CSV",
		slog.Int("record_count", len(options.Records)))

	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewStorageError("failed to write headers", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}
	writer.Flush()

	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush CSV", err)
	}
	return nil
}

// WriteStations encodes the per-station table of report, prefixed with a
// BOM so spreadsheet tools detect UTF-8.
func (w *CSVWriter) WriteStations(out io.Writer, report *domain.Report) error {
	headers, rows := StationTable(report)

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Strings()
	}

	return w.WriteCSV(out, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}
