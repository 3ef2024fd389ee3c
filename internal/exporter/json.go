package exporter

import (
	"encoding/json"
	"io"

	apperrors "yamazumi/internal/errors"
	"yamazumi/pkg/contracts/domain"
)

// WriteReportJSON encodes report as indented JSON to out.
func WriteReportJSON(out io.Writer, report *domain.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return apperrors.NewStorageError("failed to encode report", err)
	}
	return nil
}
