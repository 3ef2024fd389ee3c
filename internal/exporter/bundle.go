package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/infrastructure"
	"yamazumi/internal/validation"
	"yamazumi/pkg/contracts/domain"
)

// Bundle collects the artifacts of one run in memory and writes them
// together. Either every artifact lands on disk or none does.
type Bundle struct {
	logger    *slog.Logger
	validator *validation.FileValidator
	csv       *CSVWriter
	artifacts []artifact
}

type artifact struct {
	kind string
	path string
	data []byte
}

// NewBundle creates an empty bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	logger = infrastructure.WithComponent(logger, "exporter")
	return &Bundle{
		logger:    logger,
		validator: validation.NewFileValidator(logger),
		csv:       NewCSVWriter(logger),
	}
}

// Add encodes one artifact bound for path. Nothing touches the disk until
// Commit.
func (b *Bundle) Add(kind, path string, encode func(io.Writer) error) error {
	if err := b.validator.ValidateOutputPath(path); err != nil {
		return err
	}
	clean := filepath.Clean(path)
	for _, a := range b.artifacts {
		if a.path == clean {
			return apperrors.NewAppValidationError(
				fmt.Sprintf("%s and %s both target %s", a.kind, kind, path), nil).
				WithContext("path", path)
		}
	}

	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return err
	}
	b.artifacts = append(b.artifacts, artifact{kind: kind, path: clean, data: buf.Bytes()})
	return nil
}

// AddStationsCSV queues the station table as CSV.
func (b *Bundle) AddStationsCSV(path string, report *domain.Report) error {
	return b.Add("csv", path, func(w io.Writer) error {
		return b.csv.WriteStations(w, report)
	})
}

// AddReportJSON queues the full report as JSON.
func (b *Bundle) AddReportJSON(path string, report *domain.Report) error {
	return b.Add("json", path, func(w io.Writer) error {
		return WriteReportJSON(w, report)
	})
}

// AddStationsXLSX queues the station table as a workbook.
func (b *Bundle) AddStationsXLSX(path string, report *domain.Report) error {
	return b.Add("xlsx", path, func(w io.Writer) error {
		return WriteStationsXLSX(w, report)
	})
}

// Len returns the number of queued artifacts.
func (b *Bundle) Len() int {
	return len(b.artifacts)
}

// Commit writes every artifact to a temporary file beside its target and
// renames them into place only after all writes succeeded.
func (b *Bundle) Commit(ctx context.Context) error {
	temps := make([]string, 0, len(b.artifacts))
	cleanup := func() {
		for _, tmp := range temps {
			os.Remove(tmp)
		}
	}

	for _, a := range b.artifacts {
		if err := ctx.Err(); err != nil {
			cleanup()
			return err
		}
		tmp, err := b.writeTemp(a)
		if err != nil {
			cleanup()
			b.logger.ErrorContext(ctx, "failed to write artifact",
				slog.String("kind", a.kind),
				slog.String("path", a.path),
				slog.String("error", err.Error()))
			return err
		}
		temps = append(temps, tmp)
	}

	for i, a := range b.artifacts {
		if err := os.Rename(temps[i], a.path); err != nil {
			cleanup()
			return apperrors.NewStorageError(fmt.Sprintf("failed to write %s", a.path), err).
				WithContext("kind", a.kind)
		}
		b.logger.InfoContext(ctx, "artifact written",
			slog.String("kind", a.kind),
			slog.String("path", a.path),
			slog.Int("bytes", len(a.data)))
	}
	return nil
}

func (b *Bundle) writeTemp(a artifact) (string, error) {
	if err := b.validator.EnsureParentDir(a.path); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(filepath.Dir(a.path), "."+filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to create %s", a.path), err)
	}
	if _, err := f.Write(a.data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to write %s", a.path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to write %s", a.path), err)
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return "", apperrors.NewStorageError(fmt.Sprintf("failed to write %s", a.path), err)
	}
	return f.Name(), nil
}
