package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "yamazumi/internal/errors"
)

// InputFormat is the tabular format an input file is read as.
type InputFormat string

const (
	FormatUnknown InputFormat = ""
	FormatXLSX    InputFormat = "xlsx"
	FormatCSV     InputFormat = "csv"
)

// spreadsheetExtensions are the OOXML workbook variants excelize opens.
var spreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// DetectInputFormat picks the reader for name by its extension.
func DetectInputFormat(name string) InputFormat {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case spreadsheetExtensions[ext]:
		return FormatXLSX
	case ext == ".csv":
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// ChartFormat returns "svg" for .svg output paths and "png" otherwise.
func ChartFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return "svg"
	}
	return "png"
}

// FileValidator checks input and output paths before the pipeline runs.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// ValidateFile checks that path is an existing, readable regular file.
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("file does not exist", slog.String("file", path))
		return apperrors.NewInputError(fmt.Sprintf("file %s does not exist", path), err).
			WithContext("path", path)
	}
	if err != nil {
		v.logger.Error("failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("path is a directory, not a file", slog.String("path", path))
		return apperrors.NewInputError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputFile checks that path exists and has a supported format.
// Office lock files (~$name.xlsx) are rejected.
func (v *FileValidator) ValidateInputFile(path string) (InputFormat, error) {
	if err := v.ValidateFile(path); err != nil {
		return FormatUnknown, err
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("refusing temporary Excel lock file", slog.String("file", path))
		return FormatUnknown, apperrors.NewInputError(fmt.Sprintf("%s is a temporary Excel lock file", path), nil)
	}

	format := DetectInputFormat(path)
	if format == FormatUnknown {
		ext := filepath.Ext(path)
		v.logger.Error("unsupported input format",
			slog.String("file", path),
			slog.String("extension", ext))
		return FormatUnknown, apperrors.NewInputError(
			fmt.Sprintf("unsupported input format %q: expected .xlsx, .xlsm or .csv", ext), nil)
	}

	return format, nil
}

// ValidateOutputPath checks the chart destination. The file itself is not
// created here; its parent directory is created at write time.
func (v *FileValidator) ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewAppValidationError("output path is empty", nil)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("output path %s is a directory", path), nil)
	}
	return nil
}

// EnsureParentDir creates the directory that will hold path.
func (v *FileValidator) EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}
	return nil
}
