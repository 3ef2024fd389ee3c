package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"yamazumi/internal/chart"
	"yamazumi/internal/dataprocessing"
	apierrors "yamazumi/internal/errors"
	"yamazumi/internal/middleware"
	"yamazumi/internal/services"
)

// Multipart form fields accepted by the yamazumi endpoints.
const (
	FieldFile   = "file"
	FieldUnit   = "unit"
	FieldTakt   = "takt"
	FieldSheet  = "sheet"
	FieldFormat = "format"
)

// multipartMemory is how much of a form is held in memory before spilling
// to temporary files.
const multipartMemory = 8 << 20

// YamazumiHandler serves chart and report generation over HTTP.
type YamazumiHandler struct {
	service        YamazumiServiceInterface
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
	maxUploadBytes int64
}

// NewYamazumiHandler creates a new yamazumi handler
func NewYamazumiHandler(service YamazumiServiceInterface, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *YamazumiHandler {
	return &YamazumiHandler{
		service:        service,
		logger:         logger.With(slog.String("component", "yamazumi_handler")),
		errorHandler:   errorHandler,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the yamazumi routes
func (h *YamazumiHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data"))

	r.Post("/report", h.Report)
	r.Post("/chart", h.Chart)

	return r
}

// Report handles POST /report. It answers with the JSON report.
func (h *YamazumiHandler) Report(w http.ResponseWriter, r *http.Request) {
	req, _, err := h.parseUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, report)
}

// Chart handles POST /chart. It answers with the rendered image; the takt
// time and the bottleneck station travel in X-Yamazumi-* headers. Use
// /report for the summary lines.
func (h *YamazumiHandler) Chart(w http.ResponseWriter, r *http.Request) {
	req, format, err := h.parseUpload(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Render fully before writing so a failure still yields a problem response.
	var buf bytes.Buffer
	if err := h.service.RenderChart(r.Context(), report, &buf, format); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("X-Yamazumi-Takt-Seconds", strconv.FormatFloat(report.TaktSeconds, 'f', -1, 64))
	w.Header().Set("X-Yamazumi-Bottleneck", report.Bottleneck.Station)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write chart", slog.String("error", err.Error()))
	}
}

// parseUpload reads the multipart form into an AnalyzeRequest.
func (h *YamazumiHandler) parseUpload(w http.ResponseWriter, r *http.Request) (services.AnalyzeRequest, chart.Format, error) {
	var req services.AnalyzeRequest

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, "", apierrors.NewWithDetails(
				http.StatusRequestEntityTooLarge,
				apierrors.ErrPayloadTooLarge.ErrorCode,
				fmt.Sprintf("Uploaded file exceeds %s", humanize.IBytes(uint64(tooLarge.Limit))),
				map[string]interface{}{"limit_bytes": tooLarge.Limit},
			)
		}
		return req, "", apierrors.InvalidRequestWithError(err)
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var invalid []apierrors.ValidationError
	format, err := chart.ParseFormat(r.FormValue(FieldFormat))
	if err != nil {
		invalid = append(invalid, apierrors.ValidationError{Field: FieldFormat, Message: "format must be png or svg"})
	}
	if raw := strings.TrimSpace(r.FormValue(FieldTakt)); raw != "" {
		takt, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
		if err != nil {
			invalid = append(invalid, apierrors.ValidationError{Field: FieldTakt, Message: "takt must be a number of minutes"})
		} else {
			req.TaktMinutes = &takt
		}
	}
	switch len(invalid) {
	case 0:
	case 1:
		return req, "", apierrors.ErrValidation(invalid[0].Field, invalid[0].Message)
	default:
		return req, "", apierrors.NewValidationErrors(invalid)
	}

	file, header, err := r.FormFile(FieldFile)
	if err != nil {
		return req, "", apierrors.ErrMissingFile
	}
	defer file.Close()

	req.Sheet = strings.TrimSpace(r.FormValue(FieldSheet))
	table, err := dataprocessing.ReadTableFrom(file, header.Filename, req.Sheet)
	if err != nil {
		return req, "", err
	}

	h.logger.DebugContext(r.Context(), "upload parsed",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Int("rows", len(table.Rows)),
	)

	req.Table = table
	req.Unit = strings.TrimSpace(r.FormValue(FieldUnit))
	return req, format, nil
}
