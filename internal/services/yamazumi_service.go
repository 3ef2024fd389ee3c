package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"yamazumi/internal/chart"
	"yamazumi/internal/config"
	"yamazumi/internal/dataprocessing"
	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/infrastructure"
	"yamazumi/internal/validation"
	"yamazumi/pkg/contracts/domain"
)

// YamazumiService runs the load, aggregate and render stages.
type YamazumiService struct {
	loader   *dataprocessing.Loader
	renderer *chart.Renderer
	validate *validator.Validate
	files    *validation.FileValidator
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewYamazumiService creates the service. tracer and metrics may be nil.
func NewYamazumiService(chartCfg config.ChartConfig, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *YamazumiService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	logger = logger.With(slog.String("service", "yamazumi"))

	return &YamazumiService{
		loader:   dataprocessing.NewLoader(logger),
		renderer: chart.NewRenderer(chartCfg, logger),
		validate: newValidator(),
		files:    validation.NewFileValidator(logger),
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze loads the input described by req and builds its report.
func (s *YamazumiService) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "yamazumi.analyze",
		trace.WithAttributes(attribute.String("yamazumi.source", req.source())))
	defer span.End()

	start := time.Now()
	report, err := s.analyze(ctx, req)
	duration := time.Since(start)

	if err != nil {
		errType := string(apperrors.TypeOf(err))
		if errType == "" {
			errType = "INTERNAL"
		}
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordPipelineRun(ctx, s.metrics, req.source(), duration, 0, 0, 0, errType)
		s.logger.WarnContext(ctx, "analysis failed",
			slog.String("error_type", errType),
			slog.String("error", err.Error()))
		return nil, err
	}

	above := 0
	for _, st := range report.Summary {
		if st.AboveTakt {
			above++
		}
	}
	infrastructure.RecordPipelineRun(ctx, s.metrics, req.source(), duration,
		report.Records, len(report.Stations), above, "")

	s.logger.InfoContext(ctx, "analysis complete",
		slog.String("report_id", report.ID),
		slog.String("source", report.Source),
		slog.Int("stations", len(report.Stations)),
		slog.Float64("takt_seconds", report.TaktSeconds),
		slog.String("bottleneck", report.Bottleneck.Station),
		slog.Duration("duration", duration))

	return report, nil
}

func (s *YamazumiService) analyze(ctx context.Context, req AnalyzeRequest) (*domain.Report, error) {
	// An unreadable source is reported before anything about the request.
	if req.Table == nil && strings.TrimSpace(req.Path) != "" {
		if _, err := s.files.ValidateInputFile(req.Path); err != nil {
			return nil, err
		}
	}
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	loaded, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var given *float64
	if req.TaktMinutes != nil {
		seconds := *req.TaktMinutes * 60
		given = &seconds
	}

	return s.aggregate(ctx, loaded, given)
}

func (s *YamazumiService) load(ctx context.Context, req AnalyzeRequest) (*dataprocessing.LoadResult, error) {
	ctx, span := s.tracer.Start(ctx, "load")
	defer span.End()

	var (
		result *dataprocessing.LoadResult
		err    error
	)
	if req.Table != nil {
		result, err = s.loader.LoadTable(ctx, req.Table, req.Unit)
	} else {
		result, err = s.loader.Load(ctx, req.Path, req.Sheet, req.Unit)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("yamazumi.records", len(result.Records)),
		attribute.String("yamazumi.unit", string(result.Unit.Unit)),
		attribute.String("yamazumi.unit_source", string(result.Unit.Source)),
	)
	return result, nil
}

func (s *YamazumiService) aggregate(ctx context.Context, loaded *dataprocessing.LoadResult, given *float64) (*domain.Report, error) {
	ctx, span := s.tracer.Start(ctx, "aggregate")
	defer span.End()

	aggs, categories := dataprocessing.Aggregate(loaded.Records)
	if len(aggs) == 0 {
		err := apperrors.NewEmptyInputError("input has no data rows with a station").
			WithContext("source", loaded.Source)
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	takt, err := dataprocessing.ResolveTakt(aggs, given)
	if err != nil {
		return nil, err
	}
	bottleneck, err := dataprocessing.FindBottleneck(aggs)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("yamazumi.stations", len(aggs)),
		attribute.Float64("yamazumi.takt_seconds", takt),
		attribute.String("yamazumi.bottleneck", bottleneck.Station),
	)

	return &domain.Report{
		ID:          uuid.NewString(),
		Source:      loaded.Source,
		Sheet:       loaded.Sheet,
		Unit:        loaded.Unit.Unit,
		UnitSource:  loaded.Unit.Source,
		Records:     len(loaded.Records),
		Categories:  categories,
		Stations:    aggs,
		TaktSeconds: takt,
		TaktGiven:   given != nil,
		Bottleneck:  bottleneck,
		Summary:     dataprocessing.Summarize(aggs, takt),
		Lines:       dataprocessing.FormatSummary(aggs, takt),
		GeneratedAt: s.now().UTC(),
	}, nil
}

// RenderChart draws report to w.
func (s *YamazumiService) RenderChart(ctx context.Context, report *domain.Report, w io.Writer, format chart.Format) error {
	ctx, span := s.tracer.Start(ctx, "render",
		trace.WithAttributes(attribute.String("yamazumi.format", string(format))))
	defer span.End()

	start := time.Now()
	err := s.renderer.RenderTo(ctx, w, chart.InputFromReport(report), format)
	infrastructure.RecordChartRender(ctx, s.metrics, string(format), time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}
