package services

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"yamazumi/internal/chart"
	"yamazumi/internal/config"
	"yamazumi/internal/dataprocessing"
	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/infrastructure"
	"yamazumi/internal/shared/testutil"
	"yamazumi/pkg/contracts/domain"
)

type serviceFixture struct {
	service  *YamazumiService
	spans    *tracetest.SpanRecorder
	reader   *sdkmetric.ManualReader
	handler  *testutil.BufferedSlogHandler
	chartCfg config.ChartConfig
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		tp.Shutdown(context.Background())
		mp.Shutdown(context.Background())
	})

	metrics, err := infrastructure.CreateBusinessMetrics(mp.Meter("test"))
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	chartCfg := config.ChartConfig{WidthInches: 6, HeightInches: 3, DPI: 100}

	svc := NewYamazumiService(chartCfg, tp.Tracer("test"), metrics, logger)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) }

	return &serviceFixture{service: svc, spans: spans, reader: reader, handler: handler, chartCfg: chartCfg}
}

func (f *serviceFixture) spanNames() []string {
	var names []string
	for _, s := range f.spans.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func (f *serviceFixture) runCount(t *testing.T, outcome string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, f.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "yamazumi_pipeline_runs_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("outcome"); ok && v.AsString() == outcome {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestAnalyze_ExampleWorkbook(t *testing.T) {
	f := newServiceFixture(t)
	path := testutil.WriteWorkbook(t, "study.xlsx", "", testutil.ExampleHeader, testutil.ExampleRows)

	report, err := f.service.Analyze(context.Background(), AnalyzeRequest{Path: path})

	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, path, report.Source)
	assert.Equal(t, 4, report.Records)
	assert.Equal(t, 60.0, report.TaktSeconds)
	assert.False(t, report.TaktGiven)
	assert.Equal(t, domain.Bottleneck{Station: "1", TotalSeconds: 90, Index: 0}, report.Bottleneck)
	assert.Equal(t, domain.UnitSourceDefault, report.UnitSource)
	assert.Equal(t, "Estação 1: 90 s ( 30 s acima do takt ), VA% = 66.7%", report.Lines[2])
	assert.Equal(t, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), report.GeneratedAt)

	assert.Equal(t, []string{"load", "aggregate", "yamazumi.analyze"}, f.spanNames())
	assert.Equal(t, int64(1), f.runCount(t, "success"))
	assert.True(t, f.handler.ContainsMessage("analysis complete"))
}

func TestAnalyze_GivenTakt(t *testing.T) {
	f := newServiceFixture(t)
	path := testutil.WriteCSV(t, "study.csv", testutil.ExampleHeader, testutil.ExampleRows)
	takt := 100.0 / 60.0

	report, err := f.service.Analyze(context.Background(), AnalyzeRequest{Path: path, TaktMinutes: &takt})

	require.NoError(t, err)
	assert.InDelta(t, 100.0, report.TaktSeconds, 1e-9)
	assert.True(t, report.TaktGiven)
	assert.Equal(t, "Estação 1: 90 s ( 10 s abaixo do takt ), VA% = 66.7%", report.Lines[2])
}

func TestAnalyze_Table(t *testing.T) {
	f := newServiceFixture(t)
	table := &dataprocessing.Table{
		Name:   "upload.csv",
		Header: []string{"Estação", "Tempo (min)", "Categoria"},
		Rows: []dataprocessing.TableRow{
			{Line: 2, Cells: []string{"A", "1", "VA"}},
			{Line: 3, Cells: []string{"B", "2", "NVA"}},
		},
	}

	report, err := f.service.Analyze(context.Background(), AnalyzeRequest{Table: table})

	require.NoError(t, err)
	assert.Equal(t, domain.TimeUnitMinutes, report.Unit)
	assert.Equal(t, 90.0, report.TaktSeconds)
	assert.Equal(t, "B", report.Bottleneck.Station)
}

func TestAnalyze_Errors(t *testing.T) {
	nan := math.NaN()
	header := []string{"Station", "Time", "Category"}

	tests := []struct {
		name     string
		req      func(t *testing.T) AnalyzeRequest
		wantType apperrors.ErrorType
	}{
		{
			name:     "no input",
			req:      func(t *testing.T) AnalyzeRequest { return AnalyzeRequest{} },
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "bad unit",
			req: func(t *testing.T) AnalyzeRequest {
				return AnalyzeRequest{Path: testutil.WriteCSV(t, "s.csv", header, [][]any{{"A", 1, "VA"}}), Unit: "hours"}
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "missing file outranks bad unit",
			req: func(t *testing.T) AnalyzeRequest {
				return AnalyzeRequest{Path: filepath.Join(t.TempDir(), "none.xlsx"), Unit: "hours"}
			},
			wantType: apperrors.ErrTypeInput,
		},
		{
			name: "non-finite takt",
			req: func(t *testing.T) AnalyzeRequest {
				return AnalyzeRequest{Path: testutil.WriteCSV(t, "s.csv", header, [][]any{{"A", 1, "VA"}}), TaktMinutes: &nan}
			},
			wantType: apperrors.ErrTypeValidation,
		},
		{
			name: "missing file",
			req: func(t *testing.T) AnalyzeRequest {
				return AnalyzeRequest{Path: filepath.Join(t.TempDir(), "none.xlsx")}
			},
			wantType: apperrors.ErrTypeInput,
		},
		{
			name: "missing column",
			req: func(t *testing.T) AnalyzeRequest {
				return AnalyzeRequest{Path: testutil.WriteCSV(t, "s.csv", []string{"station", "time"}, [][]any{{"A", 1}})}
			},
			wantType: apperrors.ErrTypeSchema,
		},
		{
			name: "no data rows",
			req: func(t *testing.T) AnalyzeRequest {
				return AnalyzeRequest{Path: testutil.WriteCSV(t, "s.csv", header, nil)}
			},
			wantType: apperrors.ErrTypeEmptyInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)

			report, err := f.service.Analyze(context.Background(), tt.req(t))

			require.Error(t, err)
			assert.Nil(t, report)
			assert.Equal(t, tt.wantType, apperrors.TypeOf(err))
			assert.Equal(t, int64(1), f.runCount(t, "failure"))
		})
	}
}

func TestRenderChart(t *testing.T) {
	f := newServiceFixture(t)
	path := testutil.WriteWorkbook(t, "study.xlsx", "", testutil.ExampleHeader, testutil.ExampleRows)
	report, err := f.service.Analyze(context.Background(), AnalyzeRequest{Path: path})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.service.RenderChart(context.Background(), report, &buf, chart.FormatPNG))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 600, cfg.Width)
	assert.Contains(t, f.spanNames(), "render")
}

func TestAnalyze_ValidationMessageOmitsValidatorText(t *testing.T) {
	f := newServiceFixture(t)
	path := testutil.WriteCSV(t, "s.csv", []string{"Station", "Time", "Category"}, [][]any{{"A", 1, "VA"}})

	_, err := f.service.Analyze(context.Background(), AnalyzeRequest{Path: path, Unit: "hours"})

	require.Error(t, err)
	assert.Equal(t, "[VALIDATION] unit must be minutes or seconds", err.Error())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "unit", appErr.Context["field"])
	assert.Equal(t, "timeunit", appErr.Context["rule"])
}
