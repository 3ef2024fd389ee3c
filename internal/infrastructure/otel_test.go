package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamazumi/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTel_Disabled(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)

	// noop instruments still work
	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	RecordPipelineRun(context.Background(), metrics, "file", time.Millisecond, 4, 2, 1, "")

	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_PrometheusEndpoint(t *testing.T) {
	cfg := &OTelConfig{
		ServiceName:    "yamazumi-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  config.TraceExporterNone,
		EnableMetrics:  true,
		SampleRatio:    1,
	}
	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Registry)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	ctx := context.Background()
	RecordPipelineRun(ctx, metrics, "upload", 20*time.Millisecond, 12, 3, 1, "")
	RecordPipelineRun(ctx, metrics, "file", time.Millisecond, 0, 0, 0, "SCHEMA")
	RecordChartRender(ctx, metrics, "png", 5*time.Millisecond, nil)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "yamazumi_pipeline_runs")
	assert.Contains(t, body, "yamazumi_charts_rendered")
	assert.Contains(t, body, `error_type="SCHEMA"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTel_TwiceDoesNotCollide(t *testing.T) {
	cfg := &OTelConfig{ServiceName: "a", TraceExporter: "none", EnableMetrics: true, SampleRatio: 1}

	p1, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer p1.Shutdown(context.Background())

	p2, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer p2.Shutdown(context.Background())

	assert.NotSame(t, p1.Registry, p2.Registry)
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	cfg := &OTelConfig{ServiceName: "t", TraceExporter: config.TraceExporterStdout, SampleRatio: 1}
	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	require.NotNil(t, providers.TracerProvider)
	ctx, span := providers.Tracer.Start(context.Background(), "load")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	span.End()
}

func TestInitializeOTel_UnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "zipkin"}, discardLogger())
	assert.Error(t, err)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordPipelineRun(context.Background(), nil, "file", time.Second, 1, 1, 0, "")
		RecordChartRender(context.Background(), nil, "svg", time.Second, nil)
	})
}
