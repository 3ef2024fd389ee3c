package http

import (
	"context"
	"io"

	"yamazumi/internal/chart"
	"yamazumi/internal/services"
	"yamazumi/pkg/contracts/domain"
)

// YamazumiServiceInterface is the part of services.YamazumiService the
// HTTP layer depends on.
type YamazumiServiceInterface interface {
	Analyze(ctx context.Context, req services.AnalyzeRequest) (*domain.Report, error)
	RenderChart(ctx context.Context, report *domain.Report, w io.Writer, format chart.Format) error
}

var _ YamazumiServiceInterface = (*services.YamazumiService)(nil)
