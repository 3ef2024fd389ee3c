package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"

	"yamazumi/internal/config"
	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/infrastructure"
	"yamazumi/internal/validation"
	"yamazumi/pkg/contracts/domain"
)

// Chart texts.
const (
	Title     = "Gráfico Yamazumi – Distribuição de Tempo por Estação"
	XAxisName = "Estação"
	YAxisName = "Tempo (s)"
)

// Format is an output image format.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ParseFormat accepts "png" or "svg"; empty means PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", apperrors.NewAppValidationError(fmt.Sprintf("unsupported chart format %q", s), nil)
	}
}

// FormatForPath picks SVG for .svg paths and PNG otherwise.
func FormatForPath(path string) Format {
	return Format(validation.ChartFormat(path))
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Input is everything the chart shows.
type Input struct {
	Stations    []domain.StationAggregate
	Categories  []domain.Category
	TaktSeconds float64
	Bottleneck  domain.Bottleneck
}

// InputFromReport extracts the chart input from a report.
func InputFromReport(r *domain.Report) Input {
	return Input{
		Stations:    r.Stations,
		Categories:  r.Categories,
		TaktSeconds: r.TaktSeconds,
		Bottleneck:  r.Bottleneck,
	}
}

// Renderer draws Yamazumi charts at a fixed size.
type Renderer struct {
	logger *slog.Logger
	width  int
	height int
	dpi    float64
}

// NewRenderer creates a renderer sized from cfg.
func NewRenderer(cfg config.ChartConfig, logger *slog.Logger) *Renderer {
	logger = infrastructure.WithComponent(logger, "chart")
	width, height := cfg.PixelSize()
	return &Renderer{
		logger: logger,
		width:  width,
		height: height,
		dpi:    cfg.DPI,
	}
}

// Size returns the image size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

// RenderTo draws the chart to w in the given format.
func (r *Renderer) RenderTo(ctx context.Context, w io.Writer, in Input, format Format) error {
	if len(in.Stations) == 0 {
		return apperrors.NewRenderError("no stations to draw", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	provider := gochart.PNG
	if format == FormatSVG {
		provider = gochart.SVG
	}

	ch := r.build(in)
	if err := ch.Render(provider, w); err != nil {
		r.logger.ErrorContext(ctx, "chart render failed", slog.String("error", err.Error()))
		return apperrors.NewRenderError("failed to render chart", err)
	}

	r.logger.DebugContext(ctx, "chart rendered",
		slog.String("format", string(format)),
		slog.Int("stations", len(in.Stations)))
	return nil
}

// build assembles the go-chart definition.
func (r *Renderer) build(in Input) gochart.Chart {
	n := len(in.Stations)
	series := make([]gochart.Series, 0, len(in.Categories)+2)

	bases := make([]float64, n)
	for _, category := range in.Categories {
		values := make([]float64, n)
		for i, st := range in.Stations {
			values[i] = st.CategorySeconds(category)
		}

		color := ColorFor(category)
		series = append(series, stackSeries{
			Name:   categoryLabel(category),
			Style:  gochart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 2},
			Bases:  append([]float64(nil), bases...),
			Values: values,
		})
		for i, v := range values {
			bases[i] += v
		}
	}

	series = append(series, gochart.ContinuousSeries{
		Name:    fmt.Sprintf("Takt %.2f min", in.TaktSeconds/60),
		XValues: []float64{0.5, float64(n) + 0.5},
		YValues: []float64{in.TaktSeconds, in.TaktSeconds},
		Style: gochart.Style{
			StrokeColor:     taktColor,
			StrokeWidth:     3,
			StrokeDashArray: []float64{12, 8},
		},
	})

	b := in.Bottleneck
	series = append(series, gochart.AnnotationSeries{
		Annotations: []gochart.Value2{{
			XValue: float64(b.Index + 1),
			YValue: b.TotalSeconds,
			Label:  fmt.Sprintf("Gargalo: Estação %s (%.0fs)", b.Station, b.TotalSeconds),
		}},
	})

	ticks := make([]gochart.Tick, n)
	for i, st := range in.Stations {
		ticks[i] = gochart.Tick{Value: float64(i + 1), Label: st.Station}
	}

	ch := gochart.Chart{
		Title:      Title,
		Width:      r.width,
		Height:     r.height,
		DPI:        r.dpi,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:  XAxisName,
			Ticks: ticks,
			Range: &gochart.ContinuousRange{Min: 0.5, Max: float64(n) + 0.5},
		},
		YAxis: gochart.YAxis{
			Name:  YAxisName,
			Range: yRange(in),
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}
	return ch
}

// yRange spans zero to the tallest bar or the takt line, with headroom for
// the annotation. A negative takt pulls the floor down so the line stays
// visible.
func yRange(in Input) *gochart.ContinuousRange {
	top := in.TaktSeconds
	for _, st := range in.Stations {
		top = math.Max(top, st.TotalSeconds)
	}
	bottom := math.Min(0, in.TaktSeconds)

	top = math.Max(top, 0) * 1.15
	if bottom < 0 {
		bottom *= 1.15
	}
	if top <= bottom {
		top = bottom + 1
	}
	return &gochart.ContinuousRange{Min: bottom, Max: top}
}

func categoryLabel(c domain.Category) string {
	if c == "" {
		return "(sem categoria)"
	}
	return string(c)
}
