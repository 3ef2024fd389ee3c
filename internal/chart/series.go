package chart

import (
	"fmt"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// barWidth is the bar width in x units; stations sit one unit apart.
const barWidth = 0.6

// stackSeries draws one category layer of the stacked bars. Bar i spans
// Bases[i] to Bases[i]+Values[i] and is centred on x = i+1.
type stackSeries struct {
	Name   string
	Style  gochart.Style
	Bases  []float64
	Values []float64
}

var (
	_ gochart.Series         = stackSeries{}
	_ gochart.ValuesProvider = stackSeries{}
)

func (s stackSeries) GetName() string { return s.Name }

func (s stackSeries) GetStyle() gochart.Style { return s.Style }

func (s stackSeries) GetYAxis() gochart.YAxisType { return gochart.YAxisPrimary }

// Len implements gochart.ValuesProvider.
func (s stackSeries) Len() int { return len(s.Values) }

// GetValues returns the centre and top of bar i.
func (s stackSeries) GetValues(i int) (float64, float64) {
	return float64(i + 1), s.Bases[i] + s.Values[i]
}

func (s stackSeries) Validate() error {
	if len(s.Bases) != len(s.Values) {
		return fmt.Errorf("stack series %q: %d bases for %d values", s.Name, len(s.Bases), len(s.Values))
	}
	return nil
}

func (s stackSeries) Render(r gochart.Renderer, canvasBox gochart.Box, xrange, yrange gochart.Range, defaults gochart.Style) {
	style := s.Style.InheritFrom(defaults)
	half := barWidth / 2

	for i, v := range s.Values {
		if v <= 0 {
			continue
		}
		x := float64(i + 1)
		box := gochart.Box{
			Left:   canvasBox.Left + xrange.Translate(x-half),
			Right:  canvasBox.Left + xrange.Translate(x+half),
			Top:    canvasBox.Bottom - yrange.Translate(s.Bases[i]+v),
			Bottom: canvasBox.Bottom - yrange.Translate(s.Bases[i]),
		}
		gochart.Draw.Box(r, box, style)
	}
}
