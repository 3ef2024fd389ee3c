package chart

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"yamazumi/pkg/contracts/domain"
)

// categoryColors is the fixed layer order and colour of known categories.
var categoryColors = []struct {
	Category domain.Category
	Color    drawing.Color
}{
	{domain.CategoryVA, drawing.ColorFromHex("2ca02c")},
	{domain.CategoryNVA, drawing.ColorFromHex("ff7f0e")},
	{domain.CategoryMuda, drawing.ColorFromHex("d62728")},
}

// otherColor fills categories outside the table.
var otherColor = drawing.ColorFromHex("cccccc")

var taktColor = drawing.ColorFromHex("1f1f1f")

// ColorFor returns the fill colour of category c.
func ColorFor(c domain.Category) drawing.Color {
	if !c.IsCanonical() {
		return otherColor
	}
	for _, entry := range categoryColors {
		if entry.Category == c {
			return entry.Color
		}
	}
	return otherColor
}
