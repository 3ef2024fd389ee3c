package domain

// Category classifies a slice of work time at a station.
type Category string

const (
	CategoryVA   Category = "VA"   // value-added
	CategoryNVA  Category = "NVA"  // non-value-added but necessary
	CategoryMuda Category = "MUDA" // waste
)

// CanonicalCategories is the fixed display order. Categories outside this
// list are appended after it in first-seen order.
var CanonicalCategories = []Category{CategoryVA, CategoryNVA, CategoryMuda}

// IsCanonical reports whether c is one of VA, NVA or MUDA.
func (c Category) IsCanonical() bool {
	for _, known := range CanonicalCategories {
		if c == known {
			return true
		}
	}
	return false
}

// RawRow is one data row as read from the input table, before any
// conversion. The time column header travels with the table, not the row.
type RawRow struct {
	Line     int    `json:"line"`
	Station  string `json:"station"`
	Duration string `json:"duration"`
	Category string `json:"category"`
}

// NormalizedRecord is a single task duration expressed in seconds.
type NormalizedRecord struct {
	Station         string   `json:"station"`
	DurationSeconds float64  `json:"duration_seconds"`
	Category        Category `json:"category"`
}

// StationAggregate holds the summed work time of one station.
//
// TotalSeconds always equals the sum of TotalsByCategory, and VARatio is
// TotalsByCategory[VA] / TotalSeconds (0 when the station has no time).
type StationAggregate struct {
	Station          string               `json:"station"`
	TotalsByCategory map[Category]float64 `json:"totals_by_category"`
	TotalSeconds     float64              `json:"total_seconds"`
	VARatio          float64              `json:"va_ratio"`
}

// CategorySeconds returns the summed seconds for c, or 0 when absent.
func (s StationAggregate) CategorySeconds(c Category) float64 {
	return s.TotalsByCategory[c]
}

// Bottleneck identifies the station with the highest total work time.
type Bottleneck struct {
	Station      string  `json:"station"`
	TotalSeconds float64 `json:"total_seconds"`
	Index        int     `json:"index"`
}
