package dataprocessing

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	apperrors "yamazumi/internal/errors"
	"yamazumi/pkg/contracts/domain"
)

// Logical column names.
const (
	ColumnStation  = "station"
	ColumnTime     = "time"
	ColumnCategory = "category"
)

// columnAliases lists the accepted normalized header names per logical
// column, in the order missing columns are reported.
var columnAliases = []struct {
	logical string
	names   []string
}{
	{ColumnStation, []string{"station", "estacao"}},
	{ColumnTime, []string{"time", "tempo"}},
	{ColumnCategory, []string{"category", "categoria"}},
}

// unitSuffix matches one trailing parenthesized group such as " (min)".
var unitSuffix = regexp.MustCompile(`\s*\([^()]*\)\s*$`)

// ColumnMap holds the resolved column indexes of a table.
type ColumnMap struct {
	Station  int
	Time     int
	Category int

	// TimeHeader is the original header text of the time column.
	TimeHeader string
}

// NormalizeHeader trims, lower-cases and strips accents from a header, then
// drops a trailing unit suffix: "Tempo (min)" becomes "tempo".
func NormalizeHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	return strings.TrimSpace(unitSuffix.ReplaceAllString(s, ""))
}

// ResolveColumns finds the station, time and category columns in header.
// When several columns match, the leftmost wins. Missing columns produce a
// schema error naming every one of them.
func ResolveColumns(header []string) (ColumnMap, error) {
	found := make(map[string]int, len(columnAliases))
	for i, h := range header {
		name := NormalizeHeader(h)
		for _, alias := range columnAliases {
			if _, ok := found[alias.logical]; ok {
				continue
			}
			for _, accepted := range alias.names {
				if name == accepted {
					found[alias.logical] = i
				}
			}
		}
	}

	var missing []string
	for _, alias := range columnAliases {
		if _, ok := found[alias.logical]; !ok {
			missing = append(missing, alias.logical)
		}
	}
	if len(missing) > 0 {
		return ColumnMap{}, apperrors.NewSchemaError(missing).WithContext("header", header)
	}

	return ColumnMap{
		Station:    found[ColumnStation],
		Time:       found[ColumnTime],
		Category:   found[ColumnCategory],
		TimeHeader: header[found[ColumnTime]],
	}, nil
}

// Raw picks the station, time and category cells out of row.
func (m ColumnMap) Raw(row TableRow) domain.RawRow {
	return domain.RawRow{
		Line:     row.Line,
		Station:  row.Cell(m.Station),
		Duration: row.Cell(m.Time),
		Category: row.Cell(m.Category),
	}
}
