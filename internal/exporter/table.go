package exporter

import (
	"strconv"

	"yamazumi/pkg/contracts/domain"
)

// Status words used against takt.
const (
	StatusAbove = "acima"
	StatusBelow = "abaixo"
)

// StationRow is one station of the export table.
type StationRow struct {
	Station    string
	Categories []float64
	Total      float64
	Delta      float64
	Status     string
	VAPercent  float64
}

// Strings formats the row for CSV: seconds with two decimals, VA% with one.
func (r StationRow) Strings() []string {
	out := make([]string, 0, len(r.Categories)+5)
	out = append(out, r.Station)
	for _, v := range r.Categories {
		out = append(out, formatFloat(v, 2))
	}
	return append(out,
		formatFloat(r.Total, 2),
		formatFloat(r.Delta, 2),
		r.Status,
		formatFloat(r.VAPercent, 1),
	)
}

// StationTable returns the header and rows shared by the CSV, XLSX and
// console exporters. Category columns follow the report's category order.
func StationTable(report *domain.Report) ([]string, []StationRow) {
	headers := make([]string, 0, len(report.Categories)+5)
	headers = append(headers, "Station")
	for _, c := range report.Categories {
		headers = append(headers, categoryHeader(c))
	}
	headers = append(headers, "Total_s", "Delta_s", "Status", "VA_pct")

	rows := make([]StationRow, len(report.Stations))
	for i, st := range report.Stations {
		row := StationRow{
			Station:    st.Station,
			Categories: make([]float64, len(report.Categories)),
			Total:      st.TotalSeconds,
			Delta:      st.TotalSeconds - report.TaktSeconds,
			Status:     StatusBelow,
			VAPercent:  st.VARatio * 100,
		}
		for j, c := range report.Categories {
			row.Categories[j] = st.CategorySeconds(c)
		}
		if st.TotalSeconds > report.TaktSeconds {
			row.Status = StatusAbove
		}
		rows[i] = row
	}
	return headers, rows
}

func categoryHeader(c domain.Category) string {
	if c == "" {
		return "UNCATEGORIZED_s"
	}
	return string(c) + "_s"
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
