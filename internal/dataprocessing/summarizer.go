package dataprocessing

import (
	"fmt"
	"math"

	"yamazumi/pkg/contracts/domain"
)

// SummaryHeading introduces the per-station lines.
const SummaryHeading = "Resumo por estação:"

// Summarize compares every station against takt.
func Summarize(aggs []domain.StationAggregate, takt float64) []domain.StationSummary {
	summary := make([]domain.StationSummary, len(aggs))
	for i, a := range aggs {
		summary[i] = domain.StationSummary{
			Station:      a.Station,
			TotalSeconds: a.TotalSeconds,
			VARatio:      a.VARatio,
			DeltaSeconds: a.TotalSeconds - takt,
			AboveTakt:    a.TotalSeconds > takt,
		}
	}
	return summary
}

// FormatTaktLine renders the takt header line.
func FormatTaktLine(takt float64) string {
	return fmt.Sprintf("Takt time considerado: %.2f minutos (%.0f s)", takt/60, takt)
}

// FormatStationLine renders one station of the summary. A station exactly
// at takt reads "abaixo".
func FormatStationLine(s domain.StationSummary) string {
	status := "abaixo"
	if s.AboveTakt {
		status = "acima"
	}
	return fmt.Sprintf("Estação %s: %.0f s ( %.0f s %s do takt ), VA%% = %.1f%%",
		s.Station, s.TotalSeconds, math.Abs(s.DeltaSeconds), status, s.VARatio*100)
}

// FormatSummary returns the console summary: the takt line, the heading,
// then one line per station in aggregation order.
func FormatSummary(aggs []domain.StationAggregate, takt float64) []string {
	lines := make([]string, 0, len(aggs)+2)
	lines = append(lines, FormatTaktLine(takt), SummaryHeading)
	for _, s := range Summarize(aggs, takt) {
		lines = append(lines, FormatStationLine(s))
	}
	return lines
}
