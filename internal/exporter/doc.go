// Package exporter encodes analysis reports outside the chart.
//
// CSVWriter is the low-level CSV encoder; it prefixes a UTF-8 BOM so Excel
// opens accented station names correctly. On top of it:
//
//	CSVWriter.WriteStations  one row per station
//	WriteStationsXLSX        the same table as a workbook, plus run parameters
//	WriteReportJSON          the full report
//	ConsoleTable             an aligned table for terminals
//
// Files are written through a Bundle, which holds every artifact of a run
// in memory and commits them together:
//
//	b := exporter.NewBundle(logger)
//	if err := b.AddStationsCSV("out/stations.csv", report); err != nil {
//	    return err
//	}
//	if err := b.Commit(ctx); err != nil {
//	    return err
//	}
package exporter
