package exporter

import (
	"io"

	"github.com/xuri/excelize/v2"

	apperrors "yamazumi/internal/errors"
	"yamazumi/pkg/contracts/domain"
)

// Sheet names of the exported workbook.
const (
	StationsSheet   = "Estacoes"
	ParametersSheet = "Parametros"
)

// WriteStationsXLSX encodes the station table and the run parameters as a
// workbook to out.
func WriteStationsXLSX(out io.Writer, report *domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StationsSheet); err != nil {
		return apperrors.NewStorageError("failed to prepare workbook", err)
	}
	if err := writeStationSheet(f, report); err != nil {
		return apperrors.NewStorageError("failed to write station sheet", err)
	}
	if err := writeParameterSheet(f, report); err != nil {
		return apperrors.NewStorageError("failed to write parameter sheet", err)
	}

	if err := f.Write(out); err != nil {
		return apperrors.NewStorageError("failed to encode workbook", err)
	}
	return nil
}

func writeStationSheet(f *excelize.File, report *domain.Report) error {
	headers, rows := StationTable(report)

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(StationsSheet, "A1", &header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(StationsSheet, "A1", last, bold); err != nil {
		return err
	}

	for i, row := range rows {
		values := make([]interface{}, 0, len(headers))
		values = append(values, row.Station)
		for _, v := range row.Categories {
			values = append(values, v)
		}
		values = append(values, row.Total, row.Delta, row.Status, row.VAPercent)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(StationsSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.SetPanes(StationsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeParameterSheet(f *excelize.File, report *domain.Report) error {
	if _, err := f.NewSheet(ParametersSheet); err != nil {
		return err
	}

	params := [][]interface{}{
		{"Fonte", report.Source},
		{"Unidade", string(report.Unit)},
		{"Takt (s)", report.TaktSeconds},
		{"Takt informado", report.TaktGiven},
		{"Gargalo", report.Bottleneck.Station},
		{"Gargalo (s)", report.Bottleneck.TotalSeconds},
		{"Registros", report.Records},
	}
	for i, p := range params {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ParametersSheet, cell, &p); err != nil {
			return err
		}
	}
	return nil
}
