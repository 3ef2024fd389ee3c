package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "yamazumi/internal/errors"
	"yamazumi/internal/validation"
)

// utf8BOM is written by Excel when saving "CSV UTF-8".
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a header row plus its data rows, as read from a sheet or CSV file.
type Table struct {
	Name   string
	Sheet  string
	Header []string
	Rows   []TableRow
}

// TableRow is a data row. Line is the 1-based row number in the source.
type TableRow struct {
	Line  int
	Cells []string
}

// Cell returns the cell at column i, or "" past the end of a ragged row.
func (r TableRow) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// ReadTable opens path and reads its table. For workbooks, sheet selects
// the sheet; empty means the first sheet in workbook order.
func ReadTable(path, sheet string) (*Table, error) {
	switch validation.DetectInputFormat(path) {
	case validation.FormatXLSX:
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to open workbook %s", path), err)
		}
		defer f.Close()
		return readWorkbook(f, path, sheet)
	case validation.FormatCSV:
		file, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to open %s", path), err)
		}
		defer file.Close()
		return readCSV(file, path)
	default:
		return nil, unsupportedFormat(path)
	}
}

// ReadTableFrom reads a table from r. The format is picked from name's
// extension, which is how uploads are dispatched.
func ReadTableFrom(r io.Reader, name, sheet string) (*Table, error) {
	switch validation.DetectInputFormat(name) {
	case validation.FormatXLSX:
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to open workbook %s", name), err)
		}
		defer f.Close()
		return readWorkbook(f, name, sheet)
	case validation.FormatCSV:
		return readCSV(r, name)
	default:
		return nil, unsupportedFormat(name)
	}
}

func unsupportedFormat(name string) error {
	return apperrors.NewInputError(fmt.Sprintf("unsupported input format: %s", name), nil).
		WithContext("file", name)
}

func readWorkbook(f *excelize.File, name, sheet string) (*Table, error) {
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewInputError(fmt.Sprintf("workbook %s has no sheets", name), nil)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperrors.NewInputError(fmt.Sprintf("sheet %q not found in %s", sheet, name), err).
			WithContext("sheets", f.GetSheetList())
	}

	// Raw values keep number formats ("0.0 min", percentages) out of the data.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewInputError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	table := &Table{Name: name, Sheet: sheet}
	for i, cells := range rows {
		table.add(i+1, cells)
	}
	return table, nil
}

func readCSV(r io.Reader, name string) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffSeparator(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	table := &Table{Name: name}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.NewInputError(fmt.Sprintf("failed to parse %s", name), err)
		}
		line, _ := reader.FieldPos(0)
		table.add(line, record)
	}
	return table, nil
}

// sniffSeparator picks ';' over ',' when the first line has more of them.
// Spreadsheets in comma-decimal locales export with ';'.
func sniffSeparator(br *bufio.Reader) rune {
	head, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

// add stores cells as the header when none is set yet, and as a data row
// otherwise. Blank rows are dropped.
func (t *Table) add(line int, cells []string) {
	if isBlank(cells) {
		return
	}
	if t.Header == nil {
		t.Header = cells
		return
	}
	t.Rows = append(t.Rows, TableRow{Line: line, Cells: cells})
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
