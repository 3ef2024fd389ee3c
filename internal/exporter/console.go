package exporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"yamazumi/pkg/contracts/domain"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	aboveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	belowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// columnGap separates table columns.
const columnGap = "  "

// ConsoleTable prints the station table aligned by display width. Colours
// are only used when the writer is a terminal.
type ConsoleTable struct {
	out    io.Writer
	styled bool
}

// NewConsoleTable creates a table writing to out.
func NewConsoleTable(out io.Writer) *ConsoleTable {
	return &ConsoleTable{out: out, styled: shouldUseColor(out)}
}

func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

// Render writes the table for report.
func (t *ConsoleTable) Render(report *domain.Report) error {
	headers, rows := StationTable(report)
	headers[0] = "Estação"

	cells := make([][]string, len(rows))
	for i, row := range rows {
		line := make([]string, 0, len(headers))
		line = append(line, row.Station)
		for _, v := range row.Categories {
			line = append(line, fmt.Sprintf("%.0f", v))
		}
		line = append(line,
			fmt.Sprintf("%.0f", row.Total),
			fmt.Sprintf("%+.0f", row.Delta),
			row.Status,
			fmt.Sprintf("%.1f%%", row.VAPercent),
		)
		cells[i] = line
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, line := range cells {
		for i, c := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var b strings.Builder
	b.WriteString(t.style(headerStyle, t.join(headers, widths)))
	b.WriteByte('\n')
	for i, line := range cells {
		style := belowStyle
		if rows[i].Status == StatusAbove {
			style = aboveStyle
		}
		b.WriteString(t.style(style, t.join(line, widths)))
		b.WriteByte('\n')
	}
	b.WriteString(t.style(mutedStyle, fmt.Sprintf("takt %.0f s, gargalo %s (%.0f s)",
		report.TaktSeconds, report.Bottleneck.Station, report.Bottleneck.TotalSeconds)))
	b.WriteByte('\n')

	_, err := io.WriteString(t.out, b.String())
	return err
}

// join pads every cell to its column width. The first column is left
// aligned, numbers are right aligned.
func (t *ConsoleTable) join(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		if i == 0 {
			parts[i] = runewidth.FillRight(c, widths[i])
		} else {
			parts[i] = runewidth.FillLeft(c, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, columnGap), " ")
}

func (t *ConsoleTable) style(s lipgloss.Style, text string) string {
	if !t.styled {
		return text
	}
	return s.Render(text)
}
