package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const (
	// wrapColumn is the column that absorbs overflow, the name or title.
	wrapColumn = 1

	minWrapWidth = 20

	cellPadding = 1

	tabStop = "    "
)

// RenderTable writes "<title> (<n>)" followed by a box drawn table. When the
// table would be wider than width, the second column is word wrapped to fit.
func RenderTable(w io.Writer, title string, header []string, rows [][]string, width int) error {
	if _, err := fmt.Fprintf(w, "%s (%d)\n", Accent.Sprint(title), len(rows)); err != nil {
		return err
	}

	header = expandTabs([][]string{header})[0]
	body := fitRows(header, expandTabs(rows), width)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, cellPadding)
		}).
		Headers(header...).
		Rows(body...)

	_, err := fmt.Fprintln(w, t.String())
	return err
}

// fitRows returns rows unchanged when the table fits in width, otherwise a
// copy whose wrap column is word wrapped.
func fitRows(header []string, rows [][]string, width int) [][]string {
	widths := columnWidths(header, rows)
	if len(widths) <= wrapColumn || width <= 0 {
		return rows
	}

	total := len(widths) + 1
	for _, cw := range widths {
		total += cw + 2*cellPadding
	}
	if total <= width {
		return rows
	}

	available := width - (total - widths[wrapColumn])
	if available < minWrapWidth {
		available = minWrapWidth
	}

	wrapped := make([][]string, len(rows))
	for i, row := range rows {
		wrapped[i] = append([]string(nil), row...)
		if len(row) > wrapColumn {
			wrapped[i][wrapColumn] = wordwrap.String(row[wrapColumn], available)
		}
	}
	return wrapped
}

// expandTabs returns a copy of rows with tabs replaced by spaces. The table
// renderer cuts a cell at its first tab.
func expandTabs(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = strings.ReplaceAll(cell, "\t", tabStop)
		}
	}
	return out
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	return widths
}
