package display

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Table renders an aligned text table.
type Table struct {
	headers []string
	rows    [][]string
	// highlightRow is the 0-based row rendered with Accent, -1 for none.
	highlightRow int
}

// NewTable creates a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:      headers,
		highlightRow: -1,
	}
}

// AddRow appends a row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Len reports the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// SetHighlightRow marks a row (typically today) for highlighting.
func (t *Table) SetHighlightRow(idx int) {
	t.highlightRow = idx
}

// Render produces the table with a two-space indent on every line.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if i == t.highlightRow {
			line = Accent(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	return sb.String()
}

// formatRow pads each cell to its column width. The last column is not
// padded so lines carry no trailing spaces.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i == len(widths)-1 {
			parts[i] = cell
			continue
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	return strings.Join(parts, "  ")
}

// Title turns an upper-case region name as published by bimasislam into
// title case, e.g. "KAB. ACEH BESAR" -> "Kab. Aceh Besar".
func Title(name string) string {
	return cases.Title(language.Indonesian).String(name)
}
