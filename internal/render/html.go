// Package render turns a table into an HTML table suitable for an email body.
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// TableStyle is the fixed set of attributes placed on the <table> element.
const TableStyle = `style="border:1.5px solid black;border-collapse:collapse;text-align:center" border = 1.5 cellpadding = 5`

// CellOrder decides which cells a data row emits.
type CellOrder string

const (
	// CellOrderColumns emits the selected columns in the order given.
	CellOrderColumns CellOrder = "columns"
	// CellOrderRow emits every cell of the row in table header order, ignoring
	// the column selection. Older renderings of this table behaved this way.
	CellOrderRow CellOrder = "row"
)

// ParseCellOrder converts a string to a CellOrder. Empty means columns.
func ParseCellOrder(s string) (CellOrder, error) {
	switch CellOrder(strings.ToLower(strings.TrimSpace(s))) {
	case CellOrderColumns, "":
		return CellOrderColumns, nil
	case CellOrderRow:
		return CellOrderRow, nil
	default:
		return "", table.InvalidArgumentError{Message: fmt.Sprintf("invalid cell order %q (expected columns|row)", s)}
	}
}

// Options shapes the rendered table.
type Options struct {
	// Columns to include. Defaults to every header.
	Columns []string
	// DisplayNames replace Columns in the header row. Must match Columns in
	// length when set.
	DisplayNames []string
	CellOrder    CellOrder
	// Escape HTML-escapes header names and cell values. Without it they are
	// written verbatim and the input must be trusted.
	Escape bool
}

// HTMLTable renders t as a single-line HTML table: a bold header row followed
// by one row per table row.
func HTMLTable(t *table.Table, opts Options) (string, error) {
	if t == nil || t.Len() < 1 {
		return "", table.InvalidArgumentError{Message: "table must have data to render"}
	}
	columns := opts.Columns
	if columns == nil {
		columns = t.Headers()
	}
	if opts.DisplayNames != nil && len(opts.DisplayNames) != len(columns) {
		return "", table.InvalidArgumentError{Message: fmt.Sprintf("got %d display names for %d columns", len(opts.DisplayNames), len(columns))}
	}
	names := opts.DisplayNames
	if names == nil {
		names = columns
	}
	cells := columns
	if opts.CellOrder == CellOrderRow {
		cells = t.Headers()
	}

	text := func(s string) string {
		if opts.Escape {
			return html.EscapeString(s)
		}
		return s
	}

	var b strings.Builder
	b.WriteString("<table " + TableStyle + ">")
	b.WriteString("<tr>")
	for _, name := range names {
		b.WriteString("<td><b>" + text(name) + "</b></td>")
	}
	b.WriteString("</tr>")
	for _, row := range t.Rows() {
		b.WriteString("<tr>")
		for _, h := range cells {
			b.WriteString("<td>" + text(table.Text(row[h])) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String(), nil
}
