package reshape

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// DefaultOutputHeaders names the key and value columns when none are given.
var DefaultOutputHeaders = []string{"Col1", "Col2"}

// UnpivotOptions selects the columns to unpivot and shapes the output.
type UnpivotOptions struct {
	// Start and End bound the unpivoted header range, inclusive. Empty values
	// default to the first and last header.
	Start string
	End   string
	// OutputHeaders names the key and value columns. It must hold exactly two
	// names when set.
	OutputHeaders []string
	// Retain lists columns whose values are copied onto every output row.
	Retain []string
}

// Unpivot expands the selected column range into one row per input row and
// selected header. Every output row holds the header name, the cell value
// and the retained values of the same input row.
func Unpivot(t *table.Table, opts UnpivotOptions) (*table.Table, error) {
	if opts.OutputHeaders != nil && len(opts.OutputHeaders) != 2 {
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("output headers must have exactly two values, got %d", len(opts.OutputHeaders))}
	}
	outputHeaders := opts.OutputHeaders
	if outputHeaders == nil {
		outputHeaders = DefaultOutputHeaders
	}

	columns, err := t.HeadersBetween(opts.Start, opts.End)
	if err != nil {
		return nil, err
	}
	for _, col := range opts.Retain {
		if !t.HasHeader(col) {
			return nil, table.NotFoundError{Message: fmt.Sprintf("column %s not found", col)}
		}
	}

	headers := append(slices.Clone(outputHeaders), opts.Retain...)
	if dups := lo.FindDuplicates(headers); len(dups) > 0 {
		return nil, table.InvalidArgumentError{Message: fmt.Sprintf("output header %s is used more than once", dups[0])}
	}

	values := make([][]any, 0, 1+t.Len()*len(columns))
	values = append(values, lo.ToAnySlice(headers))
	for _, row := range t.Rows() {
		for _, col := range columns {
			line := make([]any, 0, len(headers))
			line = append(line, col, row[col])
			for _, keep := range opts.Retain {
				line = append(line, row[keep])
			}
			values = append(values, line)
		}
	}
	return table.FromValues(values)
}
