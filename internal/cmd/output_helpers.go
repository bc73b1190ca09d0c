package cmd

import (
	"context"

	"github.com/salmonumbrella/reshape-cli/internal/output"
	"github.com/salmonumbrella/reshape-cli/internal/table"
)

// structuredOutputRequested reports whether non-table data should be printed
// through the printer. CSV and HTML only apply to tables, so they fall back to
// text.
func structuredOutputRequested() bool {
	switch GetOutputFormat() {
	case output.FormatJSON, output.FormatNDJSON, output.FormatYAML:
		return true
	default:
		return false
	}
}

func printStructured(ctx context.Context, data interface{}) error {
	printer := output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat())
	return printer.Print(ctx, data)
}

// printTable prints t in format. The printer applies --result-sort-by and
// --result-limit.
func printTable(ctx context.Context, t *table.Table, format output.Format) error {
	return output.NewPrinter(stdoutFromContext(ctx), format).Print(ctx, t)
}
