package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/output"
	"github.com/salmonumbrella/reshape-cli/internal/render"
)

var (
	renderColumns      []string
	renderDisplayNames []string
	renderCellOrder    string
	renderRawHTML      bool
	renderPrep         prepOptions
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a table as an HTML table",
	Long: `Render a table as a single-line HTML table with a bold header row, ready to
paste into an email body.

Headers and cells are HTML-escaped unless --raw-html is given (or raw_html is
set in the config). With --cell-order row every cell of a row is emitted in
table order regardless of --columns.`,
	Example: `  reshape render gradebook.csv --columns Name,GPS --display-names Student,Group
  reshape pivot grades.csv -g Name -c Assignment --value Grade -o csv | reshape render -i csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringSliceVar(&renderColumns, "columns", nil, "Columns to include, in order (default: all)")
	renderCmd.Flags().StringSliceVar(&renderDisplayNames, "display-names", nil, "Header labels, one per column")
	renderCmd.Flags().StringVar(&renderCellOrder, "cell-order", "", "Data cell order: columns or row (default from config, else columns)")
	renderCmd.Flags().BoolVar(&renderRawHTML, "raw-html", false, "Write headers and cells without HTML escaping")
	renderPrep.register(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, err := loadPrepared(ctx, args, &renderPrep)
	if err != nil {
		return err
	}
	t = output.ApplyAgentOptions(ctx, t)

	opts := output.RenderFromContext(ctx)
	opts.Columns = renderColumns
	opts.DisplayNames = renderDisplayNames
	if flagChanged(cmd, "cell-order") {
		order, err := render.ParseCellOrder(renderCellOrder)
		if err != nil {
			return err
		}
		opts.CellOrder = order
	}
	if flagChanged(cmd, "raw-html") {
		opts.Escape = !renderRawHTML
	}

	html, err := render.HTMLTable(t, opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdoutFromContext(ctx), html)
	return err
}
