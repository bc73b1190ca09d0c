package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/logging"
	"github.com/salmonumbrella/reshape-cli/internal/merge"
	"github.com/salmonumbrella/reshape-cli/internal/output"
	"github.com/salmonumbrella/reshape-cli/internal/pipeline"
	"github.com/salmonumbrella/reshape-cli/internal/render"
	"github.com/salmonumbrella/reshape-cli/internal/table"
)

var runCmd = &cobra.Command{
	Use:   "run <pipeline.yaml>",
	Short: "Run a pipeline file",
	Long: `Run a YAML pipeline: load the input table, apply each step in order and
print the result.

Steps:
  filter: <jq expression>                        keep matching rows
  sort: {by: [col, ...], desc: false}            stable sort, first column primary
  pivot: {group: G, column: C, value: V}
  unpivot: {start: S, end: E, output_headers: [k, v], retain: [col, ...]}
  insert_columns: [col, ...]                     or {names: [...], before: col}
  move_columns: [col, ...]                       or {names: [...], before: col}
  join: {source: file, key: K, append_rows: false, append_columns: false}
  reduce: {source: file}

Relative paths are resolved against the pipeline file's directory. The
output section picks the format (unless --output is given), the columns to
print and, for HTML, the display names, cell order and escaping.`,
	Example: `  reshape run gradebook.yaml
  reshape run gradebook.yaml -o csv --debug`,
	Args: cobra.ExactArgs(1),
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f, err := loadPipeline(args[0])
	if err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Stdin:       stdinFromContext(ctx),
		InputFormat: inputType,
		InferTypes:  inferTypes,
	}
	res, err := runner.Run(ctx, f)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug("pipeline result", "run_id", res.RunID, "rows", res.Table.Len())

	format := GetOutputFormat()
	if f.Output.Format != "" && !flagChanged(cmd, "output") {
		if format, err = output.ParseFormat(f.Output.Format); err != nil {
			return err
		}
		ctx = output.WithFormat(ctx, format)
	}

	if format == output.FormatHTML {
		opts, err := pipelineRenderOptions(output.RenderFromContext(ctx), f.Output)
		if err != nil {
			return err
		}
		ctx = output.WithRender(ctx, opts)
		return printTable(ctx, res.Table, format)
	}

	t := res.Table
	if len(f.Output.Columns) > 0 {
		if t, err = selectColumns(t, f.Output.Columns); err != nil {
			return err
		}
	}
	return printTable(ctx, t, format)
}

func pipelineRenderOptions(base render.Options, out pipeline.Output) (render.Options, error) {
	opts := base
	opts.Columns = out.Columns
	opts.DisplayNames = out.DisplayNames
	if out.CellOrder != "" {
		order, err := render.ParseCellOrder(out.CellOrder)
		if err != nil {
			return opts, err
		}
		opts.CellOrder = order
	}
	if out.RawHTML {
		opts.Escape = false
	}
	return opts, nil
}

// selectColumns restricts t to columns, in that order.
func selectColumns(t *table.Table, columns []string) (*table.Table, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	template, err := table.New(columns)
	if err != nil {
		return nil, err
	}
	return merge.ReduceHeaders(t, template)
}
