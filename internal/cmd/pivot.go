package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/reshape"
)

var (
	pivotGroup  string
	pivotColumn string
	pivotValue  string
	pivotPrep   prepOptions
)

var pivotCmd = &cobra.Command{
	Use:   "pivot [file]",
	Short: "Turn a long table into a wide one",
	Long: `Pivot a long table (one fact per row) into a wide one (one subject per row).

Rows are grouped by the --group column. Each distinct value of --column
becomes a new column holding the --value cell of that row. When several rows
of a group share a column value, the last one wins. The group column comes
first, followed by the new columns in the order they were first seen.`,
	Example: `  reshape pivot grades.csv --group Name --column Assignment --value Grade
  reshape pivot grades.csv -g Name -c Assignment --value Grade --where '.Subject != "Vocation"'
  cat grades.json | reshape pivot -g Name -c Assignment --value Grade -o table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPivot,
}

func init() {
	rootCmd.AddCommand(pivotCmd)
	pivotCmd.Flags().StringVarP(&pivotGroup, "group", "g", "", "Column whose values identify an output row (required)")
	pivotCmd.Flags().StringVarP(&pivotColumn, "column", "c", "", "Column whose values become output headers (required)")
	pivotCmd.Flags().StringVar(&pivotValue, "value", "", "Column whose values fill the new cells (required)")
	pivotPrep.register(pivotCmd)
	pivotCmd.MarkFlagRequired("group")
	pivotCmd.MarkFlagRequired("column")
	pivotCmd.MarkFlagRequired("value")
}

func runPivot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, err := loadPrepared(ctx, args, &pivotPrep)
	if err != nil {
		return err
	}
	if err := t.Require(pivotGroup, pivotColumn, pivotValue); err != nil {
		return err
	}
	return printTable(ctx, reshape.Pivot(t, pivotGroup, pivotColumn, pivotValue), GetOutputFormat())
}
