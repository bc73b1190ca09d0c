package cmd

import (
	"github.com/spf13/cobra"
)

var showPrep prepOptions

var showCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a table, optionally filtered and sorted",
	Long: `Read a table and print it in the selected output format.

Use it to convert between formats or to inspect the columns a file is read
with (nested JSON and YAML objects become dotted column names).`,
	Example: `  reshape show grades.csv -o table
  reshape show data.json --where '.Score > 10' --sort-by Name -o csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showPrep.register(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, err := loadPrepared(ctx, args, &showPrep)
	if err != nil {
		return err
	}
	return printTable(ctx, t, GetOutputFormat())
}
