package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/merge"
)

var (
	joinKey           string
	joinAppendRows    bool
	joinAppendColumns bool
)

var joinCmd = &cobra.Command{
	Use:   "join <target> <source>",
	Short: "Update a target table from a source table by key",
	Long: `Update the target table with newer values from the source table.

Source rows are matched to target rows on the --key column using strict
equality (1 and "1" do not match). For each source row the last matching
target row is overwritten for every column both tables share. Unmatched
source rows are dropped unless --append-rows is given. Source-only columns
are ignored unless --append-columns is given.

Nothing is written when the two tables share no columns or when either
table lacks the --key column.`,
	Example: `  reshape join gradebook.csv demographics.csv --key Name
  reshape join roster.json updates.csv --key ID --append-rows --append-columns -o csv`,
	Args: cobra.ExactArgs(2),
	RunE: runJoin,
}

var reduceCmd = &cobra.Command{
	Use:   "reduce <target> <source>",
	Short: "Restrict a table to the columns of another table",
	Long: `Print the target table restricted to the columns that also appear in the
source table, in the source's column order. Only the source's header row is
used; its rows are ignored.`,
	Example: `  reshape reduce export.csv template.csv`,
	Args:    cobra.ExactArgs(2),
	RunE:    runReduce,
}

func init() {
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(reduceCmd)

	joinCmd.Flags().StringVarP(&joinKey, "key", "k", "", "Column used to match rows (required)")
	joinCmd.Flags().BoolVar(&joinAppendRows, "append-rows", false, "Append source rows that match no target row")
	joinCmd.Flags().BoolVar(&joinAppendColumns, "append-columns", false, "Add source columns missing from the target")
	joinCmd.MarkFlagRequired("key")
}

func runJoin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target, err := readTable(ctx, args[0])
	if err != nil {
		return err
	}
	source, err := readTable(ctx, args[1])
	if err != nil {
		return err
	}
	if err := merge.RequireKey(target, source, joinKey); err != nil {
		return err
	}
	out, err := merge.Join(target, source, joinKey, merge.JoinOptions{
		AppendRows:    joinAppendRows,
		AppendColumns: joinAppendColumns,
	})
	if err != nil {
		return err
	}
	return printTable(ctx, out, GetOutputFormat())
}

func runReduce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	target, err := readTable(ctx, args[0])
	if err != nil {
		return err
	}
	source, err := readTable(ctx, args[1])
	if err != nil {
		return err
	}
	out, err := merge.ReduceHeaders(target, source)
	if err != nil {
		return err
	}
	return printTable(ctx, out, GetOutputFormat())
}
