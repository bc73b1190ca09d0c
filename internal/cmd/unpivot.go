package cmd

import (
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/reshape"
)

var (
	unpivotStart         string
	unpivotEnd           string
	unpivotOutputHeaders []string
	unpivotRetain        []string
	unpivotPrep          prepOptions
)

var unpivotCmd = &cobra.Command{
	Use:   "unpivot [file]",
	Short: "Turn a wide table into a long one",
	Long: `Unpivot a range of columns into (header, value) rows.

Every input row produces one output row per column between --start and
--end (inclusive; defaults are the first and last column). When --start comes
after --end the range is walked backwards. Columns named by --retain are
copied onto every output row.`,
	Example: `  reshape unpivot gradebook.csv --start A1 --end A3 --output-headers Assignment,Grade --retain Name
  reshape unpivot wide.json --retain Name,Email -o csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUnpivot,
}

func init() {
	rootCmd.AddCommand(unpivotCmd)
	unpivotCmd.Flags().StringVar(&unpivotStart, "start", "", "First column of the range (default: first column)")
	unpivotCmd.Flags().StringVar(&unpivotEnd, "end", "", "Last column of the range (default: last column)")
	unpivotCmd.Flags().StringSliceVar(&unpivotOutputHeaders, "output-headers", nil, "Names of the header and value columns (default: Col1,Col2)")
	unpivotCmd.Flags().StringSliceVar(&unpivotRetain, "retain", nil, "Columns copied onto every output row")
	unpivotPrep.register(unpivotCmd)
}

func runUnpivot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	t, err := loadPrepared(ctx, args, &unpivotPrep)
	if err != nil {
		return err
	}
	opts := reshape.UnpivotOptions{
		Start:  unpivotStart,
		End:    unpivotEnd,
		Retain: unpivotRetain,
	}
	if flagChanged(cmd, "output-headers") {
		opts.OutputHeaders = unpivotOutputHeaders
		if opts.OutputHeaders == nil {
			opts.OutputHeaders = []string{}
		}
	}
	out, err := reshape.Unpivot(t, opts)
	if err != nil {
		return err
	}
	return printTable(ctx, out, GetOutputFormat())
}
