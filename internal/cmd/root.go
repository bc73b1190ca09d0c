package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/reshape-cli/internal/config"
	"github.com/salmonumbrella/reshape-cli/internal/logging"
	"github.com/salmonumbrella/reshape-cli/internal/output"
	"github.com/salmonumbrella/reshape-cli/internal/render"
	"github.com/salmonumbrella/reshape-cli/internal/tableio"
)

var (
	// Version is set at build time
	version = "dev"
	// Commit is set at build time
	commit = "none"
	// Date is set at build time
	date = "unknown"
)

// SetVersionInfo sets the version information from build flags
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = v
	rootCmd.SetVersionTemplate(fmt.Sprintf("reshape version %s (commit: %s, built: %s)\n", version, commit, date))
}

// Global flags
var (
	outputFmt   string
	outputType  output.Format
	inputFmt    string
	inputType   tableio.Format
	inferTypes  bool
	debug       bool
	configFile  string
	queryExpr   string
	queryFile   string
	errorFmt    string
	quietFlag   bool
	resultLimit int
	resultSort  string
	resultDesc  bool
)

// renderDefaults holds the HTML options resolved from config. Commands with
// their own render flags start from these.
var renderDefaults = render.Options{Escape: true}

var rootCmd = &cobra.Command{
	Use:   "reshape",
	Short: "Pivot, unpivot, join and render tables",
	Long: `reshape converts tables between long and wide layouts, reconciles two
tables by a key column and renders the result.

Tables are read from CSV, JSON, NDJSON or YAML files (or stdin with -) and
printed as text, a boxed table, JSON, NDJSON, YAML, CSV or HTML.

Environment Variables:
  RESHAPE_CONFIG   Config file path (default: ~/.config/reshape/config.yaml)`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceErrors = true

		ctx := cmd.Context()
		ctx = withIO(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		ctx = withErrorFormat(ctx, errorFmt)
		cmd.SetContext(ctx)

		skipConfigLoad := cmd.Name() == "config" || (cmd.Parent() != nil && cmd.Parent().Name() == "config")
		var cfg *config.Config
		if !skipConfigLoad {
			loadedCfg, err := loadConfigFromFlag()
			if err != nil {
				return formatConfigLoadError(err)
			}
			cfg = loadedCfg
		}

		setupLogging(cmd, cfg)

		// Output format selection: --output > config > default
		formatStr := outputFmt
		if !flagChanged(cmd, "output") && cfg != nil && strings.TrimSpace(cfg.OutputFormat) != "" {
			formatStr = strings.TrimSpace(cfg.OutputFormat)
		} else if !flagChanged(cmd, "output") && !isTerminal(cmd.OutOrStdout()) {
			formatStr = "json"
		}
		format, err := output.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		outputType = format
		outputFmt = string(format)

		if err := applyInputSettings(cmd, cfg); err != nil {
			return err
		}
		if err := applyRenderSettings(cfg); err != nil {
			return err
		}

		// jq query
		if queryExpr != "" && queryFile != "" {
			return fmt.Errorf("use only one of --query or --query-file")
		}
		if queryFile != "" {
			loaded, err := readInputSource(queryFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			queryExpr = loaded
		}

		// Default quiet mode for non-interactive structured output
		if !flagChanged(cmd, "quiet") && !isTerminal(cmd.OutOrStdout()) && output.IsStructured(outputType) {
			quietFlag = true
		}

		ctx = output.WithFormat(ctx, outputType)
		ctx = output.WithQuery(ctx, queryExpr)
		ctx = output.WithLimit(ctx, resultLimit)
		ctx = output.WithSort(ctx, resultSort, resultDesc)
		ctx = output.WithQuiet(ctx, quietFlag)
		ctx = output.WithRender(ctx, renderDefaults)
		cmd.SetContext(ctx)

		if err := validateErrorFormat(errorFmt); err != nil {
			return err
		}
		if effectiveErrorFormat(ctx) != "text" {
			cmd.SilenceUsage = true
		}

		logging.FromContext(ctx).Debug("command start", "command", cmd.CommandPath(), "output", outputType, "input", inputType)
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	cmd, err := rootCmd.ExecuteC()
	if err != nil {
		ctx := rootCmd.Context()
		if cmd != nil && cmd.Context() != nil {
			ctx = cmd.Context()
		}
		if ctx == nil {
			ctx = context.Background()
		}
		printCommandError(ctx, err)
		return err
	}
	return nil
}

// GetOutputFormat returns the configured output format
func GetOutputFormat() output.Format {
	if outputType != "" {
		return outputType
	}
	parsed, err := output.ParseFormat(outputFmt)
	if err != nil {
		return output.FormatText
	}
	return parsed
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("reshape version %s (commit: %s, built: %s)\n", version, commit, date))

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format (text|table|json|ndjson|yaml|csv|html)")
	rootCmd.PersistentFlags().StringVarP(&inputFmt, "input-format", "i", "auto", "Input format (auto|csv|json|ndjson|yaml)")
	rootCmd.PersistentFlags().BoolVar(&inferTypes, "infer-types", false, "Read CSV numbers and booleans as typed values")
	rootCmd.PersistentFlags().StringVar(&queryExpr, "query", "", "jq expression to filter JSON output")
	rootCmd.PersistentFlags().StringVar(&queryFile, "query-file", "", "Read jq expression from file (use - for stdin)")
	rootCmd.PersistentFlags().StringVar(&errorFmt, "error-format", "auto", "Error output format (auto|text|json|yaml)")
	rootCmd.PersistentFlags().BoolVar(&quietFlag, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().IntVar(&resultLimit, "result-limit", 0, "Limit number of rows in output (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&resultSort, "result-sort-by", "", "Sort output rows by column")
	rootCmd.PersistentFlags().BoolVar(&resultDesc, "result-desc", false, "Sort output rows in descending order")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.config/reshape/config.yaml)")
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
