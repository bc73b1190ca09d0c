package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/config"
	"github.com/salmonumbrella/reshape-cli/internal/output"
	"github.com/salmonumbrella/reshape-cli/internal/render"
	"github.com/salmonumbrella/reshape-cli/internal/tableio"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration stored in ~/.config/reshape/config.yaml.

You can view, set, or unset config keys such as output_format, input_format,
infer_types, log_level, log_format, raw_html and cell_order.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfigFromFlag()
		if err != nil {
			return formatConfigLoadError(err)
		}
		values := cfg.Values()
		if structuredOutputRequested() {
			return printStructured(ctx, values)
		}

		out := stdoutFromContext(ctx)
		fmt.Fprintln(out, "Config:")
		for _, key := range config.Keys() {
			fmt.Fprintf(out, "  %s: %v\n", key, values[key])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Unset a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigUnset,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported configuration keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		keys := config.Keys()
		sort.Strings(keys)

		if structuredOutputRequested() {
			return printStructured(ctx, keys)
		}

		out := stdoutFromContext(ctx)
		fmt.Fprintln(out, "Supported keys:")
		for _, key := range keys {
			fmt.Fprintf(out, "  %s\n", key)
		}
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdoutFromContext(cmd.Context()), path)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)

	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))
	value := strings.TrimSpace(args[1])

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := validateConfigValue(key, value); err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	ctx := cmd.Context()
	if structuredOutputRequested() {
		return printStructured(ctx, map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	if !output.QuietFromContext(ctx) {
		fmt.Fprintf(stdoutFromContext(ctx), "Updated %s\n", key)
	}
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(strings.TrimSpace(args[0]))

	cfg, err := loadConfigFromFlag()
	if err != nil {
		return formatConfigLoadError(err)
	}
	if err := cfg.Unset(key); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}

	ctx := cmd.Context()
	if structuredOutputRequested() {
		return printStructured(ctx, map[string]string{
			"status": "unset",
			"key":    key,
		})
	}
	if !output.QuietFromContext(ctx) {
		fmt.Fprintf(stdoutFromContext(ctx), "Unset %s\n", key)
	}
	return nil
}

// validateConfigValue rejects values the CLI would fail to use later.
func validateConfigValue(key, value string) error {
	var err error
	switch key {
	case "output_format":
		_, err = output.ParseFormat(value)
	case "input_format":
		_, err = tableio.ParseFormat(value)
	case "cell_order":
		_, err = render.ParseCellOrder(value)
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
		default:
			err = fmt.Errorf("invalid log_level %q (expected debug|info|warn|error)", value)
		}
	case "log_format":
		switch strings.ToLower(value) {
		case "text", "json":
		default:
			err = fmt.Errorf("invalid log_format %q (expected text|json)", value)
		}
	}
	return err
}
