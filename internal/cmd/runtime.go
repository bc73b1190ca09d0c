package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/reshape-cli/internal/config"
	"github.com/salmonumbrella/reshape-cli/internal/logging"
	"github.com/salmonumbrella/reshape-cli/internal/render"
	"github.com/salmonumbrella/reshape-cli/internal/tableio"
)

// loadConfigFromFlag loads config from --config, then $RESHAPE_CONFIG, then the
// default path.
func loadConfigFromFlag() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func configPath() (string, error) {
	if strings.TrimSpace(configFile) != "" {
		return configFile, nil
	}
	if v := strings.TrimSpace(envGet("RESHAPE_CONFIG")); v != "" {
		return v, nil
	}
	return config.DefaultConfigPath()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// setupLogging configures slog from config, with --debug forcing debug level.
func setupLogging(cmd *cobra.Command, cfg *config.Config) {
	level, format := "", ""
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	if debug {
		level = "debug"
	}
	logging.Setup(level, format, cmd.ErrOrStderr())
}

// applyInputSettings resolves the input format and type inference with
// precedence: flags > config > defaults.
func applyInputSettings(cmd *cobra.Command, cfg *config.Config) error {
	formatStr := inputFmt
	if !flagChanged(cmd, "input-format") && cfg != nil && strings.TrimSpace(cfg.InputFormat) != "" {
		formatStr = cfg.InputFormat
	}
	format, err := tableio.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	inputType = format

	if !flagChanged(cmd, "infer-types") && cfg != nil {
		inferTypes = cfg.InferTypes
	}
	return nil
}

// applyRenderSettings seeds the HTML options from config.
func applyRenderSettings(cfg *config.Config) error {
	renderDefaults = render.Options{Escape: true}
	if cfg == nil {
		return nil
	}
	order, err := render.ParseCellOrder(cfg.CellOrder)
	if err != nil {
		return fmt.Errorf("config cell_order: %w", err)
	}
	renderDefaults.CellOrder = order
	renderDefaults.Escape = !cfg.RawHTML
	return nil
}

func readOptions() tableio.ReadOptions {
	return tableio.ReadOptions{Format: inputType, InferTypes: inferTypes}
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
