package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// AppName is the application name used for the config directory
const AppName = "reshape"

// Config holds CLI configuration
type Config struct {
	OutputFormat string `yaml:"output_format,omitempty"` // text, table, json, ndjson, yaml, csv, html
	InputFormat  string `yaml:"input_format,omitempty"`  // auto, csv, json, ndjson, yaml
	InferTypes   bool   `yaml:"infer_types,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat    string `yaml:"log_format,omitempty"` // text, json
	RawHTML      bool   `yaml:"raw_html,omitempty"`
	CellOrder    string `yaml:"cell_order,omitempty"` // columns, row
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ReadConfig reads the config file from the default location
func ReadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads config from the given path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save saves config to the given path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Keys lists the supported configuration keys in sorted order.
func Keys() []string {
	keys := []string{
		"output_format",
		"input_format",
		"infer_types",
		"log_level",
		"log_format",
		"raw_html",
		"cell_order",
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a value by key. Boolean keys accept anything cast.ToBoolE
// understands (true/false, 1/0, t/f).
func (c *Config) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "output_format":
		c.OutputFormat = value
	case "input_format":
		c.InputFormat = value
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "cell_order":
		c.CellOrder = value
	case "infer_types", "raw_html":
		b, err := cast.ToBoolE(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		if key == "raw_html" {
			c.RawHTML = b
		} else {
			c.InferTypes = b
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Unset clears a value by key.
func (c *Config) Unset(key string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "output_format":
		c.OutputFormat = ""
	case "input_format":
		c.InputFormat = ""
	case "infer_types":
		c.InferTypes = false
	case "log_level":
		c.LogLevel = ""
	case "log_format":
		c.LogFormat = ""
	case "raw_html":
		c.RawHTML = false
	case "cell_order":
		c.CellOrder = ""
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// Values returns every key with its current value.
func (c *Config) Values() map[string]interface{} {
	return map[string]interface{}{
		"output_format": c.OutputFormat,
		"input_format":  c.InputFormat,
		"infer_types":   c.InferTypes,
		"log_level":     c.LogLevel,
		"log_format":    c.LogFormat,
		"raw_html":      c.RawHTML,
		"cell_order":    c.CellOrder,
	}
}
