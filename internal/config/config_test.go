package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OutputFormat != "" || cfg.RawHTML {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &Config{}
	if err := cfg.Set("output_format", "table"); err != nil {
		t.Fatalf("Set output_format: %v", err)
	}
	if err := cfg.Set("raw_html", "1"); err != nil {
		t.Fatalf("Set raw_html: %v", err)
	}
	if err := cfg.Set("INFER_TYPES", "true"); err != nil {
		t.Fatalf("Set infer_types: %v", err)
	}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.OutputFormat != "table" || !loaded.RawHTML || !loaded.InferTypes {
		t.Fatalf("unexpected loaded config: %+v", loaded)
	}
}

func TestSetRejectsBadInput(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Set("raw_html", "maybe"); err == nil {
		t.Fatal("expected error for bad boolean")
	}
	if err := cfg.Set("token", "x"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
	if err := cfg.Unset("token"); err == nil {
		t.Fatal("expected unknown key error on unset")
	}
}

func TestUnset(t *testing.T) {
	cfg := &Config{OutputFormat: "json", RawHTML: true, CellOrder: "row"}
	for _, key := range []string{"output_format", "raw_html", "cell_order"} {
		if err := cfg.Unset(key); err != nil {
			t.Fatalf("Unset(%s): %v", key, err)
		}
	}
	if cfg.OutputFormat != "" || cfg.RawHTML || cfg.CellOrder != "" {
		t.Fatalf("values not cleared: %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("output_format: [\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestKeysMatchValues(t *testing.T) {
	values := (&Config{}).Values()
	for _, k := range Keys() {
		if _, ok := values[k]; !ok {
			t.Errorf("key %s missing from Values()", k)
		}
	}
	if len(values) != len(Keys()) {
		t.Errorf("Values() has %d keys, Keys() has %d", len(values), len(Keys()))
	}
}
