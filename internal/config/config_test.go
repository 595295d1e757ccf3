// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// isolateHome points the config directory at a temp dir and clears the
// environment overrides.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{
		"SORTBENCH_RESULTS", "SORTBENCH_OUTPUT_DIR", "SORTBENCH_FORMAT",
		"SORTBENCH_L2_KB", "SORTBENCH_BRAND", "SORTBENCH_HISTORY", "SORTBENCH_MEASUREMENTS",
	} {
		t.Setenv(k, "")
	}
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// TestConfig_Default checks the defaults the plot pipeline relies on.
func TestConfig_Default(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Plot.L1Values != 8000 {
		t.Errorf("L1Values = %g, want 8000", cfg.Plot.L1Values)
	}
	if cfg.Plot.CutoffFactor != 3.0 {
		t.Errorf("CutoffFactor = %g, want 3", cfg.Plot.CutoffFactor)
	}
	if cfg.Plot.Format != "pdf" {
		t.Errorf("Format = %q, want pdf", cfg.Plot.Format)
	}
	if cfg.Bench.Measurements != 23 {
		t.Errorf("Measurements = %d, want 23", cfg.Bench.Measurements)
	}
	if !reflect.DeepEqual(cfg.Bench.Workers, []int{1, 2, 4, 8, 16, 32}) {
		t.Errorf("Workers = %v", cfg.Bench.Workers)
	}
	if !cfg.History.Enabled {
		t.Error("history should be enabled by default")
	}
}

// TestConfig_Validate tests configuration validation.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"invalid format", func(c *Config) { c.Plot.Format = "eps" }, "plot.format"},
		{"zero cutoff factor", func(c *Config) { c.Plot.CutoffFactor = 0 }, "plot.cutoff_factor"},
		{"negative l1 values", func(c *Config) { c.Plot.L1Values = -1 }, "plot.l1_values"},
		{"huge facet", func(c *Config) { c.Plot.FacetWidthIn = 100 }, "plot.facet_width_in"},
		{"negative l2", func(c *Config) { c.CPU.L2KB = -256 }, "cpu.l2_kb"},
		{"zero size", func(c *Config) { c.Bench.Sizes = []int{100, 0} }, "bench.sizes"},
		{"zero workers", func(c *Config) { c.Bench.Workers = []int{0} }, "bench.workers"},
		{"unknown implementation", func(c *Config) { c.Bench.Implementations = []string{"bogosort"} }, "bench.implementations"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMS = -1 }, "watch.debounce_ms"},
		{"empty results path", func(c *Config) { c.Plot.ResultsPath = " " }, "plot.results_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error type = %T, want ValidateErrors", err)
			}
			if verrs[0].Field != tt.field {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.field)
			}
		})
	}
}

// TestLoadFromPath_TOML tests that a partial TOML file keeps the defaults
// for everything it does not set.
func TestLoadFromPath_TOML(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
[plot]
results_path = "data/out.csv"
format = "svg"

[cpu]
l2_kb = 1280

[bench]
workers = [1, 2]

[history]
enabled = false
`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Plot.ResultsPath != "data/out.csv" {
		t.Errorf("ResultsPath = %q", cfg.Plot.ResultsPath)
	}
	if cfg.Plot.Format != "svg" {
		t.Errorf("Format = %q", cfg.Plot.Format)
	}
	if cfg.Plot.CutoffFactor != 3.0 {
		t.Errorf("CutoffFactor = %g, want default 3", cfg.Plot.CutoffFactor)
	}
	if cfg.CPU.L2KB != 1280 {
		t.Errorf("L2KB = %d", cfg.CPU.L2KB)
	}
	if !reflect.DeepEqual(cfg.Bench.Workers, []int{1, 2}) {
		t.Errorf("Workers = %v", cfg.Bench.Workers)
	}
	if cfg.Bench.Measurements != 23 {
		t.Errorf("Measurements = %d, want default 23", cfg.Bench.Measurements)
	}
	if cfg.History.Enabled {
		t.Error("history should be disabled")
	}
}

func TestLoadFromPath_JSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"plot": {"output_dir": "plots"}, "watch": {"debounce_ms": 50}}`)

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if cfg.Plot.OutputDir != "plots" {
		t.Errorf("OutputDir = %q", cfg.Plot.OutputDir)
	}
	if cfg.Watch.DebounceMS != 50 {
		t.Errorf("DebounceMS = %d", cfg.Watch.DebounceMS)
	}
	if cfg.Plot.Format != "pdf" {
		t.Errorf("Format = %q, want default pdf", cfg.Plot.Format)
	}
}

func TestLoadFromPath_Errors(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, "[plot]\nresult_path = \"typo.csv\"\n")
	if _, err := LoadFromPath(unknown); err == nil || !strings.Contains(err.Error(), "plot.result_path") {
		t.Errorf("expected unknown key error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.toml")
	writeFile(t, invalid, "[plot]\nformat = \"gif\"\n")
	if _, err := LoadFromPath(invalid); err == nil || !strings.Contains(err.Error(), "plot.format") {
		t.Errorf("expected validation error, got %v", err)
	}

	if _, err := LoadFromPath(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestLoad_Precedence tests TOML over JSON and env over both.
func TestLoad_Precedence(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no files error = %v", err)
	}
	if cfg.Plot.Format != "pdf" {
		t.Errorf("Format = %q, want pdf", cfg.Plot.Format)
	}

	writeFile(t, filepath.Join(home, ".sortbench", "config.json"), `{"plot": {"format": "png"}}`)
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Plot.Format != "png" {
		t.Errorf("Format = %q, want png from JSON", cfg.Plot.Format)
	}

	writeFile(t, filepath.Join(home, ".sortbench", "config.toml"), "[plot]\nformat = \"svg\"\n")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Plot.Format != "svg" {
		t.Errorf("Format = %q, want svg from TOML", cfg.Plot.Format)
	}

	t.Setenv("SORTBENCH_FORMAT", "PDF")
	t.Setenv("SORTBENCH_L2_KB", "512")
	t.Setenv("SORTBENCH_BRAND", "Test CPU")
	t.Setenv("SORTBENCH_HISTORY", "false")
	t.Setenv("SORTBENCH_MEASUREMENTS", "not-a-number")
	cfg, err = Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Plot.Format != "pdf" {
		t.Errorf("Format = %q, want pdf from env", cfg.Plot.Format)
	}
	if cfg.CPU.L2KB != 512 || cfg.CPU.Brand != "Test CPU" {
		t.Errorf("CPU = %+v", cfg.CPU)
	}
	if cfg.History.Enabled {
		t.Error("SORTBENCH_HISTORY=false should disable history")
	}
	if cfg.Bench.Measurements != 23 {
		t.Errorf("unparseable env value should be ignored, got %d", cfg.Bench.Measurements)
	}
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.CPU.Brand = "Round Trip CPU"
	cfg.Bench.Sizes = []int{1000, 2000}
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# sortbench configuration file") {
		t.Error("missing header comment")
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", cfg, loaded)
	}
}

// TestConfig_GetSet tests Get and Set methods with dot notation.
func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("plot.format")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if val != "pdf" {
		t.Errorf("Get('plot.format') = %v, want 'pdf'", val)
	}

	if err := cfg.Set("cpu.l2_kb", "1024"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.CPU.L2KB != 1024 {
		t.Errorf("L2KB = %d after Set", cfg.CPU.L2KB)
	}

	if err := cfg.Set("plot.cutoff_factor", "2.5"); err != nil {
		t.Fatal(err)
	}
	if cfg.Plot.CutoffFactor != 2.5 {
		t.Errorf("CutoffFactor = %g", cfg.Plot.CutoffFactor)
	}

	if err := cfg.Set("bench.sizes", "100, 200,300"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.Bench.Sizes, []int{100, 200, 300}) {
		t.Errorf("Sizes = %v", cfg.Bench.Sizes)
	}

	if err := cfg.Set("history.enabled", "no"); err != nil {
		t.Fatal(err)
	}
	if cfg.History.Enabled {
		t.Error("history.enabled should be false")
	}

	if _, err := cfg.Get("invalid.key"); err == nil {
		t.Error("Get() with invalid key should return error")
	}
	if _, err := cfg.Get("plot.format.extra"); err == nil {
		t.Error("Get() through a non-struct should return error")
	}
	if err := cfg.Set("cpu.l2_kb", "lots"); err == nil {
		t.Error("Set() with bad integer should return error")
	}
}

func TestGetAllKeys_Resolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) error = %v", key, err)
		}
	}
}

// TestConfig_Clone tests that Clone creates an independent copy.
func TestConfig_Clone(t *testing.T) {
	original := Default()
	clone := original.Clone()

	clone.Version = "cloned"
	clone.Bench.Sizes[0] = -1
	clone.Bench.Implementations[0] = "stable"

	if original.Version == "cloned" {
		t.Error("Clone should create an independent copy")
	}
	if original.Bench.Sizes[0] == -1 || original.Bench.Implementations[0] == "stable" {
		t.Error("Clone should not share slices")
	}
}

func TestConfig_HistoryPath(t *testing.T) {
	home := isolateHome(t)

	cfg := Default()
	got, err := cfg.HistoryPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".sortbench", "history.db"); got != want {
		t.Errorf("HistoryPath() = %q, want %q", got, want)
	}

	cfg.History.Path = "/tmp/custom.db"
	if got, _ := cfg.HistoryPath(); got != "/tmp/custom.db" {
		t.Errorf("HistoryPath() = %q", got)
	}
}
