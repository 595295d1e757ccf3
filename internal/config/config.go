// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for sortbench.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.sortbench/config.toml
//   - ~/.sortbench/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/sortbench/internal/benchmark"
	"github.com/jeranaias/sortbench/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sortbench configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Plot pipeline
	Plot PlotConfig `toml:"plot" json:"plot"`

	// CPU detection overrides
	CPU CPUConfig `toml:"cpu" json:"cpu"`

	// Benchmark sweep
	Bench BenchConfig `toml:"bench" json:"bench"`

	// Run history database
	History HistoryConfig `toml:"history" json:"history"`

	// Watch mode
	Watch WatchConfig `toml:"watch" json:"watch"`
}

// PlotConfig controls where results are read and plots are written.
type PlotConfig struct {
	ResultsPath  string  `toml:"results_path" json:"results_path"`
	OutputDir    string  `toml:"output_dir" json:"output_dir"`
	Format       string  `toml:"format" json:"format"`
	L1Values     float64 `toml:"l1_values" json:"l1_values"`
	CutoffFactor float64 `toml:"cutoff_factor" json:"cutoff_factor"`
	FacetWidthIn float64 `toml:"facet_width_in" json:"facet_width_in"`
	HeightIn     float64 `toml:"height_in" json:"height_in"`
}

// CPUConfig overrides detected CPU values. Zero values mean "detect".
type CPUConfig struct {
	L2KB  int    `toml:"l2_kb" json:"l2_kb"`
	Brand string `toml:"brand" json:"brand"`
}

// BenchConfig describes the benchmark sweep.
type BenchConfig struct {
	Sizes           []int    `toml:"sizes" json:"sizes"`
	Workers         []int    `toml:"workers" json:"workers"`
	Measurements    int      `toml:"measurements" json:"measurements"`
	Implementations []string `toml:"implementations" json:"implementations"`
	OutputPath      string   `toml:"output_path" json:"output_path"`
	Seed            uint64   `toml:"seed" json:"seed"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path of the SQLite database, ~/.sortbench/history.db if empty
	Path string `toml:"path" json:"path"`
}

// WatchConfig controls plot --watch.
type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms" json:"debounce_ms"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	bench := benchmark.DefaultConfig()
	return &Config{
		Version: "1",
		Plot: PlotConfig{
			ResultsPath:  filepath.Join("rel", "results.csv"),
			OutputDir:    ".",
			Format:       "pdf",
			L1Values:     8000,
			CutoffFactor: 3.0,
			FacetWidthIn: 4.0,
			HeightIn:     4.0,
		},
		Bench: BenchConfig{
			Sizes:           bench.Sizes,
			Workers:         bench.Workers,
			Measurements:    bench.Measurements,
			Implementations: bench.Implementations,
			OutputPath:      filepath.Join("rel", "results.csv"),
			Seed:            bench.Seed,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}

// BenchmarkConfig converts the sweep settings for the benchmark runner.
func (c *Config) BenchmarkConfig() benchmark.Config {
	return benchmark.Config{
		Sizes:           append([]int(nil), c.Bench.Sizes...),
		Workers:         append([]int(nil), c.Bench.Workers...),
		Measurements:    c.Bench.Measurements,
		Implementations: append([]string(nil), c.Bench.Implementations...),
		Seed:            c.Bench.Seed,
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sortbench configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sortbench"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// HistoryPath returns the history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	// Try TOML first
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			cfg := Default()
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	// Try JSON as fallback
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			cfg := Default()
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finish applies environment overrides and validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Plot
	if cfg.Plot.ResultsPath == "" {
		cfg.Plot.ResultsPath = defaults.Plot.ResultsPath
	}
	if cfg.Plot.OutputDir == "" {
		cfg.Plot.OutputDir = defaults.Plot.OutputDir
	}
	if cfg.Plot.Format == "" {
		cfg.Plot.Format = defaults.Plot.Format
	}
	if cfg.Plot.L1Values == 0 {
		cfg.Plot.L1Values = defaults.Plot.L1Values
	}
	if cfg.Plot.CutoffFactor == 0 {
		cfg.Plot.CutoffFactor = defaults.Plot.CutoffFactor
	}
	if cfg.Plot.FacetWidthIn == 0 {
		cfg.Plot.FacetWidthIn = defaults.Plot.FacetWidthIn
	}
	if cfg.Plot.HeightIn == 0 {
		cfg.Plot.HeightIn = defaults.Plot.HeightIn
	}

	// Bench
	if len(cfg.Bench.Sizes) == 0 {
		cfg.Bench.Sizes = defaults.Bench.Sizes
	}
	if len(cfg.Bench.Workers) == 0 {
		cfg.Bench.Workers = defaults.Bench.Workers
	}
	if cfg.Bench.Measurements == 0 {
		cfg.Bench.Measurements = defaults.Bench.Measurements
	}
	if len(cfg.Bench.Implementations) == 0 {
		cfg.Bench.Implementations = defaults.Bench.Implementations
	}
	if cfg.Bench.OutputPath == "" {
		cfg.Bench.OutputPath = defaults.Bench.OutputPath
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML saves the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	err := util.AtomicWriteFunc(path, 0644, func(w io.Writer) error {
		fmt.Fprintln(w, "# sortbench configuration file")
		fmt.Fprintln(w, "# Generated by sortbench - edit with care")
		fmt.Fprintln(w, "")
		return toml.NewEncoder(w).Encode(cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// ==========================================================================
	// Plot
	// ==========================================================================

	if strings.TrimSpace(c.Plot.ResultsPath) == "" {
		add("plot.results_path", "must not be empty")
	}
	switch strings.ToLower(c.Plot.Format) {
	case "pdf", "svg", "png":
	default:
		add("plot.format", "invalid format '%s', must be one of: pdf, svg, png", c.Plot.Format)
	}
	if c.Plot.L1Values <= 0 {
		add("plot.l1_values", "must be positive, got %g", c.Plot.L1Values)
	}
	if c.Plot.CutoffFactor <= 0 {
		add("plot.cutoff_factor", "must be positive, got %g", c.Plot.CutoffFactor)
	}
	if c.Plot.FacetWidthIn <= 0 || c.Plot.FacetWidthIn > 40 {
		add("plot.facet_width_in", "must be in (0, 40], got %g", c.Plot.FacetWidthIn)
	}
	if c.Plot.HeightIn <= 0 || c.Plot.HeightIn > 40 {
		add("plot.height_in", "must be in (0, 40], got %g", c.Plot.HeightIn)
	}

	// ==========================================================================
	// CPU
	// ==========================================================================

	if c.CPU.L2KB < 0 {
		add("cpu.l2_kb", "must not be negative, got %d", c.CPU.L2KB)
	}

	// ==========================================================================
	// Bench
	// ==========================================================================

	for _, s := range c.Bench.Sizes {
		if s <= 0 {
			add("bench.sizes", "size must be positive, got %d", s)
		}
	}
	for _, w := range c.Bench.Workers {
		if w <= 0 {
			add("bench.workers", "worker count must be positive, got %d", w)
		}
	}
	if c.Bench.Measurements <= 0 {
		add("bench.measurements", "must be positive, got %d", c.Bench.Measurements)
	}
	for _, name := range c.Bench.Implementations {
		if _, err := benchmark.LookupSorter(name); err != nil {
			add("bench.implementations", "%v", err)
		}
	}

	// ==========================================================================
	// Watch
	// ==========================================================================

	if c.Watch.DebounceMS < 0 {
		add("watch.debounce_ms", "must not be negative, got %d", c.Watch.DebounceMS)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
// Values that do not parse are ignored.
//
// Supported environment variables:
//   - SORTBENCH_RESULTS: overrides plot.results_path
//   - SORTBENCH_OUTPUT_DIR: overrides plot.output_dir
//   - SORTBENCH_FORMAT: overrides plot.format
//   - SORTBENCH_L2_KB: overrides cpu.l2_kb
//   - SORTBENCH_BRAND: overrides cpu.brand
//   - SORTBENCH_HISTORY: set to "0" or "false" to disable run history
//   - SORTBENCH_MEASUREMENTS: overrides bench.measurements
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SORTBENCH_RESULTS"); v != "" {
		c.Plot.ResultsPath = v
	}
	if v := os.Getenv("SORTBENCH_OUTPUT_DIR"); v != "" {
		c.Plot.OutputDir = v
	}
	if v := os.Getenv("SORTBENCH_FORMAT"); v != "" {
		c.Plot.Format = strings.ToLower(v)
	}
	if v := os.Getenv("SORTBENCH_L2_KB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CPU.L2KB = n
		}
	}
	if v := os.Getenv("SORTBENCH_BRAND"); v != "" {
		c.CPU.Brand = v
	}
	if v := os.Getenv("SORTBENCH_HISTORY"); v != "" {
		c.History.Enabled = parseBool(v)
	}
	if v := os.Getenv("SORTBENCH_MEASUREMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Bench.Measurements = n
		}
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "plot.format").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "plot.format").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}

		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Uint64:
			uintVal, err := strconv.ParseUint(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetUint(uintVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		case reflect.Slice:
			return setSliceValue(field, strVal)
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// setSliceValue parses a comma-separated list into an []int or []string field.
func setSliceValue(field reflect.Value, s string) error {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	switch field.Type().Elem().Kind() {
	case reflect.String:
		field.Set(reflect.ValueOf(items))
		return nil
	case reflect.Int:
		ints := make([]int, 0, len(items))
		for _, item := range items {
			n, err := strconv.Atoi(item)
			if err != nil {
				return fmt.Errorf("invalid integer value %q: %v", item, err)
			}
			ints = append(ints, n)
		}
		field.Set(reflect.ValueOf(ints))
		return nil
	}
	return fmt.Errorf("unsupported list type %s", field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"plot.results_path",
		"plot.output_dir",
		"plot.format",
		"plot.l1_values",
		"plot.cutoff_factor",
		"plot.facet_width_in",
		"plot.height_in",
		"cpu.l2_kb",
		"cpu.brand",
		"bench.sizes",
		"bench.workers",
		"bench.measurements",
		"bench.implementations",
		"bench.output_path",
		"bench.seed",
		"history.enabled",
		"history.path",
		"watch.debounce_ms",
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Bench.Sizes = append([]int(nil), c.Bench.Sizes...)
	clone.Bench.Workers = append([]int(nil), c.Bench.Workers...)
	clone.Bench.Implementations = append([]string(nil), c.Bench.Implementations...)
	return &clone
}

// String returns the configuration as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return sb.String()
}
