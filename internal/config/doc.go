// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for sortbench.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - PlotConfig: Results path, output directory, format and plot geometry
//   - CPUConfig: Overrides for the detected L2 size and brand
//   - BenchConfig: The benchmark sweep
//   - HistoryConfig, WatchConfig: Run history and watch mode
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (SORTBENCH_*)
//   - ~/.sortbench/config.toml
//   - ~/.sortbench/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	results := cfg.Plot.ResultsPath
//	value, err := cfg.Get("plot.cutoff_factor")
package config
