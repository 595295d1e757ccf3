// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package benchmark provides the multi-worker sort benchmark and the
// results table it produces.
//
// # Key Types
//
//   - Row: One result line (implementation, thread count, measurements, size, median runtime)
//   - Table: An ordered collection of rows with CSV load/save
//   - Runner: Runs every (workers, size, implementation) case concurrently
//   - Sorter: A named sort implementation under test
//
// # Results Format
//
// Results are CSV with the columns
//
//	IMPLEMENTATION,THREAD_COUNT,MEASUREMENTS,SIZE,MEDIAN_RUNTIME_MUS
//
// A header row is written on save. On load the header is optional; rows
// without one must use the column order above.
//
// # Usage
//
//	runner, err := benchmark.NewRunner(benchmark.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	table, err := runner.Run(ctx)
//	if err != nil {
//		return err
//	}
//	return table.SaveFile("rel/results.csv")
package benchmark
