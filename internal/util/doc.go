// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the sortbench packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//   - AtomicWriteFunc: Same guarantees for streamed output (plots, CSV)
//
// Text Layout:
//   - TruncateWidth: Display-width aware truncation with ellipsis
//   - PadRight: Display-width aware padding for aligned columns
//   - FormatNumber: Shortest decimal form of a float64
//
// # Usage
//
//	err := util.AtomicWriteFunc("out.pdf", 0644, func(w io.Writer) error {
//		_, err := canvas.WriteTo(w)
//		return err
//	})
package util
