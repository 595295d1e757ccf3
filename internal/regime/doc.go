// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package regime splits a results table into the small, large and all size
// regimes and adds the L1/L2 cache boundary reference rows for each.
//
// The cutoff between small and large is CutoffFactor times the number of
// 4-byte integers that fit in the L2 cache. Every regime starts from a fresh
// copy of the input table, so reference rows never carry over between
// regimes.
package regime
