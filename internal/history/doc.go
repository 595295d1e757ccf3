// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records plot and bench runs in a local SQLite database.
//
// Runs are identified by a UUID. Lookups accept any unique ID prefix, so
// the short IDs printed by "sortbench history" can be passed back to
// "sortbench history show".
package history
