// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema is the SQLite schema of the run history.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,           -- plot, bench
    started_at INTEGER NOT NULL,  -- Unix nanoseconds
    duration_ns INTEGER NOT NULL,
    brand TEXT NOT NULL DEFAULT '',
    l2_kb INTEGER NOT NULL DEFAULT 0,
    source TEXT NOT NULL DEFAULT '',  -- results file read or written
    row_count INTEGER NOT NULL DEFAULT 0,
    files TEXT NOT NULL DEFAULT '[]'  -- JSON array of output paths
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);
`

// InitMetadata seeds the metadata table.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
`
