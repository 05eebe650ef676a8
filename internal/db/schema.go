package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema of the sweep ledger.
// Tests load it via GetSchemaSQL() instead of declaring their own tables.
const SchemaSQL = `
-- Sweeps (one run of the experiment driver)
CREATE TABLE IF NOT EXISTS sweeps (
	id TEXT PRIMARY KEY,
	workspace TEXT NOT NULL,
	version TEXT NOT NULL,
	iterations INTEGER NOT NULL,
	datasets TEXT NOT NULL,
	total INTEGER NOT NULL DEFAULT 0,
	succeeded INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	finished_at TEXT
);

-- Sweep entries (one per dataset and iteration)
CREATE TABLE IF NOT EXISTS sweep_entries (
	sweep_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	dataset TEXT NOT NULL,
	iteration INTEGER NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('succeeded', 'failed', 'skipped')),
	phase TEXT,
	reason TEXT,
	exit_code INTEGER NOT NULL DEFAULT -1,
	input_path TEXT NOT NULL,
	command_line TEXT NOT NULL,
	stdout_path TEXT NOT NULL,
	stderr_path TEXT NOT NULL,
	started_at TEXT,
	finished_at TEXT,
	PRIMARY KEY (sweep_id, seq),
	FOREIGN KEY (sweep_id) REFERENCES sweeps(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sweep_entries_dataset ON sweep_entries(dataset, iteration);
CREATE INDEX IF NOT EXISTS idx_sweeps_started ON sweeps(started_at);
`

// InitSchema creates the schema on a fresh database and applies pending
// migrations on an existing one.
func InitSchema(db *sql.DB) error {
	var tableCount int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(db)
	}

	// Fresh install - create the current schema and mark every migration applied
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(db); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
