// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not declare tables in test files.
package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/automl/internal/adapters/sqlite"
	"github.com/example/automl/internal/db"
	"github.com/example/automl/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedSweep inserts a test sweep and returns it.
func seedSweep(t *testing.T, ledger *sqlite.SweepLedger, id, startedAt string) *secondary.SweepRecord {
	t.Helper()
	if startedAt == "" {
		startedAt = "2026-01-01T00:00:00Z"
	}
	record := &secondary.SweepRecord{
		ID:         id,
		Workspace:  "/ws",
		Version:    "1.0.0",
		Iterations: 2,
		Datasets:   "31,179",
		Total:      4,
		StartedAt:  startedAt,
	}
	if err := ledger.CreateSweep(context.Background(), record); err != nil {
		t.Fatalf("failed to seed sweep: %v", err)
	}
	return record
}
