// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/automl/internal/config"
	"github.com/example/automl/internal/db"
	"github.com/example/automl/internal/ports/secondary"
)

// SweepLedger implements secondary.SweepLedger with SQLite.
type SweepLedger struct {
	db *sql.DB
}

// NewSweepLedger creates a new SQLite sweep ledger.
func NewSweepLedger(db *sql.DB) *SweepLedger {
	return &SweepLedger{db: db}
}

// CreateSweep persists a new sweep.
func (r *SweepLedger) CreateSweep(ctx context.Context, sweep *secondary.SweepRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sweeps (id, workspace, version, iterations, datasets, total, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sweep.ID, sweep.Workspace, sweep.Version, sweep.Iterations, sweep.Datasets, sweep.Total, sweep.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sweep: %w", err)
	}
	return nil
}

// FinishSweep stores the final counts of a sweep.
func (r *SweepLedger) FinishSweep(ctx context.Context, sweep *secondary.SweepRecord) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sweeps SET succeeded = ?, failed = ?, skipped = ?, finished_at = ? WHERE id = ?`,
		sweep.Succeeded, sweep.Failed, sweep.Skipped, nullString(sweep.FinishedAt), sweep.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish sweep: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify sweep update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sweep %s not found", sweep.ID)
	}
	return nil
}

// RecordEntry persists the outcome of one entry.
func (r *SweepLedger) RecordEntry(ctx context.Context, e *secondary.EntryRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sweep_entries (sweep_id, seq, dataset, iteration, status, phase, reason, exit_code, input_path, command_line, stdout_path, stderr_path, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SweepID, e.Seq, e.Dataset, e.Iteration, e.Status,
		nullString(e.Phase), nullString(e.Reason), e.ExitCode,
		e.InputPath, e.CommandLine, e.StdoutPath, e.StderrPath,
		nullString(e.StartedAt), nullString(e.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to record entry %s/%d: %w", e.Dataset, e.Iteration, err)
	}
	return nil
}

const sweepColumns = `id, workspace, version, iterations, datasets, total, succeeded, failed, skipped, started_at, finished_at`

// GetSweep retrieves a sweep by its ID.
func (r *SweepLedger) GetSweep(ctx context.Context, id string) (*secondary.SweepRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sweepColumns+` FROM sweeps WHERE id = ?`, id)

	record, err := scanSweep(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sweep %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep: %w", err)
	}
	return record, nil
}

// ListSweeps retrieves sweeps, newest first.
func (r *SweepLedger) ListSweeps(ctx context.Context, limit int) ([]*secondary.SweepRecord, error) {
	query := `SELECT ` + sweepColumns + ` FROM sweeps ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweeps: %w", err)
	}
	defer rows.Close()

	var sweeps []*secondary.SweepRecord
	for rows.Next() {
		record, err := scanSweep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sweep: %w", err)
		}
		sweeps = append(sweeps, record)
	}
	return sweeps, rows.Err()
}

// ListEntries retrieves the entries of a sweep in execution order.
func (r *SweepLedger) ListEntries(ctx context.Context, sweepID string) ([]*secondary.EntryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT sweep_id, seq, dataset, iteration, status, phase, reason, exit_code, input_path, command_line, stdout_path, stderr_path, started_at, finished_at
		 FROM sweep_entries WHERE sweep_id = ? ORDER BY seq`,
		sweepID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.EntryRecord
	for rows.Next() {
		var (
			phase, reason         sql.NullString
			startedAt, finishedAt sql.NullString
		)
		e := &secondary.EntryRecord{}
		err := rows.Scan(&e.SweepID, &e.Seq, &e.Dataset, &e.Iteration, &e.Status,
			&phase, &reason, &e.ExitCode,
			&e.InputPath, &e.CommandLine, &e.StdoutPath, &e.StderrPath,
			&startedAt, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Phase = phase.String
		e.Reason = reason.String
		e.StartedAt = startedAt.String
		e.FinishedAt = finishedAt.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (r *SweepLedger) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSweep(row rowScanner) (*secondary.SweepRecord, error) {
	var finishedAt sql.NullString
	record := &secondary.SweepRecord{}
	err := row.Scan(&record.ID, &record.Workspace, &record.Version, &record.Iterations, &record.Datasets,
		&record.Total, &record.Succeeded, &record.Failed, &record.Skipped,
		&record.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	record.FinishedAt = finishedAt.String
	return record, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// LedgerProvider implements secondary.LedgerProvider by opening
// <workspace>/.automl/ledger.db.
type LedgerProvider struct{}

// NewLedgerProvider creates a new LedgerProvider.
func NewLedgerProvider() *LedgerProvider {
	return &LedgerProvider{}
}

// Open returns the ledger of a workspace, creating it if needed.
func (p *LedgerProvider) Open(ctx context.Context, workspace string) (secondary.SweepLedger, error) {
	database, err := db.Open(config.LedgerPath(workspace))
	if err != nil {
		return nil, err
	}
	return NewSweepLedger(database), nil
}

// Ensure implementations satisfy the interfaces
var (
	_ secondary.SweepLedger    = (*SweepLedger)(nil)
	_ secondary.LedgerProvider = (*LedgerProvider)(nil)
)
