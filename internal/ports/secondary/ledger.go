package secondary

import "context"

// LedgerProvider opens the ledger stored in a workspace.
type LedgerProvider interface {
	// Open returns the workspace's ledger, creating it if needed.
	Open(ctx context.Context, workspace string) (SweepLedger, error)
}

// SweepLedger defines the secondary port for recording sweeps and entry outcomes.
type SweepLedger interface {
	// CreateSweep persists a new sweep.
	CreateSweep(ctx context.Context, sweep *SweepRecord) error

	// FinishSweep stores the final counts of a sweep.
	FinishSweep(ctx context.Context, sweep *SweepRecord) error

	// RecordEntry persists the outcome of one entry.
	RecordEntry(ctx context.Context, entry *EntryRecord) error

	// GetSweep retrieves a sweep by its ID.
	GetSweep(ctx context.Context, id string) (*SweepRecord, error)

	// ListSweeps retrieves sweeps, newest first. limit <= 0 means no limit.
	ListSweeps(ctx context.Context, limit int) ([]*SweepRecord, error)

	// ListEntries retrieves the entries of a sweep in execution order.
	ListEntries(ctx context.Context, sweepID string) ([]*EntryRecord, error)

	// Close releases the underlying storage.
	Close() error
}

// SweepRecord represents a sweep as stored in persistence.
type SweepRecord struct {
	ID         string
	Workspace  string
	Version    string
	Iterations int
	Datasets   string // comma separated, in sweep order
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	StartedAt  string
	FinishedAt string
}

// EntryRecord represents one entry outcome as stored in persistence.
type EntryRecord struct {
	SweepID     string
	Seq         int
	Dataset     string
	Iteration   int
	Status      string
	Phase       string
	Reason      string
	ExitCode    int
	InputPath   string
	CommandLine string
	StdoutPath  string
	StderrPath  string
	StartedAt   string
	FinishedAt  string
}
