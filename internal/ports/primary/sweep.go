// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import (
	"context"

	"github.com/example/automl/internal/config"
)

// SweepService defines the primary port for experiment sweeps.
type SweepService interface {
	// PlanSweep validates the options and returns the planned entries
	// without preparing knowledge bases or launching anything.
	PlanSweep(ctx context.Context, req SweepRequest) (*SweepPlan, error)

	// RunSweep plans and then executes every entry in order.
	// Entry failures are reported in the result, not as an error.
	RunSweep(ctx context.Context, req SweepRequest, progress ProgressReporter) (*SweepReport, error)

	// FilterDatasets keeps the candidate datasets that pass pre-screening.
	FilterDatasets(ctx context.Context, req FilterDatasetsRequest) ([]string, error)

	// ListSweeps lists recorded sweeps of a workspace, newest first.
	ListSweeps(ctx context.Context, workspace string, limit int) ([]*SweepSummary, error)

	// GetSweep returns a recorded sweep and its entry results.
	GetSweep(ctx context.Context, workspace, sweepID string) (*SweepSummary, []*EntryResult, error)
}

// SweepRequest contains parameters for planning or running a sweep.
type SweepRequest struct {
	Options config.Options
	// Record enables the sqlite ledger for this run.
	Record bool
}

// FilterDatasetsRequest contains parameters for dataset pre-screening.
type FilterDatasetsRequest struct {
	TablePath  string
	Candidates []string // empty means every dataset in the table
}

// PlannedEntry represents one (dataset, iteration) entry at the port boundary.
type PlannedEntry struct {
	Dataset     string
	Iteration   int
	InputPath   string
	Preparation string // none, guard, iteration_kb
	CommandLine string
	StdoutPath  string
	StderrPath  string
}

// SweepPlan is the planned sequence of entries.
type SweepPlan struct {
	Entries []*PlannedEntry
}

// EntryResult is the outcome of one entry.
type EntryResult struct {
	PlannedEntry
	Status     string // succeeded, failed, skipped
	Phase      string
	Reason     string
	ExitCode   int
	StartedAt  string
	FinishedAt string
}

// SweepSummary represents a sweep at the port boundary.
type SweepSummary struct {
	ID         string
	Workspace  string
	Version    string
	Iterations int
	Datasets   []string
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
	StartedAt  string
	FinishedAt string
}

// SweepReport contains the result of running a sweep.
type SweepReport struct {
	Sweep   *SweepSummary
	Results []*EntryResult
}

// ProgressReporter receives per-entry progress of a running sweep.
type ProgressReporter interface {
	// Start is called once with the number of planned entries.
	Start(total int)
	// EntryStarted is called before an entry's preparation runs.
	EntryStarted(entry *PlannedEntry)
	// EntryFinished is called once per entry, including skipped ones.
	EntryFinished(result *EntryResult)
	// Finish is called after the last entry.
	Finish()
}
