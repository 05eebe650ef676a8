package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"

	"github.com/example/automl/internal/config"
	"github.com/example/automl/internal/ports/primary"
)

// SweepAdapter is a thin adapter that translates CLI operations to SweepService calls.
// It depends only on the SweepService interface, enabling easy testing with mocks.
type SweepAdapter struct {
	service     primary.SweepService
	out         io.Writer
	progressOut io.Writer
}

// NewSweepAdapter creates a new SweepAdapter.
// progressOut receives the progress bar; nil disables it.
func NewSweepAdapter(service primary.SweepService, out, progressOut io.Writer) *SweepAdapter {
	return &SweepAdapter{
		service:     service,
		out:         out,
		progressOut: progressOut,
	}
}

// Plan prints the planned entries and their command lines without running anything.
func (a *SweepAdapter) Plan(ctx context.Context, opts config.Options) (*primary.SweepPlan, error) {
	plan, err := a.service.PlanSweep(ctx, primary.SweepRequest{Options: opts})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "Planned %d run(s) for %d dataset(s) in %s\n\n", len(plan.Entries), len(opts.Datasets), opts.Workspace)

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DATASET\tITERATION\tPREPARATION\tKNOWLEDGE BASE")
	fmt.Fprintln(w, "-------\t---------\t-----------\t--------------")
	for _, e := range plan.Entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", e.Dataset, e.Iteration+1, e.Preparation, e.InputPath)
	}
	w.Flush()

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "Commands:")
	for _, e := range plan.Entries {
		fmt.Fprintf(a.out, "  %s\n", e.CommandLine)
	}

	return plan, nil
}

// Run executes a sweep, printing one status line per entry and a summary.
// Failed entries do not make Run fail; only configuration errors and
// interruption do.
func (a *SweepAdapter) Run(ctx context.Context, opts config.Options, record bool) (*primary.SweepReport, error) {
	progress := &sweepProgress{out: a.out, barOut: a.progressOut}

	report, err := a.service.RunSweep(ctx, primary.SweepRequest{Options: opts, Record: record}, progress)
	if report != nil {
		a.printSummary(report, record)
	}
	if err != nil {
		return report, fmt.Errorf("sweep interrupted: %w", err)
	}
	return report, nil
}

func (a *SweepAdapter) printSummary(report *primary.SweepReport, record bool) {
	s := report.Sweep
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Sweep %s: %d run(s), %s succeeded, %s failed, %s skipped\n",
		s.ID, s.Total,
		color.New(color.FgGreen).Sprint(s.Succeeded),
		color.New(color.FgRed).Sprint(s.Failed),
		color.New(color.FgYellow).Sprint(s.Skipped))
	if unfinished := s.Total - s.Succeeded - s.Failed - s.Skipped; unfinished > 0 {
		fmt.Fprintf(a.out, "  %d run(s) not started\n", unfinished)
	}
	if record {
		fmt.Fprintf(a.out, "  Details: automl runs show %s --workspace %s\n", s.ID, s.Workspace)
	}
}

// FilterDatasets prints the dataset IDs that pass pre-screening, one per line.
func (a *SweepAdapter) FilterDatasets(ctx context.Context, tablePath string, candidates []string) ([]string, error) {
	kept, err := a.service.FilterDatasets(ctx, primary.FilterDatasetsRequest{
		TablePath:  tablePath,
		Candidates: candidates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter datasets: %w", err)
	}

	for _, id := range kept {
		fmt.Fprintln(a.out, id)
	}
	return kept, nil
}

// ListRuns lists recorded sweeps of a workspace.
func (a *SweepAdapter) ListRuns(ctx context.Context, workspace string, limit int) ([]*primary.SweepSummary, error) {
	sweeps, err := a.service.ListSweeps(ctx, workspace, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sweeps: %w", err)
	}

	if len(sweeps) == 0 {
		fmt.Fprintln(a.out, "No sweeps recorded.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Start one with:")
		fmt.Fprintf(a.out, "  automl run --workspace %s ...\n", workspace)
		return sweeps, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tVERSION\tDATASETS\tOK\tFAILED\tSKIPPED")
	fmt.Fprintln(w, "--\t-------\t-------\t--------\t--\t------\t-------")
	for _, s := range sweeps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			s.ID,
			s.StartedAt,
			s.Version,
			strings.Join(s.Datasets, ","),
			s.Succeeded,
			s.Failed,
			s.Skipped,
		)
	}
	w.Flush()
	return sweeps, nil
}

// ShowRun displays one recorded sweep and its entry outcomes.
func (a *SweepAdapter) ShowRun(ctx context.Context, workspace, sweepID string) (*primary.SweepSummary, error) {
	s, results, err := a.service.GetSweep(ctx, workspace, sweepID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sweep: %w", err)
	}

	fmt.Fprintf(a.out, "\nSweep: %s\n", s.ID)
	fmt.Fprintf(a.out, "Version:    %s\n", s.Version)
	fmt.Fprintf(a.out, "Datasets:   %s\n", strings.Join(s.Datasets, ", "))
	fmt.Fprintf(a.out, "Iterations: %d\n", s.Iterations)
	fmt.Fprintf(a.out, "Started:    %s\n", s.StartedAt)
	fmt.Fprintf(a.out, "Finished:   %s\n", valueOr(s.FinishedAt, "(unfinished)"))
	fmt.Fprintln(a.out)

	for _, r := range results {
		fmt.Fprintln(a.out, entryLine(r))
	}
	fmt.Fprintln(a.out)

	return s, nil
}

// entryLine renders one entry outcome with its status marker.
func entryLine(r *primary.EntryResult) string {
	line := fmt.Sprintf("%s %s iteration %d", statusIcon(r.Status), r.Dataset, r.Iteration+1)
	switch r.Status {
	case "failed":
		line += fmt.Sprintf(": %s (%s)", r.Reason, r.StderrPath)
	case "skipped":
		line += fmt.Sprintf(" skipped: %s", r.Reason)
	}
	return line
}

func statusIcon(status string) string {
	switch status {
	case "succeeded":
		return color.New(color.FgGreen).Sprint("✓")
	case "failed":
		return color.New(color.FgRed).Sprint("✗")
	default:
		return color.New(color.FgYellow).Sprint("-")
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

const barTemplate pb.ProgressBarTemplate = `{{with string . "prefix"}}{{.}} {{end}}{{counters . }} {{bar . }} {{etime . }}`

// sweepProgress prints entry status lines and drives a progress bar.
type sweepProgress struct {
	out    io.Writer
	barOut io.Writer
	bar    *pb.ProgressBar
}

func (p *sweepProgress) Start(total int) {
	if p.barOut == nil {
		return
	}
	p.bar = barTemplate.New(total)
	p.bar.SetWriter(p.barOut)
	p.bar.Start()
}

func (p *sweepProgress) EntryStarted(entry *primary.PlannedEntry) {
	if p.bar != nil {
		p.bar.Set("prefix", fmt.Sprintf("dataset %s iteration %d:", entry.Dataset, entry.Iteration+1))
	}
}

func (p *sweepProgress) EntryFinished(result *primary.EntryResult) {
	fmt.Fprintln(p.out, entryLine(result))
	if p.bar != nil {
		p.bar.Increment()
	}
}

func (p *sweepProgress) Finish() {
	if p.bar != nil {
		p.bar.Set("prefix", "done:")
		p.bar.Finish()
	}
}

// Ensure sweepProgress implements the interface
var _ primary.ProgressReporter = (*sweepProgress)(nil)
