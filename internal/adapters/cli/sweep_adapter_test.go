package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/example/automl/internal/config"
	"github.com/example/automl/internal/ports/primary"
)

func init() {
	color.NoColor = true
}

// mockSweepService implements primary.SweepService for testing
type mockSweepService struct {
	planFn   func(ctx context.Context, req primary.SweepRequest) (*primary.SweepPlan, error)
	runFn    func(ctx context.Context, req primary.SweepRequest, progress primary.ProgressReporter) (*primary.SweepReport, error)
	filterFn func(ctx context.Context, req primary.FilterDatasetsRequest) ([]string, error)
	listFn   func(ctx context.Context, workspace string, limit int) ([]*primary.SweepSummary, error)
	getFn    func(ctx context.Context, workspace, id string) (*primary.SweepSummary, []*primary.EntryResult, error)

	lastRunReq    primary.SweepRequest
	lastFilterReq primary.FilterDatasetsRequest
}

func (m *mockSweepService) PlanSweep(ctx context.Context, req primary.SweepRequest) (*primary.SweepPlan, error) {
	return m.planFn(ctx, req)
}

func (m *mockSweepService) RunSweep(ctx context.Context, req primary.SweepRequest, progress primary.ProgressReporter) (*primary.SweepReport, error) {
	m.lastRunReq = req
	return m.runFn(ctx, req, progress)
}

func (m *mockSweepService) FilterDatasets(ctx context.Context, req primary.FilterDatasetsRequest) ([]string, error) {
	m.lastFilterReq = req
	return m.filterFn(ctx, req)
}

func (m *mockSweepService) ListSweeps(ctx context.Context, workspace string, limit int) ([]*primary.SweepSummary, error) {
	return m.listFn(ctx, workspace, limit)
}

func (m *mockSweepService) GetSweep(ctx context.Context, workspace, id string) (*primary.SweepSummary, []*primary.EntryResult, error) {
	return m.getFn(ctx, workspace, id)
}

var testResults = []*primary.EntryResult{
	{PlannedEntry: primary.PlannedEntry{Dataset: "31", Iteration: 0}, Status: "succeeded"},
	{
		PlannedEntry: primary.PlannedEntry{Dataset: "31", Iteration: 1, StderrPath: "/ws/31/logs/stderr_2.txt"},
		Status:       "failed",
		Reason:       "optimizer exited with status 1",
	},
	{PlannedEntry: primary.PlannedEntry{Dataset: "31", Iteration: 2}, Status: "skipped", Reason: "iteration 2 of dataset 31 failed"},
}

func TestSweepAdapter_Plan(t *testing.T) {
	service := &mockSweepService{
		planFn: func(ctx context.Context, req primary.SweepRequest) (*primary.SweepPlan, error) {
			return &primary.SweepPlan{Entries: []*primary.PlannedEntry{
				{Dataset: "31", Iteration: 0, Preparation: "guard", InputPath: "/ws/31/resources/guards.txt", CommandLine: "java -Xss128M -jar hamlet-1.0-all.jar /ws/31 31"},
				{Dataset: "31", Iteration: 1, Preparation: "iteration_kb", InputPath: "/ws/31/argumentation/complete_kb_1.txt", CommandLine: "java -Xss128M -jar hamlet-1.0-all.jar /ws/31 31 second"},
			}}, nil
		},
	}
	var out bytes.Buffer
	adapter := NewSweepAdapter(service, &out, nil)

	opts := config.Defaults()
	opts.Workspace = "/ws"
	opts.Datasets = []string{"31"}
	plan, err := adapter.Plan(context.Background(), opts)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(plan.Entries))
	}

	output := out.String()
	for _, want := range []string{
		"Planned 2 run(s) for 1 dataset(s) in /ws",
		"DATASET",
		"guard",
		"/ws/31/argumentation/complete_kb_1.txt",
		"  java -Xss128M -jar hamlet-1.0-all.jar /ws/31 31 second",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestSweepAdapter_PlanError(t *testing.T) {
	service := &mockSweepService{
		planFn: func(ctx context.Context, req primary.SweepRequest) (*primary.SweepPlan, error) {
			return nil, &config.ConfigurationError{Key: "fair-mode", Reason: "unknown"}
		},
	}
	var out bytes.Buffer
	adapter := NewSweepAdapter(service, &out, nil)

	_, err := adapter.Plan(context.Background(), config.Defaults())

	var cfgErr *config.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestSweepAdapter_Run(t *testing.T) {
	service := &mockSweepService{
		runFn: func(ctx context.Context, req primary.SweepRequest, progress primary.ProgressReporter) (*primary.SweepReport, error) {
			progress.Start(len(testResults))
			for _, r := range testResults {
				progress.EntryStarted(&r.PlannedEntry)
				progress.EntryFinished(r)
			}
			progress.Finish()
			return &primary.SweepReport{
				Sweep: &primary.SweepSummary{
					ID: "0f8c", Workspace: "/ws", Total: 3, Succeeded: 1, Failed: 1, Skipped: 1,
				},
				Results: testResults,
			}, nil
		},
	}
	var out, bar bytes.Buffer
	adapter := NewSweepAdapter(service, &out, &bar)

	_, err := adapter.Run(context.Background(), config.Defaults(), true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !service.lastRunReq.Record {
		t.Error("expected Record to be passed through")
	}

	output := out.String()
	for _, want := range []string{
		"✓ 31 iteration 1",
		"✗ 31 iteration 2: optimizer exited with status 1 (/ws/31/logs/stderr_2.txt)",
		"- 31 iteration 3 skipped: iteration 2 of dataset 31 failed",
		"Sweep 0f8c: 3 run(s), 1 succeeded, 1 failed, 1 skipped",
		"automl runs show 0f8c --workspace /ws",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if bar.Len() == 0 {
		t.Error("expected progress bar output")
	}
}

func TestSweepAdapter_RunInterrupted(t *testing.T) {
	service := &mockSweepService{
		runFn: func(ctx context.Context, req primary.SweepRequest, progress primary.ProgressReporter) (*primary.SweepReport, error) {
			return &primary.SweepReport{
				Sweep: &primary.SweepSummary{ID: "0f8c", Total: 3, Succeeded: 1},
			}, context.Canceled
		},
	}
	var out bytes.Buffer
	adapter := NewSweepAdapter(service, &out, nil)

	_, err := adapter.Run(context.Background(), config.Defaults(), false)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	output := out.String()
	if !strings.Contains(output, "2 run(s) not started") {
		t.Errorf("output missing unfinished count:\n%s", output)
	}
	if strings.Contains(output, "automl runs show") {
		t.Errorf("unrecorded sweep should not point at the ledger:\n%s", output)
	}
}

func TestSweepAdapter_FilterDatasets(t *testing.T) {
	service := &mockSweepService{
		filterFn: func(ctx context.Context, req primary.FilterDatasetsRequest) ([]string, error) {
			return []string{"3", "29"}, nil
		},
	}
	var out bytes.Buffer
	adapter := NewSweepAdapter(service, &out, nil)

	kept, err := adapter.FilterDatasets(context.Background(), "suite.csv", []string{"3", "29", "1590"})
	if err != nil {
		t.Fatalf("FilterDatasets failed: %v", err)
	}
	if len(kept) != 2 {
		t.Errorf("expected 2 datasets, got %v", kept)
	}
	if out.String() != "3\n29\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	if service.lastFilterReq.TablePath != "suite.csv" || len(service.lastFilterReq.Candidates) != 3 {
		t.Errorf("unexpected request %+v", service.lastFilterReq)
	}
}

func TestSweepAdapter_ListRuns(t *testing.T) {
	tests := []struct {
		name   string
		sweeps []*primary.SweepSummary
		want   []string
	}{
		{
			name: "with sweeps",
			sweeps: []*primary.SweepSummary{
				{ID: "0f8c", StartedAt: "2024-05-01T12:00:00Z", Version: "1.0", Datasets: []string{"31", "179"}, Succeeded: 5, Failed: 1},
			},
			want: []string{"ID", "0f8c", "2024-05-01T12:00:00Z", "31,179"},
		},
		{
			name: "empty",
			want: []string{"No sweeps recorded.", "automl run --workspace /ws"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockSweepService{
				listFn: func(ctx context.Context, workspace string, limit int) ([]*primary.SweepSummary, error) {
					return tt.sweeps, nil
				},
			}
			var out bytes.Buffer
			adapter := NewSweepAdapter(service, &out, nil)

			if _, err := adapter.ListRuns(context.Background(), "/ws", 20); err != nil {
				t.Fatalf("ListRuns failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestSweepAdapter_ShowRun(t *testing.T) {
	service := &mockSweepService{
		getFn: func(ctx context.Context, workspace, id string) (*primary.SweepSummary, []*primary.EntryResult, error) {
			return &primary.SweepSummary{ID: id, Version: "1.0", Datasets: []string{"31"}, Iterations: 3}, testResults, nil
		},
	}
	var out bytes.Buffer
	adapter := NewSweepAdapter(service, &out, nil)

	if _, err := adapter.ShowRun(context.Background(), "/ws", "0f8c"); err != nil {
		t.Fatalf("ShowRun failed: %v", err)
	}

	output := out.String()
	for _, want := range []string{"Sweep: 0f8c", "Finished:   (unfinished)", "✗ 31 iteration 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestSweepAdapter_ShowRunNotFound(t *testing.T) {
	service := &mockSweepService{
		getFn: func(ctx context.Context, workspace, id string) (*primary.SweepSummary, []*primary.EntryResult, error) {
			return nil, nil, errors.New("sweep missing not found")
		},
	}
	adapter := NewSweepAdapter(service, &bytes.Buffer{}, nil)

	_, err := adapter.ShowRun(context.Background(), "/ws", "missing")
	if err == nil || !strings.Contains(err.Error(), "failed to get sweep") {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
