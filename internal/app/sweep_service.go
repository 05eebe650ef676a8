package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/automl/internal/config"
	"github.com/example/automl/internal/core/constraint"
	"github.com/example/automl/internal/core/sensitive"
	"github.com/example/automl/internal/core/sweep"
	"github.com/example/automl/internal/ctxutil"
	"github.com/example/automl/internal/ports/primary"
	"github.com/example/automl/internal/ports/secondary"
)

// SweepServiceImpl implements the SweepService interface.
type SweepServiceImpl struct {
	metaRepo secondary.MetaFeatureRepository
	store    secondary.ArtifactStore
	launcher secondary.ProcessLauncher
	ledgers  secondary.LedgerProvider
	executor EffectExecutor
	logger   *zap.Logger
	now      func() time.Time
}

// NewSweepService creates a new SweepService with injected dependencies.
func NewSweepService(
	metaRepo secondary.MetaFeatureRepository,
	store secondary.ArtifactStore,
	launcher secondary.ProcessLauncher,
	ledgers secondary.LedgerProvider,
	executor EffectExecutor,
	logger *zap.Logger,
) *SweepServiceImpl {
	return &SweepServiceImpl{
		metaRepo: metaRepo,
		store:    store,
		launcher: launcher,
		ledgers:  ledgers,
		executor: executor,
		logger:   logger,
		now:      time.Now,
	}
}

// PlanSweep validates the options and returns the planned entries.
// Nothing is written: directories and knowledge bases are left untouched.
func (s *SweepServiceImpl) PlanSweep(ctx context.Context, req primary.SweepRequest) (*primary.SweepPlan, error) {
	plan, err := s.buildPlan(ctx, req.Options)
	if err != nil {
		return nil, err
	}

	result := &primary.SweepPlan{Entries: make([]*primary.PlannedEntry, 0, len(plan.Entries))}
	for _, e := range plan.Entries {
		result.Entries = append(result.Entries, toPlannedEntry(e))
	}
	return result, nil
}

// RunSweep plans the sweep and runs every entry. Each entry creates its own
// directories, so a workspace problem only fails the affected dataset.
func (s *SweepServiceImpl) RunSweep(ctx context.Context, req primary.SweepRequest, progress primary.ProgressReporter) (*primary.SweepReport, error) {
	opts := req.Options
	plan, err := s.buildPlan(ctx, opts)
	if err != nil {
		return nil, err
	}

	if err := s.executor.Execute(ctx, plan.Effects()); err != nil {
		return nil, err
	}
	if path, err := config.Save(opts); err != nil {
		s.logger.Warn("could not save sweep options", zap.Error(err))
	} else {
		s.logger.Debug("sweep options saved", zap.String("path", path))
	}

	summary := &primary.SweepSummary{
		ID:         uuid.NewString(),
		Workspace:  opts.Workspace,
		Version:    opts.Version,
		Iterations: opts.Iterations,
		Datasets:   append([]string(nil), opts.Datasets...),
		Total:      len(plan.Entries),
		StartedAt:  s.timestamp(),
	}

	var ledger secondary.SweepLedger
	if req.Record {
		ledger = s.openLedger(ctx, summary)
		if ledger != nil {
			defer ledger.Close()
		}
	}

	s.logger.Info("sweep started",
		zap.String("sweep", summary.ID),
		zap.Int("entries", summary.Total),
		zap.Strings("datasets", summary.Datasets),
		zap.Int("iterations", summary.Iterations))

	recorder := &sweepRecorder{
		service:  s,
		sweepID:  summary.ID,
		ledger:   ledger,
		progress: progress,
	}
	if progress != nil {
		progress.Start(len(plan.Entries))
	}

	runner := NewExperimentRunner(
		s.executor,
		NewKnowledgeBaseService(s.store),
		s.store,
		s.launcher,
		s.logger,
		sweep.SkipPolicy{KeepGoing: opts.KeepGoing},
	)
	_, runErr := runner.Run(ctxutil.WithSweepID(ctx, summary.ID), plan.Entries, recorder)

	if progress != nil {
		progress.Finish()
	}

	summary.Succeeded = recorder.tally.Succeeded
	summary.Failed = recorder.tally.Failed
	summary.Skipped = recorder.tally.Skipped
	summary.FinishedAt = s.timestamp()

	if ledger != nil {
		if err := ledger.FinishSweep(context.WithoutCancel(ctx), toSweepRecord(summary)); err != nil {
			s.logger.Warn("could not record sweep result", zap.Error(err))
		}
	}

	s.logger.Info("sweep finished",
		zap.String("sweep", summary.ID),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))

	report := &primary.SweepReport{Sweep: summary, Results: recorder.results}
	if runErr != nil {
		return report, runErr
	}
	return report, nil
}

// FilterDatasets keeps the candidates that pass pre-screening, in table order.
func (s *SweepServiceImpl) FilterDatasets(ctx context.Context, req primary.FilterDatasetsRequest) ([]string, error) {
	table, err := s.loadMetaFeatures(ctx, req.TablePath)
	if err != nil {
		return nil, err
	}

	rows := table.List()
	candidates := req.Candidates
	if len(candidates) == 0 {
		for _, mf := range rows {
			candidates = append(candidates, mf.ID)
		}
	}

	return constraint.FilterDatasets(candidates, rows), nil
}

// ListSweeps lists recorded sweeps of a workspace, newest first.
func (s *SweepServiceImpl) ListSweeps(ctx context.Context, workspace string, limit int) ([]*primary.SweepSummary, error) {
	ledger, err := s.ledgers.Open(ctx, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer ledger.Close()

	records, err := ledger.ListSweeps(ctx, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*primary.SweepSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, toSweepSummary(r))
	}
	return summaries, nil
}

// GetSweep returns a recorded sweep and its entry results.
func (s *SweepServiceImpl) GetSweep(ctx context.Context, workspace, sweepID string) (*primary.SweepSummary, []*primary.EntryResult, error) {
	ledger, err := s.ledgers.Open(ctx, workspace)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer ledger.Close()

	record, err := ledger.GetSweep(ctx, sweepID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := ledger.ListEntries(ctx, sweepID)
	if err != nil {
		return nil, nil, err
	}

	results := make([]*primary.EntryResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, fromEntryRecord(e))
	}
	return toSweepSummary(record), results, nil
}

// buildPlan validates options, resolves every dataset's inputs and generates the plan.
// Configuration errors surface here, before anything is written or spawned.
func (s *SweepServiceImpl) buildPlan(ctx context.Context, opts config.Options) (sweep.Plan, error) {
	if err := opts.Validate(); err != nil {
		return sweep.Plan{}, err
	}

	resolver, err := s.resolver(opts)
	if err != nil {
		return sweep.Plan{}, err
	}

	sensitiveFeatures := make([]string, 0, len(opts.Datasets))
	for _, id := range opts.Datasets {
		features, err := resolver.Resolve(id, opts.FairMode)
		if err != nil {
			return sweep.Plan{}, &config.ConfigurationError{Key: "fair-mode", Reason: err.Error()}
		}
		sensitiveFeatures = append(sensitiveFeatures, features)
	}

	metaFeatures, err := s.loadMetaFeatures(ctx, opts.MetaFeatures)
	if err != nil {
		return sweep.Plan{}, err
	}

	input := sweep.PlanInput{
		Workspace:     opts.Workspace,
		BaseRulesPath: opts.KB,
		Iterations:    opts.Iterations,
		MiningTarget:  opts.MiningTarget,
		Optimizer: sweep.OptimizerSettings{
			Java:       opts.Java,
			Version:    opts.Version,
			Metric:     opts.Metric,
			FairMetric: opts.FairMetric,
			Mode:       opts.Mode,
			BatchSize:  opts.BatchSize,
			TimeBudget: opts.TimeBudget,
			Volume:     opts.Volume,
		},
	}
	for i, id := range opts.Datasets {
		ds := sweep.DatasetInput{ID: id, SensitiveFeatures: sensitiveFeatures[i]}
		if mf, ok := metaFeatures.Get(id); ok {
			ds.MetaFeatures = &mf
		}
		input.Datasets = append(input.Datasets, ds)
	}

	return sweep.GeneratePlan(input), nil
}

func (s *SweepServiceImpl) resolver(opts config.Options) (*sensitive.Resolver, error) {
	if opts.SensitiveFeatures == "" {
		return sensitive.NewResolver(sensitive.DefaultTable()), nil
	}
	table, err := config.LoadSensitiveFeatures(opts.SensitiveFeatures)
	if err != nil {
		return nil, err
	}
	return sensitive.NewResolver(sensitive.Table(table)), nil
}

// loadMetaFeatures reads the table at path. An empty path means no table:
// every dataset falls back to the base rules at iteration 0.
func (s *SweepServiceImpl) loadMetaFeatures(ctx context.Context, path string) (*constraint.Table, error) {
	if path == "" {
		return constraint.NewTable(nil), nil
	}

	records, err := s.metaRepo.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	rows := make([]constraint.MetaFeatures, 0, len(records))
	for _, r := range records {
		rows = append(rows, toMetaFeatures(r))
	}
	return constraint.NewTable(rows), nil
}

func (s *SweepServiceImpl) openLedger(ctx context.Context, summary *primary.SweepSummary) secondary.SweepLedger {
	ledger, err := s.ledgers.Open(ctx, summary.Workspace)
	if err != nil {
		s.logger.Warn("ledger unavailable, sweep will not be recorded", zap.Error(err))
		return nil
	}
	if err := ledger.CreateSweep(ctx, toSweepRecord(summary)); err != nil {
		s.logger.Warn("could not record sweep, sweep will not be recorded", zap.Error(err))
		ledger.Close()
		return nil
	}
	return ledger
}

func (s *SweepServiceImpl) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// sweepRecorder forwards runner events to the progress reporter and ledger.
type sweepRecorder struct {
	service  *SweepServiceImpl
	sweepID  string
	ledger   secondary.SweepLedger
	progress primary.ProgressReporter
	tally    sweep.Tally
	results  []*primary.EntryResult
}

func (r *sweepRecorder) EntryStarted(seq int, entry sweep.Entry) {
	if r.progress != nil {
		r.progress.EntryStarted(toPlannedEntry(entry))
	}
}

func (r *sweepRecorder) EntryFinished(seq int, entry sweep.Entry, outcome sweep.Outcome, startedAt, finishedAt time.Time) {
	r.tally.Add(outcome)

	result := &primary.EntryResult{
		PlannedEntry: *toPlannedEntry(entry),
		Status:       string(outcome.Status),
		Phase:        string(outcome.Phase),
		Reason:       outcome.Reason,
		ExitCode:     outcome.ExitCode,
		StartedAt:    startedAt.UTC().Format(time.RFC3339),
		FinishedAt:   finishedAt.UTC().Format(time.RFC3339),
	}
	r.results = append(r.results, result)

	if r.ledger != nil {
		if err := r.ledger.RecordEntry(context.Background(), toEntryRecord(r.sweepID, seq, result)); err != nil {
			r.service.logger.Warn("could not record entry", zap.String("dataset", entry.Dataset), zap.Error(err))
		}
	}
	if r.progress != nil {
		r.progress.EntryFinished(result)
	}
}

// Helper conversion functions

func toPlannedEntry(e sweep.Entry) *primary.PlannedEntry {
	return &primary.PlannedEntry{
		Dataset:     e.Dataset,
		Iteration:   e.Iteration,
		InputPath:   e.InputPath,
		Preparation: string(e.Preparation.Kind),
		CommandLine: e.Invocation.CommandLine(),
		StdoutPath:  e.Invocation.StdoutPath,
		StderrPath:  e.Invocation.StderrPath,
	}
}

func toMetaFeatures(r *secondary.MetaFeatureRecord) constraint.MetaFeatures {
	return constraint.MetaFeatures{
		ID:                                 r.ID,
		MinorityClassPercentage:            r.MinorityClassPercentage,
		NumberOfClasses:                    r.NumberOfClasses,
		NumberOfMissingValues:              r.NumberOfMissingValues,
		NumberOfFeatures:                   r.NumberOfFeatures,
		NumberOfInstances:                  r.NumberOfInstances,
		NumberOfInstancesWithMissingValues: r.NumberOfInstancesWithMissingValues,
	}
}

func toSweepRecord(s *primary.SweepSummary) *secondary.SweepRecord {
	return &secondary.SweepRecord{
		ID:         s.ID,
		Workspace:  s.Workspace,
		Version:    s.Version,
		Iterations: s.Iterations,
		Datasets:   strings.Join(s.Datasets, ","),
		Total:      s.Total,
		Succeeded:  s.Succeeded,
		Failed:     s.Failed,
		Skipped:    s.Skipped,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}

func toSweepSummary(r *secondary.SweepRecord) *primary.SweepSummary {
	var datasets []string
	if r.Datasets != "" {
		datasets = strings.Split(r.Datasets, ",")
	}
	return &primary.SweepSummary{
		ID:         r.ID,
		Workspace:  r.Workspace,
		Version:    r.Version,
		Iterations: r.Iterations,
		Datasets:   datasets,
		Total:      r.Total,
		Succeeded:  r.Succeeded,
		Failed:     r.Failed,
		Skipped:    r.Skipped,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

func toEntryRecord(sweepID string, seq int, r *primary.EntryResult) *secondary.EntryRecord {
	return &secondary.EntryRecord{
		SweepID:     sweepID,
		Seq:         seq,
		Dataset:     r.Dataset,
		Iteration:   r.Iteration,
		Status:      r.Status,
		Phase:       r.Phase,
		Reason:      r.Reason,
		ExitCode:    r.ExitCode,
		InputPath:   r.InputPath,
		CommandLine: r.CommandLine,
		StdoutPath:  r.StdoutPath,
		StderrPath:  r.StderrPath,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

func fromEntryRecord(e *secondary.EntryRecord) *primary.EntryResult {
	return &primary.EntryResult{
		PlannedEntry: primary.PlannedEntry{
			Dataset:     e.Dataset,
			Iteration:   e.Iteration,
			InputPath:   e.InputPath,
			CommandLine: e.CommandLine,
			StdoutPath:  e.StdoutPath,
			StderrPath:  e.StderrPath,
		},
		Status:     e.Status,
		Phase:      e.Phase,
		Reason:     e.Reason,
		ExitCode:   e.ExitCode,
		StartedAt:  e.StartedAt,
		FinishedAt: e.FinishedAt,
	}
}

// Ensure SweepServiceImpl implements the interface
var _ primary.SweepService = (*SweepServiceImpl)(nil)
