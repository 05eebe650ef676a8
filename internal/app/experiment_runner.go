package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/example/automl/internal/core/sweep"
	"github.com/example/automl/internal/ctxutil"
	"github.com/example/automl/internal/ports/secondary"
)

// EntryObserver is notified as the runner works through a plan.
type EntryObserver interface {
	EntryStarted(seq int, entry sweep.Entry)
	EntryFinished(seq int, entry sweep.Entry, outcome sweep.Outcome, startedAt, finishedAt time.Time)
}

// ExperimentRunner executes plan entries strictly in order, one process at a time.
type ExperimentRunner struct {
	executor EffectExecutor
	preparer Preparer
	store    secondary.ArtifactStore
	launcher secondary.ProcessLauncher
	logger   *zap.Logger
	policy   sweep.SkipPolicy
	now      func() time.Time
}

// NewExperimentRunner creates a new ExperimentRunner.
func NewExperimentRunner(executor EffectExecutor, preparer Preparer, store secondary.ArtifactStore, launcher secondary.ProcessLauncher, logger *zap.Logger, policy sweep.SkipPolicy) *ExperimentRunner {
	return &ExperimentRunner{
		executor: executor,
		preparer: preparer,
		store:    store,
		launcher: launcher,
		logger:   logger,
		policy:   policy,
		now:      time.Now,
	}
}

// Run executes entries in order and returns one outcome per entry.
// Entry failures never stop the sweep; they only skip the rest of the
// failing dataset as the skip policy says. The returned error is non-nil
// only when ctx is cancelled, in which case the remaining entries are abandoned.
func (r *ExperimentRunner) Run(ctx context.Context, entries []sweep.Entry, observer EntryObserver) ([]sweep.Outcome, error) {
	outcomes := make([]sweep.Outcome, 0, len(entries))
	blocked := make(map[string]string) // dataset -> skip reason

	logger := r.logger
	if id := ctxutil.SweepIDFromContext(ctx); id != "" {
		logger = logger.With(zap.String("sweep", id))
	}

	for seq, entry := range entries {
		if err := ctx.Err(); err != nil {
			return outcomes, fmt.Errorf("sweep interrupted before %s iteration %d: %w", entry.Dataset, entry.Number(), err)
		}

		startedAt := r.now()
		if observer != nil {
			observer.EntryStarted(seq, entry)
		}

		var outcome sweep.Outcome
		if reason, ok := blocked[entry.Dataset]; ok {
			outcome = sweep.Skipped(reason)
		} else {
			var err error
			outcome, err = r.runEntry(ctx, logger, entry)
			if err != nil {
				return outcomes, err
			}
		}

		logOutcome(logger, entry, outcome)
		if r.policy.SkipsRemaining(outcome) {
			blocked[entry.Dataset] = fmt.Sprintf("iteration %d of dataset %s failed", entry.Number(), entry.Dataset)
		}

		outcomes = append(outcomes, outcome)
		if observer != nil {
			observer.EntryFinished(seq, entry, outcome, startedAt, r.now())
		}
	}

	return outcomes, nil
}

// runEntry creates the entry's directories, prepares, opens fresh logs and
// launches one entry. It returns an error only when ctx was cancelled during the launch.
func (r *ExperimentRunner) runEntry(ctx context.Context, logger *zap.Logger, entry sweep.Entry) (sweep.Outcome, error) {
	log := logger.With(zap.String("dataset", entry.Dataset), zap.Int("iteration", entry.Number()))

	if err := r.executor.Execute(ctx, entry.SetupEffects()); err != nil {
		return sweep.Failed(sweep.PhasePrepare, err), nil
	}
	if err := r.preparer.Prepare(ctx, entry.Preparation); err != nil {
		return sweep.Failed(sweep.PhasePrepare, err), nil
	}
	log.Debug("knowledge base ready", zap.String("kb", entry.InputPath), zap.String("preparation", string(entry.Preparation.Kind)))

	stdout, err := r.store.CreateLogFile(ctx, entry.Invocation.StdoutPath)
	if err != nil {
		return sweep.Failed(sweep.PhaseLogs, err), nil
	}
	defer closeQuietly(stdout)

	stderr, err := r.store.CreateLogFile(ctx, entry.Invocation.StderrPath)
	if err != nil {
		return sweep.Failed(sweep.PhaseLogs, err), nil
	}
	defer closeQuietly(stderr)

	log.Info("launching optimizer", zap.String("command", entry.Invocation.CommandLine()))
	code, err := r.launcher.Run(ctx, secondary.ProcessSpec{
		Program: entry.Invocation.Program,
		Args:    entry.Invocation.Args,
		Stdout:  stdout,
		Stderr:  stderr,
	})
	if err != nil {
		if ctx.Err() != nil {
			return sweep.Outcome{}, err
		}
		return sweep.Failed(sweep.PhaseLaunch, err), nil
	}
	if code != 0 {
		return sweep.ExitedNonZero(code), nil
	}
	return sweep.Succeeded(), nil
}

func logOutcome(logger *zap.Logger, entry sweep.Entry, outcome sweep.Outcome) {
	fields := []zap.Field{
		zap.String("dataset", entry.Dataset),
		zap.Int("iteration", entry.Number()),
		zap.String("status", string(outcome.Status)),
	}
	switch outcome.Status {
	case sweep.StatusSucceeded:
		logger.Info("entry finished", fields...)
	case sweep.StatusFailed:
		fields = append(fields,
			zap.String("phase", string(outcome.Phase)),
			zap.String("reason", outcome.Reason),
			zap.Int("exit_code", outcome.ExitCode),
			zap.String("stderr", entry.Invocation.StderrPath))
		logger.Warn("entry failed", fields...)
	case sweep.StatusSkipped:
		logger.Warn("entry skipped", append(fields, zap.String("reason", outcome.Reason))...)
	}
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
