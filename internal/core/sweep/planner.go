// Package sweep contains the pure planning logic of an experiment sweep:
// one entry per (dataset, iteration), each pairing an optimizer invocation
// with the preparation that must run right before it.
package sweep

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/example/automl/internal/core/constraint"
	"github.com/example/automl/internal/core/effects"
	"github.com/example/automl/internal/core/knowledge"
)

// Fixed optimizer arguments.
const (
	FixedSeed = "42"
	FixedFlag = "false"
	// StackSize is the JVM thread stack size the optimizer needs.
	StackSize = "-Xss128M"
)

// PreparationKind names what must happen before an invocation.
type PreparationKind string

const (
	// PrepareNone: the input is the caller's base rule file, used as is.
	PrepareNone PreparationKind = "none"
	// PrepareGuard: write base rules + derived constraints to the guard file.
	PrepareGuard PreparationKind = "guard"
	// PrepareIterationKB: write kb_k + filtered rules_k to complete_kb_k.
	PrepareIterationKB PreparationKind = "iteration_kb"
)

// Preparation describes the knowledge-base write for one entry.
// It is data only; the app layer performs it immediately before launch.
type Preparation struct {
	Kind       PreparationKind
	OutputPath string

	// Guard inputs
	BaseRulesPath string
	Facts         []constraint.Fact

	// Iteration inputs
	KBPath       string
	RulesPath    string
	MiningTarget string // empty means keep every rule
}

// Invocation is one optimizer process launch.
// Args are positional; the optimizer has no named arguments.
type Invocation struct {
	Program    string
	Args       []string
	StdoutPath string
	StderrPath string
}

// CommandLine renders the invocation for logs and dry runs.
func (i Invocation) CommandLine() string {
	return strings.Join(append([]string{i.Program}, i.Args...), " ")
}

// Entry is one (dataset, iteration) unit of work.
type Entry struct {
	Dataset     string
	Iteration   int
	DatasetPath string
	InputPath   string
	Directories []effects.FileEffect // created right before Preparation
	Preparation Preparation
	Invocation  Invocation
}

// SetupEffects returns the directory effects the entry needs before it runs.
// They are idempotent, so every entry of a dataset carries its logs dir.
func (e Entry) SetupEffects() []effects.Effect {
	result := make([]effects.Effect, 0, len(e.Directories))
	for _, d := range e.Directories {
		result = append(result, d)
	}
	return result
}

// Number returns the 1-based iteration number used in log file names.
func (e Entry) Number() int {
	return e.Iteration + 1
}

// OptimizerSettings are the run-wide optimizer arguments.
type OptimizerSettings struct {
	Java       string
	Version    string
	Metric     string
	FairMetric string
	Mode       string
	BatchSize  string
	TimeBudget string
	Volume     string
}

// JarName returns the optimizer jar for a version.
func (s OptimizerSettings) JarName() string {
	return fmt.Sprintf("hamlet-%s-all.jar", s.Version)
}

// DatasetInput is pre-fetched data for one dataset.
type DatasetInput struct {
	ID                string
	MetaFeatures      *constraint.MetaFeatures // nil when the dataset is not in the table
	SensitiveFeatures string
}

// PlanInput contains the inputs needed to generate a sweep plan.
// All values are pre-fetched by the caller - no I/O in the planner.
type PlanInput struct {
	Workspace     string
	BaseRulesPath string
	Iterations    int
	MiningTarget  string
	Optimizer     OptimizerSettings
	Datasets      []DatasetInput
}

// Plan represents the planned sweep. Directory effects travel with the
// entries so a failure only affects its own dataset.
type Plan struct {
	Entries []Entry
	LogOps  []effects.LogEffect
}

// Effects returns the effects that run before the first entry.
func (p Plan) Effects() []effects.Effect {
	result := make([]effects.Effect, 0, len(p.LogOps))
	for _, e := range p.LogOps {
		result = append(result, e)
	}
	return result
}

// GeneratePlan creates one entry per (dataset, iteration), datasets in input
// order and iterations ascending within each dataset.
func GeneratePlan(input PlanInput) Plan {
	plan := Plan{
		Entries: make([]Entry, 0, len(input.Datasets)*max(input.Iterations, 0)),
	}

	for _, ds := range input.Datasets {
		datasetPath := knowledge.DatasetPath(input.Workspace, ds.ID)
		logsPath := filepath.Join(datasetPath, knowledge.LogsDir)

		if ds.MetaFeatures == nil && input.Iterations > 0 {
			plan.LogOps = append(plan.LogOps, effects.LogEffect{
				Level:   "warn",
				Message: "dataset not in meta-feature table, iteration 0 uses the base rules unchanged",
				Fields:  map[string]any{"dataset": ds.ID, "kb": input.BaseRulesPath},
			})
		}

		for iteration := 0; iteration < input.Iterations; iteration++ {
			inputPath, prep := ResolveInputPath(datasetPath, iteration, input.BaseRulesPath, ds.MetaFeatures, input.MiningTarget)

			dirs := []effects.FileEffect{mkdir(logsPath)}
			if prep.Kind == PrepareGuard {
				dirs = append(dirs, mkdir(filepath.Dir(prep.OutputPath)))
			}

			entry := Entry{
				Dataset:     ds.ID,
				Iteration:   iteration,
				DatasetPath: datasetPath,
				InputPath:   inputPath,
				Directories: dirs,
				Preparation: prep,
			}
			entry.Invocation = buildInvocation(input.Optimizer, entry, ds.SensitiveFeatures, logsPath)
			plan.Entries = append(plan.Entries, entry)
		}
	}

	return plan
}

// ResolveInputPath returns the knowledge base the optimizer reads for an
// iteration, together with the preparation that produces it.
// Iteration 0 uses the guard file when meta-features are known, otherwise the
// base rule file unchanged. Later iterations use complete_kb_k.
func ResolveInputPath(datasetPath string, iteration int, baseRulesPath string, mf *constraint.MetaFeatures, miningTarget string) (string, Preparation) {
	if iteration == 0 {
		if mf == nil {
			return baseRulesPath, Preparation{Kind: PrepareNone}
		}
		guardPath := knowledge.GuardPath(datasetPath)
		return guardPath, Preparation{
			Kind:          PrepareGuard,
			OutputPath:    guardPath,
			BaseRulesPath: baseRulesPath,
			Facts:         constraint.Derive(*mf),
		}
	}

	kbPath, rulesPath := knowledge.FragmentPaths(datasetPath, iteration)
	outputPath := knowledge.CompleteKBPath(datasetPath, iteration)
	return outputPath, Preparation{
		Kind:         PrepareIterationKB,
		OutputPath:   outputPath,
		KBPath:       kbPath,
		RulesPath:    rulesPath,
		MiningTarget: miningTarget,
	}
}

func mkdir(path string) effects.FileEffect {
	return effects.FileEffect{Operation: "mkdir", Path: path, Mode: 0755}
}

func buildInvocation(opt OptimizerSettings, entry Entry, sensitiveFeatures, logsPath string) Invocation {
	args := []string{
		StackSize,
		"-jar",
		opt.JarName(),
		entry.DatasetPath,
		entry.Dataset,
		opt.Metric,
		opt.FairMetric,
		sensitiveFeatures,
		opt.Mode,
		opt.BatchSize,
		opt.TimeBudget,
		FixedSeed,
		FixedFlag,
		opt.Volume,
		entry.InputPath,
	}

	return Invocation{
		Program:    opt.Java,
		Args:       args,
		StdoutPath: filepath.Join(logsPath, fmt.Sprintf("stdout_%d.txt", entry.Number())),
		StderrPath: filepath.Join(logsPath, fmt.Sprintf("stderr_%d.txt", entry.Number())),
	}
}
