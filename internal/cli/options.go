package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/automl/internal/config"
)

// Flag names follow the optimizer's own option names.
const (
	flagConfig            = "config"
	flagFairMode          = "fair-mode"
	flagWorkspace         = "workspace"
	flagMetric            = "metric"
	flagFairMetric        = "fair_metric"
	flagMode              = "mode"
	flagBatchSize         = "batch_size"
	flagTimeBudget        = "time_budget"
	flagVersion           = "version"
	flagIterations        = "iterations"
	flagKB                = "kb"
	flagVolume            = "volume"
	flagMiningTarget      = "mining_target"
	flagDataset           = "dataset"
	flagMetaFeatures      = "meta-features"
	flagSensitiveFeatures = "sensitive-features"
	flagJava              = "java"
	flagKeepGoing         = "keep-going"
)

// addSweepFlags registers the options shared by run and plan.
func addSweepFlags(cmd *cobra.Command) {
	defaults := config.Defaults()
	f := cmd.Flags()

	f.String(flagConfig, "", "YAML file with sweep options (flags override it)")
	f.String(flagFairMode, "", "Fairness mode: 0, 1 or 2 (both sensitive features)")
	f.String(flagWorkspace, "", "Workspace directory, one subdirectory per dataset")
	f.String(flagMetric, "", "Performance metric passed to the optimizer")
	f.String(flagFairMetric, "", "Fairness metric passed to the optimizer")
	f.String(flagMode, "", "Optimizer mode")
	f.String(flagBatchSize, "", "Optimizer batch size")
	f.String(flagTimeBudget, "", "Optimizer time budget in seconds")
	f.String(flagVersion, "", "Optimizer version, selects hamlet-<version>-all.jar")
	f.Int(flagIterations, 0, "Iterations per dataset")
	f.String(flagKB, "", "Base rule file")
	f.String(flagVolume, "", "Data volume passed to the optimizer")
	f.String(flagMiningTarget, "", "Keep only mined rules ending with this text (default keeps all)")
	f.StringSlice(flagDataset, defaults.Datasets, "Dataset IDs to sweep, in order")
	f.String(flagMetaFeatures, defaults.MetaFeatures, "Meta-feature table; empty disables iteration-0 constraints")
	f.String(flagSensitiveFeatures, "", "YAML table of sensitive features (default: built-in table)")
	f.String(flagJava, defaults.Java, "Java executable")
	f.Bool(flagKeepGoing, false, "Run later iterations of a dataset after the optimizer exits non-zero")
}

// resolveOptions builds options from --config, then applies every flag set on
// the command line. Workspace and file paths are made absolute.
func resolveOptions(cmd *cobra.Command) (config.Options, error) {
	f := cmd.Flags()

	opts := config.Defaults()
	if path, _ := f.GetString(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{flagFairMode, &opts.FairMode},
		{flagWorkspace, &opts.Workspace},
		{flagMetric, &opts.Metric},
		{flagFairMetric, &opts.FairMetric},
		{flagMode, &opts.Mode},
		{flagBatchSize, &opts.BatchSize},
		{flagTimeBudget, &opts.TimeBudget},
		{flagVersion, &opts.Version},
		{flagKB, &opts.KB},
		{flagVolume, &opts.Volume},
		{flagMiningTarget, &opts.MiningTarget},
		{flagMetaFeatures, &opts.MetaFeatures},
		{flagSensitiveFeatures, &opts.SensitiveFeatures},
		{flagJava, &opts.Java},
	}
	for _, s := range stringFlags {
		if f.Changed(s.name) {
			*s.dst, _ = f.GetString(s.name)
		}
	}
	if f.Changed(flagIterations) {
		opts.Iterations, _ = f.GetInt(flagIterations)
	}
	if f.Changed(flagDataset) {
		opts.Datasets, _ = f.GetStringSlice(flagDataset)
	}
	if f.Changed(flagKeepGoing) {
		opts.KeepGoing, _ = f.GetBool(flagKeepGoing)
	}

	for _, p := range []*string{&opts.Workspace, &opts.KB, &opts.MetaFeatures, &opts.SensitiveFeatures} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return opts, fmt.Errorf("failed to resolve path %s: %w", *p, err)
		}
		*p = abs
	}

	return opts, nil
}
