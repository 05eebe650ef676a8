package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for options the original sweep script hardcoded.
const (
	DefaultMetaFeaturesPath = "resources/extended_meta_features_openml_cc_18.csv"
	DefaultSuitePath        = "resources/dataset-meta-features.csv"
	DefaultJava             = "java"
	StateDirName            = ".automl"
)

// DefaultDatasets is the dataset list swept when none is given.
var DefaultDatasets = []string{"31", "44162", "179"}

// Options is the flat option set of a sweep.
// Field names follow the optimizer's vocabulary; values are passed through verbatim.
type Options struct {
	FairMode     string `yaml:"fair_mode"`
	Workspace    string `yaml:"workspace"`
	Metric       string `yaml:"metric"`
	FairMetric   string `yaml:"fair_metric"`
	Mode         string `yaml:"mode"`
	BatchSize    string `yaml:"batch_size"`
	TimeBudget   string `yaml:"time_budget"`
	Version      string `yaml:"version"`
	Iterations   int    `yaml:"iterations"`
	KB           string `yaml:"kb"`
	Volume       string `yaml:"volume"`
	MiningTarget string `yaml:"mining_target,omitempty"` // empty means no rule filtering

	Datasets          []string `yaml:"datasets,omitempty"`
	MetaFeatures      string   `yaml:"meta_features,omitempty"`
	SensitiveFeatures string   `yaml:"sensitive_features,omitempty"` // YAML table; built-in table when empty
	Java              string   `yaml:"java,omitempty"`
	KeepGoing         bool     `yaml:"keep_going,omitempty"`
}

// Defaults returns Options with every optional field set.
func Defaults() Options {
	return Options{
		Datasets:     append([]string(nil), DefaultDatasets...),
		MetaFeatures: DefaultMetaFeaturesPath,
		Java:         DefaultJava,
	}
}

// ConfigurationError reports a missing or malformed configuration value.
// It is raised before any process is spawned.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// Validate checks that every required option is present and well formed.
// Optimizer arguments such as batch_size are passed through unparsed.
func (o Options) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"fair-mode", o.FairMode},
		{"workspace", o.Workspace},
		{"metric", o.Metric},
		{"fair_metric", o.FairMetric},
		{"mode", o.Mode},
		{"batch_size", o.BatchSize},
		{"time_budget", o.TimeBudget},
		{"version", o.Version},
		{"kb", o.KB},
		{"volume", o.Volume},
	}
	for _, r := range required {
		if r.value == "" {
			return &ConfigurationError{Key: r.key, Reason: "required option not set"}
		}
	}

	if o.Iterations < 1 {
		return &ConfigurationError{Key: "iterations", Reason: fmt.Sprintf("must be at least 1, got %d", o.Iterations)}
	}
	if len(o.Datasets) == 0 {
		return &ConfigurationError{Key: "dataset", Reason: "no datasets to sweep"}
	}
	seen := make(map[string]bool, len(o.Datasets))
	for _, d := range o.Datasets {
		if d == "" {
			return &ConfigurationError{Key: "dataset", Reason: "empty dataset ID"}
		}
		if seen[d] {
			return &ConfigurationError{Key: "dataset", Reason: fmt.Sprintf("dataset %s listed twice", d)}
		}
		seen[d] = true
	}
	return nil
}

// Load reads a YAML options file on top of Defaults.
func Load(path string) (Options, error) {
	opts := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse config: %w", err)
	}
	return opts, nil
}

// Save writes the resolved options to <workspace>/.automl/sweep.yaml so a sweep
// can be reproduced from its workspace alone.
func Save(opts Options) (string, error) {
	dir := filepath.Join(opts.Workspace, StateDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s dir: %w", StateDirName, err)
	}

	data, err := yaml.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "sweep.yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// LogPath returns the structured log file of a workspace.
func LogPath(workspace string) string {
	return filepath.Join(workspace, StateDirName, "sweep.log")
}

// LedgerPath returns the sqlite ledger location for a workspace.
func LedgerPath(workspace string) string {
	return filepath.Join(workspace, StateDirName, "ledger.db")
}

// LoadSensitiveFeatures reads a dataset -> fairness mode -> index table from YAML:
//
//	"31":
//	  "0": "8"
//	  "1": "12"
//	  "2": "8_12"
func LoadSensitiveFeatures(path string) (map[string]map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sensitive feature table: %w", err)
	}

	var table map[string]map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse sensitive feature table: %w", err)
	}
	if len(table) == 0 {
		return nil, &ConfigurationError{Key: "sensitive-features", Reason: fmt.Sprintf("%s defines no datasets", path)}
	}
	return table, nil
}
