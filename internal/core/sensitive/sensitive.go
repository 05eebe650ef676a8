// Package sensitive resolves which protected attributes the optimizer treats
// as sensitive for a dataset and fairness mode.
package sensitive

import (
	"fmt"
	"sort"
	"strings"
)

// Fairness modes.
const (
	ModeFirst  = "0" // first protected attribute
	ModeSecond = "1" // second protected attribute
	ModeBoth   = "2" // both, joined with "_"
)

// Table maps dataset ID -> fairness mode -> sensitive feature index string.
type Table map[string]map[string]string

// DefaultTable returns the protected attribute indices of the bundled datasets.
func DefaultTable() Table {
	return Table{
		"31":    {ModeFirst: "8", ModeSecond: "12", ModeBoth: "8_12"},
		"44162": {ModeFirst: "0", ModeSecond: "3", ModeBoth: "0_3"},
		"179":   {ModeFirst: "9", ModeSecond: "8", ModeBoth: "8_9"},
	}
}

// LookupError reports a dataset or fairness mode missing from the table.
type LookupError struct {
	Dataset string
	Mode    string
	Reason  string
}

func (e *LookupError) Error() string {
	return e.Reason
}

// Resolver looks up sensitive features in an injected table.
type Resolver struct {
	table Table
}

// NewResolver creates a Resolver over table.
func NewResolver(table Table) *Resolver {
	return &Resolver{table: table}
}

// Resolve returns the sensitive feature spec for a dataset and fairness mode.
// Unknown datasets or modes fail with *LookupError.
func (r *Resolver) Resolve(dataset, mode string) (string, error) {
	modes, ok := r.table[dataset]
	if !ok {
		return "", &LookupError{
			Dataset: dataset,
			Mode:    mode,
			Reason:  fmt.Sprintf("no sensitive features known for dataset %s (known: %s)", dataset, strings.Join(r.Datasets(), ", ")),
		}
	}
	features, ok := modes[mode]
	if !ok {
		return "", &LookupError{
			Dataset: dataset,
			Mode:    mode,
			Reason:  fmt.Sprintf("fairness mode %q not defined for dataset %s", mode, dataset),
		}
	}
	return features, nil
}

// Datasets returns the datasets the table knows, sorted.
func (r *Resolver) Datasets() []string {
	ids := make([]string, 0, len(r.table))
	for id := range r.table {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
