package constraint

// Screening limits for candidate datasets.
const (
	MaxMissingValueDensity = 0.1
	MaxMissingRowDensity   = 0.1
	MaxCells               = 5_000_000
)

// ScreenResult represents the outcome of screening one dataset.
type ScreenResult struct {
	Allowed bool
	Reason  string
}

// Screen evaluates whether a dataset is small and complete enough to sweep.
// Rules:
// - missing values per cell must be below 10%
// - rows with missing values must be below 10% of instances
// - instances x features must be below 5,000,000
func Screen(mf MetaFeatures) ScreenResult {
	cells := mf.NumberOfInstances * mf.NumberOfFeatures
	if cells <= 0 || mf.NumberOfInstances <= 0 {
		return ScreenResult{Allowed: false, Reason: "no instances or features recorded"}
	}

	if mf.NumberOfMissingValues/cells >= MaxMissingValueDensity {
		return ScreenResult{Allowed: false, Reason: "missing value density at or above 10%"}
	}

	if mf.NumberOfInstancesWithMissingValues/mf.NumberOfInstances >= MaxMissingRowDensity {
		return ScreenResult{Allowed: false, Reason: "rows with missing values at or above 10%"}
	}

	if cells >= MaxCells {
		return ScreenResult{Allowed: false, Reason: "instances x features at or above 5,000,000"}
	}

	return ScreenResult{Allowed: true}
}

// FilterDatasets keeps the candidate IDs whose meta-features pass Screen,
// in table order. Candidates without a row are dropped.
func FilterDatasets(candidates []string, table []MetaFeatures) []string {
	wanted := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		wanted[id] = true
	}

	var kept []string
	for _, mf := range table {
		if !wanted[mf.ID] {
			continue
		}
		if Screen(mf).Allowed {
			kept = append(kept, mf.ID)
		}
	}
	return kept
}
