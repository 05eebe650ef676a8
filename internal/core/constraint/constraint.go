// Package constraint contains the pure logic that turns dataset meta-features
// into structural facts for the optimizer's guard file.
package constraint

import "strings"

// HighDimensionalityThreshold is the feature count above which a dataset is high dimensional.
const HighDimensionalityThreshold = 25

// unbalancedFactor scales the uniform class share; a minority class below
// (1/classes)/unbalancedFactor marks the dataset unbalanced.
const unbalancedFactor = 1.5

// MetaFeatures holds the statistical properties of one dataset.
type MetaFeatures struct {
	ID                                 string
	MinorityClassPercentage            float64
	NumberOfClasses                    float64
	NumberOfMissingValues              float64
	NumberOfFeatures                   float64
	NumberOfInstances                  float64
	NumberOfInstancesWithMissingValues float64
}

// Fact is a named boolean proposition with its rule label.
type Fact struct {
	Label   string // mc0, mc1, mc2
	Name    string // unbalanced_dataset, missing_values, high_dimensionality
	Negated bool
}

// Fact names.
const (
	FactUnbalanced         = "unbalanced_dataset"
	FactMissingValues      = "missing_values"
	FactHighDimensionality = "high_dimensionality"
)

// Rule renders the fact as a guard rule line, without the trailing newline.
func (f Fact) Rule() string {
	name := f.Name
	if f.Negated {
		name = "-" + name
	}
	return f.Label + " :=> " + name + "."
}

// Derive maps meta-features to constraint facts.
// missing_values is always present (negated when there are none);
// the other two facts appear only when they hold.
func Derive(mf MetaFeatures) []Fact {
	facts := make([]Fact, 0, 3)

	if IsUnbalanced(mf) {
		facts = append(facts, Fact{Label: "mc0", Name: FactUnbalanced})
	}

	facts = append(facts, Fact{
		Label:   "mc1",
		Name:    FactMissingValues,
		Negated: mf.NumberOfMissingValues <= 0,
	})

	if mf.NumberOfFeatures > HighDimensionalityThreshold {
		facts = append(facts, Fact{Label: "mc2", Name: FactHighDimensionality})
	}

	return facts
}

// IsUnbalanced reports whether the minority class share is below two thirds
// of the uniform share. Datasets without a class count are never unbalanced.
func IsUnbalanced(mf MetaFeatures) bool {
	if mf.NumberOfClasses <= 0 {
		return false
	}
	return mf.MinorityClassPercentage < (1/mf.NumberOfClasses)/unbalancedFactor
}

// Render joins facts into guard text, one newline-terminated rule per fact.
func Render(facts []Fact) string {
	var b strings.Builder
	for _, f := range facts {
		b.WriteString(f.Rule())
		b.WriteByte('\n')
	}
	return b.String()
}
