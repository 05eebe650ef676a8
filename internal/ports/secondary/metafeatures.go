// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// MetaFeatureRepository defines the secondary port for dataset meta-feature tables.
type MetaFeatureRepository interface {
	// Load reads every row of the table at path.
	Load(ctx context.Context, path string) ([]*MetaFeatureRecord, error)
}

// MetaFeatureRecord represents one dataset row of a meta-feature table.
type MetaFeatureRecord struct {
	ID                                 string
	MinorityClassPercentage            float64
	NumberOfClasses                    float64
	NumberOfMissingValues              float64
	NumberOfFeatures                   float64
	NumberOfInstances                  float64
	NumberOfInstancesWithMissingValues float64
}
