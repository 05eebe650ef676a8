// Package table reads dataset meta-feature tables from CSV files.
package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/example/automl/internal/ports/secondary"
)

// Column names of the meta-feature tables.
const (
	ColumnID                                 = "ID"
	ColumnDID                                = "did"
	ColumnMinorityClassPercentage            = "MinorityClassPercentage"
	ColumnNumberOfClasses                    = "NumberOfClasses"
	ColumnNumberOfMissingValues              = "NumberOfMissingValues"
	ColumnNumberOfFeatures                   = "NumberOfFeatures"
	ColumnNumberOfInstances                  = "NumberOfInstances"
	ColumnNumberOfInstancesWithMissingValues = "NumberOfInstancesWithMissingValues"
)

// MetaFeatureRepository implements secondary.MetaFeatureRepository over CSV files.
type MetaFeatureRepository struct{}

// NewMetaFeatureRepository creates a new CSV meta-feature repository.
func NewMetaFeatureRepository() *MetaFeatureRepository {
	return &MetaFeatureRepository{}
}

// Load reads every row of the CSV table at path.
func (r *MetaFeatureRepository) Load(ctx context.Context, path string) ([]*secondary.MetaFeatureRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open meta-feature table: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// Parse reads a meta-feature table. The key column is ID, or did when ID is absent.
// Missing numeric columns and empty cells read as 0.
func Parse(in io.Reader) ([]*secondary.MetaFeatureRecord, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty table")
	}
	if err != nil {
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	keyColumn, ok := columns[ColumnID]
	if !ok {
		keyColumn, ok = columns[ColumnDID]
	}
	if !ok {
		return nil, fmt.Errorf("no %s or %s column", ColumnID, ColumnDID)
	}

	var records []*secondary.MetaFeatureRecord
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		id := normalizeID(cell(row, keyColumn))
		if id == "" {
			continue
		}

		record := &secondary.MetaFeatureRecord{ID: id}
		fields := []struct {
			column string
			dest   *float64
		}{
			{ColumnMinorityClassPercentage, &record.MinorityClassPercentage},
			{ColumnNumberOfClasses, &record.NumberOfClasses},
			{ColumnNumberOfMissingValues, &record.NumberOfMissingValues},
			{ColumnNumberOfFeatures, &record.NumberOfFeatures},
			{ColumnNumberOfInstances, &record.NumberOfInstances},
			{ColumnNumberOfInstancesWithMissingValues, &record.NumberOfInstancesWithMissingValues},
		}
		for _, field := range fields {
			idx, ok := columns[field.column]
			if !ok {
				continue
			}
			value, err := parseNumber(cell(row, idx))
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, field.column, err)
			}
			*field.dest = value
		}

		records = append(records, record)
	}

	return records, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNumber(s string) (float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// normalizeID turns "31.0" into "31" so float-typed ID columns match dataset IDs.
func normalizeID(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// Ensure MetaFeatureRepository implements the interface
var _ secondary.MetaFeatureRepository = (*MetaFeatureRepository)(nil)
