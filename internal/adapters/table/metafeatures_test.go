package table_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/automl/internal/adapters/table"
)

const extendedTable = `ID,MinorityClassPercentage,NumberOfClasses,NumberOfMissingValues,NumberOfFeatures,NumberOfInstances,NumberOfInstancesWithMissingValues
31,30.0,2,0,21,1000,0
179.0,23.93,2,6465,15,48842,3620
44162,,2,0,9,,
`

func TestParse_ExtendedTable(t *testing.T) {
	records, err := table.Parse(strings.NewReader(extendedTable))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "31", records[0].ID)
	assert.Equal(t, 30.0, records[0].MinorityClassPercentage)
	assert.Equal(t, 21.0, records[0].NumberOfFeatures)

	// Float-typed IDs are normalized
	assert.Equal(t, "179", records[1].ID)
	assert.Equal(t, 6465.0, records[1].NumberOfMissingValues)

	// Empty cells read as zero
	assert.Equal(t, 0.0, records[2].MinorityClassPercentage)
	assert.Equal(t, 0.0, records[2].NumberOfInstances)
}

func TestParse_DidKeyColumn(t *testing.T) {
	in := "did,NumberOfInstances,NumberOfFeatures\n3,3196,37\n6,20000,17\n"

	records, err := table.Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "6", records[1].ID)
	assert.Equal(t, 20000.0, records[1].NumberOfInstances)
}

func TestParse_Errors(t *testing.T) {
	_, err := table.Parse(strings.NewReader(""))
	assert.Error(t, err, "empty input")

	_, err = table.Parse(strings.NewReader("name,NumberOfClasses\nfoo,2\n"))
	assert.ErrorContains(t, err, "no ID or did column")

	_, err = table.Parse(strings.NewReader("ID,NumberOfClasses\n31,two\n"))
	assert.ErrorContains(t, err, "line 2, column NumberOfClasses")
}

func TestMetaFeatureRepository_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.csv")
	require.NoError(t, os.WriteFile(path, []byte(extendedTable), 0644))

	records, err := table.NewMetaFeatureRepository().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = table.NewMetaFeatureRepository().Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
