package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

func TestLoadCSV(t *testing.T) {
	input := strings.Join([]string{
		`Unique Key,Created Date,Borough,Complaint Type`,
		`1001,03/15/2014 10:00:00 AM,BRONX,Rodent`,
		`1002,,"STATEN ISLAND","Noise - Residential"`,
	}, "\n")

	rows, err := LoadCSV(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1001", rows[0].Value(model.ColUniqueKey))
	assert.Equal(t, "03/15/2014 10:00:00 AM", rows[0].Value(model.ColCreatedDate))
	assert.Equal(t, "BRONX", rows[0].Value(model.ColBorough))

	assert.Equal(t, "", rows[1].Value(model.ColCreatedDate))
	assert.Equal(t, "STATEN ISLAND", rows[1].Value(model.ColBorough))
	assert.Equal(t, "Noise - Residential", rows[1].Value(model.ColComplaintType))
}

func TestLoadCSVPadsShortRows(t *testing.T) {
	input := strings.Join([]string{
		`Unique Key,Created Date,Borough`,
		`1001,03/15/2014 10:00:00 AM`,
	}, "\n")

	rows, err := LoadCSV(strings.NewReader(input), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.True(t, rows[0].Has(model.ColBorough))
	assert.Equal(t, "", rows[0].Value(model.ColBorough))
}

func TestLoadCSVEmptyInput(t *testing.T) {
	_, err := LoadCSV(strings.NewReader(""), zap.NewNop())
	require.Error(t, err)
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	rows, err := LoadCSV(strings.NewReader("Unique Key,Borough\n"), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadCSVFileMissing(t *testing.T) {
	_, err := LoadCSVFile("/nonexistent/extract.csv", zap.NewNop())
	require.Error(t, err)
}
