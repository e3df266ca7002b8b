package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicdata/nyc311-ingress/pkg/model"
	"github.com/civicdata/nyc311-ingress/pkg/normalize"
)

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	p, err := New(normalize.DefaultRules(), zap.NewNop())
	require.NoError(t, err)
	return p
}

// row builds a raw record with every required column present (empty) and
// the given overrides applied.
func row(key string, overrides map[string]string) model.RawRecord {
	r := make(model.RawRecord, len(model.RequiredColumns))
	for _, col := range model.RequiredColumns {
		r[col] = ""
	}
	r[model.ColUniqueKey] = key
	for col, val := range overrides {
		r[col] = val
	}
	return r
}

func TestRunSchemaViolationIsFatal(t *testing.T) {
	p := newTestPipeline(t)

	bad := model.RawRecord{
		model.ColUniqueKey: "1001",
		// Everything else missing.
	}

	result, err := p.Run(context.Background(), []model.RawRecord{bad})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, IsSchemaError(err))

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Missing, model.ColCreatedDate)
	assert.Contains(t, se.Missing, model.ColBorough)
	assert.NotContains(t, se.Missing, model.ColUniqueKey)
}

func TestRunEmptyBatch(t *testing.T) {
	p := newTestPipeline(t)

	result, err := p.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.Operations)
	assert.Zero(t, result.Summary.Admitted)
}

func TestRunAdmissionFilter(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1001", map[string]string{model.ColCreatedDate: "03/15/2009 10:00:00 AM"}), // before range
		row("1002", map[string]string{model.ColCreatedDate: "03/15/2010 10:00:00 AM"}), // lower bound
		row("1003", map[string]string{model.ColCreatedDate: "03/15/2026 10:00:00 AM"}), // upper bound
		row("1004", map[string]string{model.ColCreatedDate: "03/15/2027 10:00:00 AM"}), // after range
		row("1005", nil), // empty created date is admitted
		row("1006", map[string]string{model.ColCreatedDate: "garbage"}), // unparseable, excluded
	}

	result, err := p.Run(context.Background(), rows)
	require.NoError(t, err)

	keys := recordKeys(result.Records)
	assert.Equal(t, []string{"1002", "1003", "1005"}, keys)
	assert.Equal(t, 3, result.Summary.OutOfRangeDropped)
	assert.Equal(t, 6, result.Summary.RawRows)
	assert.Equal(t, 3, result.Summary.Admitted)
}

func TestRunDeduplicatesBeforeAdmission(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1001", map[string]string{model.ColCreatedDate: "03/15/2014 10:00:00 AM"}),
		row("1001", map[string]string{model.ColCreatedDate: "03/15/2014 10:00:00 AM"}),
		row("1002", nil),
	}

	result, err := p.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Summary.DuplicatesDropped)
	assert.Equal(t, []string{"1001", "1002"}, recordKeys(result.Records))
}

func TestRunOutputIsKeyUniqueAndSorted(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1003", nil),
		row("1001", nil),
		row("1002", nil),
		row("1001", nil),
	}

	result, err := p.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"1001", "1002", "1003"}, recordKeys(result.Records))
}

func TestRunCoordinatePairIsAllOrNothing(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1001", map[string]string{
			model.ColLatitude:  "40.7128",
			model.ColLongitude: "-74.0060",
		}),
		row("1002", map[string]string{
			model.ColLatitude: "40.7128",
			// Longitude missing: latitude must be dropped too.
		}),
	}

	result, err := p.Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, result.Records, 2)

	withPair := result.Records[0]
	require.NotNil(t, withPair.Latitude)
	require.NotNil(t, withPair.Longitude)
	assert.True(t, withPair.HasValidCoordinates)

	halfPair := result.Records[1]
	assert.Nil(t, halfPair.Latitude)
	assert.Nil(t, halfPair.Longitude)
	assert.False(t, halfPair.HasValidCoordinates)
}

func TestRunBoroughNormalization(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1001", map[string]string{model.ColBorough: "the bronx"}),
		row("1002", map[string]string{model.ColBorough: "UNSPECIFIED"}),
		row("1003", map[string]string{model.ColBorough: "KINGS"}),
	}

	result, err := p.Run(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, result.Records, 3)

	assert.Equal(t, model.BoroughBronx, result.Records[0].Borough)
	assert.True(t, result.Records[0].HasValidBorough)
	assert.Equal(t, model.BoroughNone, result.Records[1].Borough)
	assert.False(t, result.Records[1].HasValidBorough)
	assert.Equal(t, model.BoroughBrooklyn, result.Records[2].Borough)
	assert.Equal(t, 2, result.Summary.ValidBorough)
}

func TestRunEmitsCleaningOperations(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1001", map[string]string{
			model.ColBorough:   "kings",
			model.ColLatitude:  "90.0",
			model.ColLongitude: "-74.0",
		}),
	}

	result, err := p.Run(context.Background(), rows)
	require.NoError(t, err)

	// One borough alias op plus two coordinate drop ops.
	require.Len(t, result.Operations, 3)
	assert.Equal(t, 3, result.Summary.CleaningOperations)
	for _, op := range result.Operations {
		assert.Equal(t, "1001", op.RowIdentifier)
	}
}

// Records must be byte-for-byte identical regardless of how many workers
// ran the map step. Operation timestamps differ between runs, so only the
// records and counts are compared.
func TestRunIsWorkerCountIndependent(t *testing.T) {
	rows := make([]model.RawRecord, 0, 50)
	for i := 0; i < 50; i++ {
		rows = append(rows, row(fmt.Sprintf("%04d", i), map[string]string{
			model.ColCreatedDate:   "03/15/2014 10:00:00 AM",
			model.ColBorough:       "queens",
			model.ColComplaintType: "Rodent",
		}))
	}

	var baseline []model.CleanedRecord
	for _, workers := range []int{1, 2, 8} {
		p := newTestPipeline(t).WithWorkerCount(workers)
		result, err := p.Run(context.Background(), rows)
		require.NoError(t, err)

		if baseline == nil {
			baseline = result.Records
			continue
		}
		assert.Equal(t, baseline, result.Records, "workers=%d", workers)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1001", map[string]string{
			model.ColCreatedDate: "03/15/2014 10:00:00 AM",
			model.ColBorough:     "the bronx",
		}),
		row("1002", map[string]string{model.ColBorough: "STATEN ISLAND"}),
	}

	first, err := p.Run(context.Background(), rows)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
}

func TestRunCancelledContextProducesNoPartialOutput(t *testing.T) {
	p := newTestPipeline(t).WithWorkerCount(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []model.RawRecord{row("1001", nil), row("1002", nil)}
	result, err := p.Run(ctx, rows)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunSummaryFlagTotals(t *testing.T) {
	p := newTestPipeline(t)

	rows := []model.RawRecord{
		row("1001", map[string]string{
			model.ColCreatedDate: "03/15/2014 10:00:00 AM",
			model.ColClosedDate:  "03/16/2014 10:00:00 AM",
			model.ColBorough:     "BRONX",
			model.ColLatitude:    "40.7",
			model.ColLongitude:   "-74.0",
		}),
		row("1002", nil),
	}

	result, err := p.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.ValidBorough)
	assert.Equal(t, 1, result.Summary.ValidCoordinates)
	assert.Equal(t, 1, result.Summary.ValidCreatedDate)
	assert.Equal(t, 1, result.Summary.ClosedDate)
	assert.NotEmpty(t, result.Summary.RunID)
	assert.False(t, result.Summary.EndTime.Before(result.Summary.StartTime))
}

func recordKeys(records []model.CleanedRecord) []string {
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		keys = append(keys, rec.UniqueKey)
	}
	return keys
}
