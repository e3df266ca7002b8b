package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecordValueAndHas(t *testing.T) {
	r := RawRecord{
		ColUniqueKey: "1001",
		ColBorough:   "",
	}

	assert.Equal(t, "1001", r.Value(ColUniqueKey))
	assert.Equal(t, "", r.Value(ColBorough))
	assert.Equal(t, "", r.Value(ColCity))

	assert.True(t, r.Has(ColBorough))
	assert.False(t, r.Has(ColCity))
}

func TestResponseTime(t *testing.T) {
	created := time.Date(2014, 3, 15, 10, 0, 0, 0, time.UTC)
	closed := created.Add(36 * time.Hour)

	t.Run("defined when both present and ordered", func(t *testing.T) {
		rec := CleanedRecord{CreatedAt: &created, ClosedAt: &closed}
		d, ok := rec.ResponseTime()
		require.True(t, ok)
		assert.Equal(t, 36*time.Hour, d)
	})

	t.Run("undefined without a closed date", func(t *testing.T) {
		rec := CleanedRecord{CreatedAt: &created}
		_, ok := rec.ResponseTime()
		assert.False(t, ok)
	})

	t.Run("undefined when closure precedes creation", func(t *testing.T) {
		rec := CleanedRecord{CreatedAt: &closed, ClosedAt: &created}
		_, ok := rec.ResponseTime()
		assert.False(t, ok)
	})
}

func TestBorough(t *testing.T) {
	for _, b := range CanonicalBoroughs {
		assert.True(t, b.IsCanonical(), b.String())
		assert.False(t, b.IsAbsent())
	}

	assert.False(t, BoroughNone.IsCanonical())
	assert.True(t, BoroughNone.IsAbsent())

	// Passthrough values survive normalization but are not canonical.
	assert.False(t, Borough("YONKERS").IsCanonical())
	assert.False(t, Borough("YONKERS").IsAbsent())
}
