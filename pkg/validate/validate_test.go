package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

func TestCompute(t *testing.T) {
	lat := 40.71
	lon := -74.0

	tests := []struct {
		name      string
		raw       model.RawRecord
		borough   model.Borough
		latitude  *float64
		longitude *float64
		want      Flags
	}{
		{
			name: "fully valid record",
			raw: model.RawRecord{
				model.ColCreatedDate: "03/15/2014 10:00:00 AM",
				model.ColClosedDate:  "03/16/2014 10:00:00 AM",
			},
			borough:   model.BoroughBronx,
			latitude:  &lat,
			longitude: &lon,
			want: Flags{
				HasValidBorough:     true,
				HasValidCoordinates: true,
				HasValidCreatedDate: true,
				HasClosedDate:       true,
			},
		},
		{
			name:    "absent borough fails the flag",
			raw:     model.RawRecord{},
			borough: model.BoroughNone,
			want:    Flags{},
		},
		{
			name:    "unknown passthrough borough is not canonical",
			raw:     model.RawRecord{},
			borough: model.Borough("YONKERS"),
			want:    Flags{},
		},
		{
			name:     "one dropped coordinate fails the pair flag",
			raw:      model.RawRecord{},
			borough:  model.BoroughQueens,
			latitude: &lat,
			want:     Flags{HasValidBorough: true},
		},
		{
			name: "whitespace-only closed date is absent",
			raw: model.RawRecord{
				model.ColClosedDate: "   ",
			},
			borough: model.BoroughQueens,
			want:    Flags{HasValidBorough: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.raw, tt.borough, tt.latitude, tt.longitude)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The created-date flag reflects whether the source supplied a value at
// all, independent of whether that value parsed. A malformed timestamp
// therefore yields a nil CreatedAt but a true flag.
func TestCreatedDateFlagMeasuresPresence(t *testing.T) {
	raw := model.RawRecord{
		model.ColCreatedDate: "definitely not a timestamp",
	}

	flags := Compute(raw, model.BoroughNone, nil, nil)
	assert.True(t, flags.HasValidCreatedDate)
}

func TestApply(t *testing.T) {
	created := time.Date(2014, 3, 15, 10, 0, 0, 0, time.UTC)
	rec := &model.CleanedRecord{
		UniqueKey: "1001",
		CreatedAt: &created,
		Borough:   model.BoroughBrooklyn,
	}
	raw := model.RawRecord{
		model.ColCreatedDate: "03/15/2014 10:00:00 AM",
	}

	Apply(raw, rec)

	assert.True(t, rec.HasValidBorough)
	assert.False(t, rec.HasValidCoordinates)
	assert.True(t, rec.HasValidCreatedDate)
	assert.False(t, rec.HasClosedDate)
}
