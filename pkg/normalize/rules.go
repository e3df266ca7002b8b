// pkg/normalize/rules.go
package normalize

import (
	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// Rules is the immutable cleaning configuration injected into the
// Normalizer. The production tables are fixed; tests substitute their own.
type Rules struct {
	// DateLayout is the source timestamp layout. NYC Open Data exports
	// 12-hour timestamps like "03/15/2014 10:00:00 AM".
	DateLayout string

	// BoroughAliases maps uppercased raw spellings to canonical boroughs.
	BoroughAliases map[string]model.Borough

	// AbsentBoroughValues are uppercased raw spellings treated as null.
	AbsentBoroughValues map[string]struct{}

	// CategoryAllowList holds the high-frequency complaint types that keep
	// their own category; everything else buckets to CategoryOther.
	CategoryAllowList map[string]struct{}

	// NYC bounding box. A coordinate pair is all-or-nothing: if either
	// value is missing, malformed, or out of bounds, both are dropped.
	LatMin, LatMax float64
	LonMin, LonMax float64

	// Admission range for the created-date year. Rows with a non-empty
	// created date outside this range are excluded from the cleaned table
	// entirely.
	MinYear, MaxYear int
}

// CategoryOther is the coarse bucket for complaint types outside the
// allow-list.
const CategoryOther = "Other"

// DefaultRules returns the fixed production cleaning configuration.
func DefaultRules() Rules {
	return Rules{
		DateLayout: "01/02/2006 03:04:05 PM",

		BoroughAliases: map[string]model.Borough{
			"BRONX":         model.BoroughBronx,
			"THE BRONX":     model.BoroughBronx,
			"BROOKLYN":      model.BoroughBrooklyn,
			"KINGS":         model.BoroughBrooklyn,
			"MANHATTAN":     model.BoroughManhattan,
			"NEW YORK":      model.BoroughManhattan,
			"QUEENS":        model.BoroughQueens,
			"STATEN ISLAND": model.BoroughStatenIsland,
			"RICHMOND":      model.BoroughStatenIsland,
		},

		AbsentBoroughValues: map[string]struct{}{
			"":            {},
			"NULL":        {},
			"UNSPECIFIED": {},
		},

		CategoryAllowList: toSet([]string{
			"Noise - Residential",
			"HEAT/HOT WATER",
			"Illegal Parking",
			"Blocked Driveway",
			"Street Condition",
			"Street Light Condition",
			"UNSANITARY CONDITION",
			"Water System",
			"Noise",
			"Noise - Street/Sidewalk",
			"Noise - Commercial",
			"PLUMBING",
			"PAINT/PLASTER",
			"Rodent",
			"Traffic Signal Condition",
			"Sanitation Condition",
		}),

		LatMin: 40.4,
		LatMax: 40.95,
		LonMin: -74.3,
		LonMax: -73.6,

		MinYear: 2010,
		MaxYear: 2026,
	}
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
