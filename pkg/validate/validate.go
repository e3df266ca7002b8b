// pkg/validate/validate.go

// Package validate computes per-record quality flags from normalizer
// outputs and raw presence checks. It never alters field values: flags
// signal validity without removing data.
package validate

import (
	"strings"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// Flags is the set of boolean quality flags attached to every cleaned
// record.
type Flags struct {
	HasValidBorough     bool
	HasValidCoordinates bool
	HasValidCreatedDate bool
	HasClosedDate       bool
}

// Compute derives the quality flags for one record.
//
// HasValidCreatedDate measures presence, not parseability: it is true
// whenever the raw created-date string is non-empty, even if the date
// failed to parse. This looseness is carried over from the source rules
// intentionally; TestCreatedDateFlagMeasuresPresence pins it down.
func Compute(raw model.RawRecord, borough model.Borough, latitude, longitude *float64) Flags {
	return Flags{
		HasValidBorough:     borough.IsCanonical(),
		HasValidCoordinates: latitude != nil && longitude != nil,
		HasValidCreatedDate: present(raw.Value(model.ColCreatedDate)),
		HasClosedDate:       present(raw.Value(model.ColClosedDate)),
	}
}

// Apply computes the flags and writes them onto the cleaned record.
func Apply(raw model.RawRecord, rec *model.CleanedRecord) {
	flags := Compute(raw, rec.Borough, rec.Latitude, rec.Longitude)
	rec.HasValidBorough = flags.HasValidBorough
	rec.HasValidCoordinates = flags.HasValidCoordinates
	rec.HasValidCreatedDate = flags.HasValidCreatedDate
	rec.HasClosedDate = flags.HasClosedDate
}

func present(raw string) bool {
	return strings.TrimSpace(raw) != ""
}
