// pkg/model/borough.go
package model

// Borough is a normalized borough value. The empty string means absent:
// the raw value was empty, null, or UNSPECIFIED.
type Borough string

const (
	BoroughNone         Borough = ""
	BoroughBronx        Borough = "BRONX"
	BoroughBrooklyn     Borough = "BROOKLYN"
	BoroughManhattan    Borough = "MANHATTAN"
	BoroughQueens       Borough = "QUEENS"
	BoroughStatenIsland Borough = "STATEN ISLAND"
)

// CanonicalBoroughs lists the five fixed NYC borough values.
var CanonicalBoroughs = []Borough{
	BoroughBronx,
	BoroughBrooklyn,
	BoroughManhattan,
	BoroughQueens,
	BoroughStatenIsland,
}

// IsCanonical reports whether b is one of the five fixed borough values.
// Unknown non-empty values can pass through normalization uppercased, so
// presence alone does not imply validity.
func (b Borough) IsCanonical() bool {
	switch b {
	case BoroughBronx, BoroughBrooklyn, BoroughManhattan, BoroughQueens, BoroughStatenIsland:
		return true
	default:
		return false
	}
}

// IsAbsent reports whether the borough could not be normalized to any value.
func (b Borough) IsAbsent() bool {
	return b == BoroughNone
}

func (b Borough) String() string {
	return string(b)
}
