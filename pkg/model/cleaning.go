// pkg/model/cleaning.go
package model

import (
	"time"
)

// CleaningOperation records a single field-level normalization decision:
// a value that was rewritten, dropped, or canonicalized on its way into
// the cleaned table. Operations are data-quality signals, never errors.
type CleaningOperation struct {
	ColumnName    string    // Column that was cleaned
	OriginalValue string    // Raw value before cleaning
	NewValue      string    // Value after cleaning (empty when dropped)
	RowIdentifier string    // Unique Key of the affected row
	Operation     string    // Type of cleaning performed (e.g., "borough_normalization")
	Reason        string    // Why it was performed (e.g., "alias_match")
	CleanedAt     time.Time // When the cleaning occurred
}

// Operation names used across the normalizers.
const (
	OpDateValidation       = "date_validation"
	OpBoroughNormalization = "borough_normalization"
	OpCoordinateValidation = "coordinate_validation"
)

// Reason names. Malformed fields and out-of-range values are treated
// identically downstream: the cleaned value is absent and the matching
// quality flag is false.
const (
	ReasonMalformedField  = "malformed_field"
	ReasonOutOfRangeValue = "out_of_range_value"
	ReasonAliasMatch      = "alias_match"
	ReasonUnspecified     = "unspecified_value"
	ReasonUnknownValue    = "unknown_value_uppercased"
)
