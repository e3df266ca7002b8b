// pkg/normalize/normalize.go
package normalize

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// Normalizer maps one raw field to one cleaned value. Every method is
// total: malformed input degrades to an absent value plus a cleaning
// operation, never an error, so one bad row cannot abort a batch.
type Normalizer struct {
	rules  Rules
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer with the given rules.
func NewNormalizer(rules Rules, logger *zap.Logger) (*Normalizer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if rules.DateLayout == "" {
		return nil, errors.New("rules must specify a date layout")
	}
	return &Normalizer{
		rules:  rules,
		logger: logger,
	}, nil
}

// Rules returns the cleaning configuration in use.
func (n *Normalizer) Rules() Rules {
	return n.rules
}

// ParseDate parses a raw source timestamp. Empty input yields nil with no
// operation. A non-empty string that does not match the source layout
// yields nil plus a malformed-field operation; the original positional
// substring extraction is deliberately replaced by full format validation
// so bad widths can never produce garbage timestamps.
func (n *Normalizer) ParseDate(raw, column, rowID string) (*time.Time, *model.CleaningOperation) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(n.rules.DateLayout, raw)
	if err != nil {
		n.logger.Debug("Unparseable date dropped",
			zap.String("column", column),
			zap.String("row", rowID),
			zap.String("value", raw))
		return nil, &model.CleaningOperation{
			ColumnName:    column,
			OriginalValue: raw,
			NewValue:      "",
			RowIdentifier: rowID,
			Operation:     model.OpDateValidation,
			Reason:        model.ReasonMalformedField,
			CleanedAt:     time.Now(),
		}
	}

	return &t, nil
}

// CreatedYear extracts the year from a raw created-date string for the
// admission filter. ok is false when the string is non-empty but does not
// parse, which excludes the row just like an out-of-range year would.
func (n *Normalizer) CreatedYear(raw string) (year int, ok bool) {
	t, err := time.Parse(n.rules.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return t.Year(), true
}

// YearAdmitted reports whether a created-date year falls inside the fixed
// admission range.
func (n *Normalizer) YearAdmitted(year int) bool {
	return year >= n.rules.MinYear && year <= n.rules.MaxYear
}

// NormalizeBorough canonicalizes a raw borough spelling. Matching is
// case-insensitive against the alias table; empty, null, and UNSPECIFIED
// values become absent; any other non-empty value passes through
// uppercased unchanged (the table is open-ended, unknown boroughs are
// not rejected).
func (n *Normalizer) NormalizeBorough(raw, rowID string) (model.Borough, *model.CleaningOperation) {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	if _, absent := n.rules.AbsentBoroughValues[upper]; absent {
		if trimmed == "" {
			return model.BoroughNone, nil
		}
		return model.BoroughNone, &model.CleaningOperation{
			ColumnName:    model.ColBorough,
			OriginalValue: raw,
			NewValue:      "",
			RowIdentifier: rowID,
			Operation:     model.OpBoroughNormalization,
			Reason:        model.ReasonUnspecified,
			CleanedAt:     time.Now(),
		}
	}

	if canonical, ok := n.rules.BoroughAliases[upper]; ok {
		if trimmed == string(canonical) {
			return canonical, nil
		}
		return canonical, &model.CleaningOperation{
			ColumnName:    model.ColBorough,
			OriginalValue: raw,
			NewValue:      string(canonical),
			RowIdentifier: rowID,
			Operation:     model.OpBoroughNormalization,
			Reason:        model.ReasonAliasMatch,
			CleanedAt:     time.Now(),
		}
	}

	if upper == trimmed {
		return model.Borough(upper), nil
	}
	return model.Borough(upper), &model.CleaningOperation{
		ColumnName:    model.ColBorough,
		OriginalValue: raw,
		NewValue:      upper,
		RowIdentifier: rowID,
		Operation:     model.OpBoroughNormalization,
		Reason:        model.ReasonUnknownValue,
		CleanedAt:     time.Now(),
	}
}

// ValidateCoordinates validates a latitude/longitude pair against the NYC
// bounding box. The pair is all-or-nothing: if either value is missing,
// non-numeric, or out of bounds, both are dropped.
func (n *Normalizer) ValidateCoordinates(rawLat, rawLon, rowID string) (*float64, *float64, []model.CleaningOperation) {
	rawLat = strings.TrimSpace(rawLat)
	rawLon = strings.TrimSpace(rawLon)

	if rawLat == "" && rawLon == "" {
		return nil, nil, nil
	}

	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)

	if latErr != nil || lonErr != nil {
		return nil, nil, n.coordinateDropOps(rawLat, rawLon, rowID, model.ReasonMalformedField)
	}

	if lat < n.rules.LatMin || lat > n.rules.LatMax ||
		lon < n.rules.LonMin || lon > n.rules.LonMax {
		return nil, nil, n.coordinateDropOps(rawLat, rawLon, rowID, model.ReasonOutOfRangeValue)
	}

	return &lat, &lon, nil
}

func (n *Normalizer) coordinateDropOps(rawLat, rawLon, rowID, reason string) []model.CleaningOperation {
	now := time.Now()
	ops := make([]model.CleaningOperation, 0, 2)
	if rawLat != "" {
		ops = append(ops, model.CleaningOperation{
			ColumnName:    model.ColLatitude,
			OriginalValue: rawLat,
			RowIdentifier: rowID,
			Operation:     model.OpCoordinateValidation,
			Reason:        reason,
			CleanedAt:     now,
		})
	}
	if rawLon != "" {
		ops = append(ops, model.CleaningOperation{
			ColumnName:    model.ColLongitude,
			OriginalValue: rawLon,
			RowIdentifier: rowID,
			Operation:     model.OpCoordinateValidation,
			Reason:        reason,
			CleanedAt:     now,
		})
	}
	return ops
}

// BucketCategory returns the complaint type unchanged when it belongs to
// the fixed allow-list of frequent types, otherwise the literal "Other".
// The allow-list is static configuration, never inferred from data.
func (n *Normalizer) BucketCategory(complaintType string) string {
	if _, ok := n.rules.CategoryAllowList[complaintType]; ok {
		return complaintType
	}
	return CategoryOther
}
