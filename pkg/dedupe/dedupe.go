// pkg/dedupe/dedupe.go

// Package dedupe resolves multiple raw rows sharing a Unique Key to
// exactly one canonical row. Duplicate keys are structural, never errors.
package dedupe

import (
	"sort"
	"strings"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// Reduce returns one surviving row per distinct Unique Key plus the number
// of rows dropped as duplicates.
//
// Survivor selection is a pure function of row content, independent of
// input order and of how work was scheduled: within a duplicate group the
// row with the smallest content fingerprint wins. Rows in a group share
// the key, so the key itself cannot break the tie. Output is sorted by
// Unique Key.
func Reduce(rows []model.RawRecord) (unique []model.RawRecord, duplicates int) {
	survivors := make(map[string]model.RawRecord, len(rows))

	for _, row := range rows {
		key := row.Value(model.ColUniqueKey)
		current, seen := survivors[key]
		if !seen {
			survivors[key] = row
			continue
		}
		duplicates++
		if fingerprint(row) < fingerprint(current) {
			survivors[key] = row
		}
	}

	unique = make([]model.RawRecord, 0, len(survivors))
	for _, row := range survivors {
		unique = append(unique, row)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Value(model.ColUniqueKey) < unique[j].Value(model.ColUniqueKey)
	})

	return unique, duplicates
}

// fingerprint serializes the fixed column set in declaration order. The
// unit separator cannot appear in source values, so the encoding is
// unambiguous.
func fingerprint(row model.RawRecord) string {
	var sb strings.Builder
	for _, col := range model.RequiredColumns {
		sb.WriteString(row.Value(col))
		sb.WriteByte(0x1f)
	}
	return sb.String()
}
