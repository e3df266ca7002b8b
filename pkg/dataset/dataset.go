// pkg/dataset/dataset.go

// Package dataset is the read-only consumer of the cleaned table. It
// holds the lookup structures for the four most-queried dimensions
// (identifier, complaint type, borough, parsed created date) and computes
// summary statistics for downstream reporting collaborators. Indexes are
// derived and rebuildable, never sources of truth.
package dataset

import (
	"time"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

const dayKeyLayout = "2006-01-02"

// Dataset indexes one materialized cleaned table.
type Dataset struct {
	records []model.CleanedRecord

	byKey     map[string]int
	byType    map[string][]int
	byBorough map[model.Borough][]int
	byDay     map[string][]int
}

// New builds the indexes over records. The slice is retained, not copied;
// callers must not mutate it afterwards.
func New(records []model.CleanedRecord) *Dataset {
	d := &Dataset{
		records:   records,
		byKey:     make(map[string]int, len(records)),
		byType:    make(map[string][]int),
		byBorough: make(map[model.Borough][]int),
		byDay:     make(map[string][]int),
	}

	for i := range records {
		rec := &records[i]
		d.byKey[rec.UniqueKey] = i
		d.byType[rec.ComplaintType] = append(d.byType[rec.ComplaintType], i)
		if !rec.Borough.IsAbsent() {
			d.byBorough[rec.Borough] = append(d.byBorough[rec.Borough], i)
		}
		if rec.CreatedAt != nil {
			day := rec.CreatedAt.Format(dayKeyLayout)
			d.byDay[day] = append(d.byDay[day], i)
		}
	}

	return d
}

// Len returns the total record count.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Records returns the full cleaned table in materialization order.
func (d *Dataset) Records() []model.CleanedRecord {
	return d.records
}

// Lookup returns the record for a Unique Key, if present.
func (d *Dataset) Lookup(key string) (*model.CleanedRecord, bool) {
	i, ok := d.byKey[key]
	if !ok {
		return nil, false
	}
	return &d.records[i], true
}

// ByComplaintType returns all records with the given complaint type.
func (d *Dataset) ByComplaintType(complaintType string) []model.CleanedRecord {
	return d.collect(d.byType[complaintType])
}

// ByBorough returns all records in the given canonical borough. Records
// with an absent borough are not indexed.
func (d *Dataset) ByBorough(b model.Borough) []model.CleanedRecord {
	return d.collect(d.byBorough[b])
}

// OnDay returns all records whose parsed created date falls on the given
// calendar day.
func (d *Dataset) OnDay(day time.Time) []model.CleanedRecord {
	return d.collect(d.byDay[day.Format(dayKeyLayout)])
}

// CreatedBetween returns records with a parsed created date in the
// half-open interval [from, to).
func (d *Dataset) CreatedBetween(from, to time.Time) []model.CleanedRecord {
	var out []model.CleanedRecord
	for i := range d.records {
		created := d.records[i].CreatedAt
		if created == nil {
			continue
		}
		if !created.Before(from) && created.Before(to) {
			out = append(out, d.records[i])
		}
	}
	return out
}

func (d *Dataset) collect(indexes []int) []model.CleanedRecord {
	if len(indexes) == 0 {
		return nil
	}
	out := make([]model.CleanedRecord, len(indexes))
	for i, idx := range indexes {
		out[i] = d.records[idx]
	}
	return out
}
