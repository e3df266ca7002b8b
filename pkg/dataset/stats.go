// pkg/dataset/stats.go
package dataset

import (
	"sort"
	"time"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// BoroughCount is one row of the borough distribution.
type BoroughCount struct {
	Borough model.Borough
	Count   int
	Percent float64
}

// TypeCount is one row of the complaint-type ranking.
type TypeCount struct {
	ComplaintType string
	Count         int
	Percent       float64
}

// Stats summarizes the cleaned table for reporting collaborators.
type Stats struct {
	TotalRecords int

	// Boroughs is sorted by descending count; records with an absent
	// borough are excluded.
	Boroughs []BoroughCount

	// TopComplaintTypes holds the N most frequent complaint types. Order
	// among equal counts is implementation-defined; consumers should rely
	// on the counts, not tie order.
	TopComplaintTypes []TypeCount

	ValidBorough     int
	ValidCoordinates int
	ClosedDate       int

	DistinctBoroughs      int
	DistinctComplaintTypes int
}

// Stats computes summary statistics over the cleaned table. topN bounds
// the complaint-type ranking; values below 1 return the full ranking.
func (d *Dataset) Stats(topN int) Stats {
	s := Stats{
		TotalRecords:           len(d.records),
		DistinctBoroughs:       len(d.byBorough),
		DistinctComplaintTypes: len(d.byType),
	}

	for i := range d.records {
		rec := &d.records[i]
		if rec.HasValidBorough {
			s.ValidBorough++
		}
		if rec.HasValidCoordinates {
			s.ValidCoordinates++
		}
		if rec.HasClosedDate {
			s.ClosedDate++
		}
	}

	total := float64(s.TotalRecords)

	for borough, indexes := range d.byBorough {
		bc := BoroughCount{Borough: borough, Count: len(indexes)}
		if total > 0 {
			bc.Percent = 100 * float64(bc.Count) / total
		}
		s.Boroughs = append(s.Boroughs, bc)
	}
	sort.Slice(s.Boroughs, func(i, j int) bool {
		if s.Boroughs[i].Count != s.Boroughs[j].Count {
			return s.Boroughs[i].Count > s.Boroughs[j].Count
		}
		return s.Boroughs[i].Borough < s.Boroughs[j].Borough
	})

	for complaintType, indexes := range d.byType {
		tc := TypeCount{ComplaintType: complaintType, Count: len(indexes)}
		if total > 0 {
			tc.Percent = 100 * float64(tc.Count) / total
		}
		s.TopComplaintTypes = append(s.TopComplaintTypes, tc)
	}
	sort.Slice(s.TopComplaintTypes, func(i, j int) bool {
		if s.TopComplaintTypes[i].Count != s.TopComplaintTypes[j].Count {
			return s.TopComplaintTypes[i].Count > s.TopComplaintTypes[j].Count
		}
		return s.TopComplaintTypes[i].ComplaintType < s.TopComplaintTypes[j].ComplaintType
	})
	if topN > 0 && len(s.TopComplaintTypes) > topN {
		s.TopComplaintTypes = s.TopComplaintTypes[:topN]
	}

	return s
}

// HourOfDayHistogram counts records by the hour their request was created.
// Records without a parsed created date are skipped.
func (d *Dataset) HourOfDayHistogram() [24]int {
	var hist [24]int
	for i := range d.records {
		if created := d.records[i].CreatedAt; created != nil {
			hist[created.Hour()]++
		}
	}
	return hist
}

// WeekdayHistogram counts records by the weekday their request was
// created, indexed Sunday=0 through Saturday=6.
func (d *Dataset) WeekdayHistogram() [7]int {
	var hist [7]int
	for i := range d.records {
		if created := d.records[i].CreatedAt; created != nil {
			hist[int(created.Weekday())]++
		}
	}
	return hist
}

// MeanResponseTime averages closed-minus-created over records where both
// timestamps parsed and closure did not precede creation.
func (d *Dataset) MeanResponseTime() (time.Duration, bool) {
	var sum time.Duration
	var n int
	for i := range d.records {
		if rt, ok := d.records[i].ResponseTime(); ok {
			sum += rt
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / time.Duration(n), true
}
