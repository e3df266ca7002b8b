// pkg/pipeline/summary.go
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// RunSummary describes what one batch run admitted, discarded, and flagged.
type RunSummary struct {
	RunID string

	RawRows           int // rows received from the ingestion collaborator
	DuplicatesDropped int // rows removed by key-level deduplication
	OutOfRangeDropped int // rows excluded by the created-date admission filter
	Admitted          int // cleaned records materialized

	// Flag totals over the admitted set.
	ValidBorough     int
	ValidCoordinates int
	ValidCreatedDate int
	ClosedDate       int

	CleaningOperations int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// newRunSummary initializes a summary for a fresh run.
func newRunSummary(rawRows int) *RunSummary {
	return &RunSummary{
		RunID:     uuid.New().String(),
		RawRows:   rawRows,
		StartTime: time.Now(),
	}
}

// recordFlags folds one cleaned record's flags into the totals.
func (s *RunSummary) recordFlags(rec *model.CleanedRecord) {
	if rec.HasValidBorough {
		s.ValidBorough++
	}
	if rec.HasValidCoordinates {
		s.ValidCoordinates++
	}
	if rec.HasValidCreatedDate {
		s.ValidCreatedDate++
	}
	if rec.HasClosedDate {
		s.ClosedDate++
	}
}

// complete stamps the end time and duration.
func (s *RunSummary) complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
}

// Result is the full output of one pipeline run: the cleaned table, the
// field-level cleaning ledger, and the run summary. A run either produces
// a complete Result or fails with no output at all.
type Result struct {
	Records    []model.CleanedRecord
	Operations []model.CleaningOperation
	Summary    RunSummary
}
