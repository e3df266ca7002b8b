// pkg/pipeline/pipeline.go

// Package pipeline applies the normalizer, validator, and deduplicator
// across a full raw batch and materializes the cleaned table. The run is
// a single-pass, in-memory transformation: dedup, admission filter, then
// a parallel per-row map step with a fan-in barrier before any aggregate
// is computed.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/civicdata/nyc311-ingress/pkg/dedupe"
	"github.com/civicdata/nyc311-ingress/pkg/model"
	"github.com/civicdata/nyc311-ingress/pkg/normalize"
	"github.com/civicdata/nyc311-ingress/pkg/validate"
)

// Pipeline orchestrates one batch run over a raw row set.
type Pipeline struct {
	normalizer  *Normalizer
	logger      *zap.Logger
	workerCount int
}

// Normalizer is re-exported so callers construct the pipeline without
// importing the normalize package for the common case.
type Normalizer = normalize.Normalizer

// New creates a Pipeline with the given cleaning rules.
func New(rules normalize.Rules, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	n, err := normalize.NewNormalizer(rules, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build normalizer: %w", err)
	}

	return &Pipeline{
		normalizer:  n,
		logger:      logger,
		workerCount: runtime.NumCPU(),
	}, nil
}

// WithWorkerCount sets how many goroutines run the per-row map step.
// Values below 1 are ignored. The output is identical for any count:
// each row writes a disjoint slot and results are ordered by key.
func (p *Pipeline) WithWorkerCount(count int) *Pipeline {
	if count > 0 {
		p.workerCount = count
	}
	return p
}

// Run executes the full cleaning pipeline over rows and returns the
// cleaned table with its summary. The only fatal condition is a schema
// violation or context cancellation; every per-field problem is recovered
// locally into flags and absent values.
func (p *Pipeline) Run(ctx context.Context, rows []model.RawRecord) (*Result, error) {
	if err := checkSchema(rows); err != nil {
		p.logger.Error("Schema violation, aborting batch", zap.Error(err))
		return nil, err
	}

	summary := newRunSummary(len(rows))
	p.logger.Info("Starting pipeline run",
		zap.String("runID", summary.RunID),
		zap.Int("rawRows", len(rows)),
		zap.Int("workers", p.workerCount))

	// Step 1: one surviving row per Unique Key.
	unique, duplicates := dedupe.Reduce(rows)
	summary.DuplicatesDropped = duplicates

	// Step 2: admission filter on the created-date year.
	admitted := p.admit(unique, summary)

	// Step 3: parallel normalize + validate; each row owns one output slot.
	records, operations, err := p.mapRows(ctx, admitted)
	if err != nil {
		return nil, err
	}

	// Step 4: materialize. The admitted slice is already key-sorted, so
	// the output order is deterministic regardless of worker count.
	summary.Admitted = len(records)
	summary.CleaningOperations = len(operations)
	for i := range records {
		summary.recordFlags(&records[i])
	}
	summary.complete()

	p.logger.Info("Pipeline run completed",
		zap.String("runID", summary.RunID),
		zap.Int("admitted", summary.Admitted),
		zap.Int("duplicatesDropped", summary.DuplicatesDropped),
		zap.Int("outOfRangeDropped", summary.OutOfRangeDropped),
		zap.Int("cleaningOperations", summary.CleaningOperations),
		zap.Duration("duration", summary.Duration))

	return &Result{
		Records:    records,
		Operations: operations,
		Summary:    *summary,
	}, nil
}

// admit keeps a row when its raw created date is empty or its year lies
// inside the admission range. A non-empty date that cannot be parsed has
// no extractable year and is excluded the same way an out-of-range year is.
func (p *Pipeline) admit(rows []model.RawRecord, summary *RunSummary) []model.RawRecord {
	admitted := make([]model.RawRecord, 0, len(rows))
	for _, row := range rows {
		raw := strings.TrimSpace(row.Value(model.ColCreatedDate))
		if raw == "" {
			admitted = append(admitted, row)
			continue
		}

		year, ok := p.normalizer.CreatedYear(raw)
		if !ok || !p.normalizer.YearAdmitted(year) {
			summary.OutOfRangeDropped++
			p.logger.Debug("Row excluded by date admission filter",
				zap.String("uniqueKey", row.Value(model.ColUniqueKey)),
				zap.String("createdDate", raw))
			continue
		}
		admitted = append(admitted, row)
	}
	return admitted
}

// mapRows runs the per-row normalize/validate step across the worker pool.
// Row i writes records[i] and ops[i] only, so no slot is ever contended;
// the WaitGroup is the fan-in barrier required before aggregation.
func (p *Pipeline) mapRows(ctx context.Context, rows []model.RawRecord) ([]model.CleanedRecord, []model.CleaningOperation, error) {
	records := make([]model.CleanedRecord, len(rows))
	ops := make([][]model.CleaningOperation, len(rows))

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := p.workerCount
	if workers > len(rows) && len(rows) > 0 {
		workers = len(rows)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				records[i], ops[i] = p.cleanRow(rows[i])
			}
		}()
	}

	var cancelled error
feed:
	for i := range rows {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break feed
		}
		select {
		case indexes <- i:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(indexes)
	wg.Wait()

	if cancelled != nil {
		p.logger.Warn("Pipeline run cancelled, discarding partial output",
			zap.Error(cancelled))
		return nil, nil, fmt.Errorf("pipeline run cancelled: %w", cancelled)
	}

	flat := make([]model.CleaningOperation, 0)
	for _, rowOps := range ops {
		flat = append(flat, rowOps...)
	}
	return records, flat, nil
}

// cleanRow produces one cleaned record from one admitted raw row.
func (p *Pipeline) cleanRow(row model.RawRecord) (model.CleanedRecord, []model.CleaningOperation) {
	key := row.Value(model.ColUniqueKey)
	var ops []model.CleaningOperation

	createdAt, op := p.normalizer.ParseDate(row.Value(model.ColCreatedDate), model.ColCreatedDate, key)
	if op != nil {
		ops = append(ops, *op)
	}
	closedAt, op := p.normalizer.ParseDate(row.Value(model.ColClosedDate), model.ColClosedDate, key)
	if op != nil {
		ops = append(ops, *op)
	}

	borough, op := p.normalizer.NormalizeBorough(row.Value(model.ColBorough), key)
	if op != nil {
		ops = append(ops, *op)
	}

	lat, lon, coordOps := p.normalizer.ValidateCoordinates(
		row.Value(model.ColLatitude), row.Value(model.ColLongitude), key)
	ops = append(ops, coordOps...)

	complaintType := row.Value(model.ColComplaintType)

	rec := model.CleanedRecord{
		UniqueKey:             key,
		CreatedAt:             createdAt,
		ClosedAt:              closedAt,
		Agency:                row.Value(model.ColAgency),
		AgencyName:            row.Value(model.ColAgencyName),
		ComplaintType:         complaintType,
		ComplaintCategory:     p.normalizer.BucketCategory(complaintType),
		Descriptor:            row.Value(model.ColDescriptor),
		LocationType:          row.Value(model.ColLocationType),
		IncidentZip:           row.Value(model.ColIncidentZip),
		IncidentAddress:       row.Value(model.ColIncidentAddress),
		City:                  row.Value(model.ColCity),
		Borough:               borough,
		Latitude:              lat,
		Longitude:             lon,
		Status:                row.Value(model.ColStatus),
		ResolutionDescription: row.Value(model.ColResolutionDesc),
		ResolutionActionDate:  row.Value(model.ColResolutionActionDate),
		CommunityBoard:        row.Value(model.ColCommunityBoard),
	}

	validate.Apply(row, &rec)

	return rec, ops
}
