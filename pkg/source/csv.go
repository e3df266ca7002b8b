// pkg/source/csv.go

// Package source is the ingestion collaborator: it loads a raw 311
// extract into RawRecord mappings. The pipeline itself has no
// file-parsing responsibility.
package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// LoadCSV reads a headered CSV stream into raw records. Every row becomes
// a mapping from header name to string value; whether the header carries
// the required column set is the pipeline's schema check, not ours.
func LoadCSV(r io.Reader, logger *zap.Logger) ([]model.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows are a data problem, not a load failure

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	var rows []model.RawRecord
	var short int
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+2, err)
		}

		row := make(model.RawRecord, len(header))
		for i, col := range header {
			if i < len(fields) {
				row[col] = fields[i]
			} else {
				row[col] = ""
				short++
			}
		}
		rows = append(rows, row)
	}

	if short > 0 {
		logger.Warn("Padded short rows with empty values", zap.Int("fields", short))
	}
	logger.Info("Loaded raw extract",
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(header)))

	return rows, nil
}

// LoadCSVFile opens path and loads it with LoadCSV.
func LoadCSVFile(path string, logger *zap.Logger) ([]model.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open extract: %w", err)
	}
	defer f.Close()

	return LoadCSV(f, logger)
}
