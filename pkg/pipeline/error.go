// pkg/pipeline/error.go
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/civicdata/nyc311-ingress/pkg/model"
)

// SchemaError reports required columns missing from the input mapping.
// It is the only fatal condition in a run: per-field problems degrade to
// flags and absent values, but the pipeline cannot proceed without the
// fixed column set.
type SchemaError struct {
	Missing []string
	err     error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input violates the fixed schema: %v", e.err)
}

func (e *SchemaError) Unwrap() error {
	return e.err
}

// checkSchema verifies every required column exists in the input mapping.
// The ingestion collaborator builds all rows from one header, so the first
// row is representative of the whole batch. All missing columns are
// reported together rather than one at a time.
func checkSchema(rows []model.RawRecord) error {
	if len(rows) == 0 {
		return nil
	}

	var missing []string
	var combined error
	for _, col := range model.RequiredColumns {
		if !rows[0].Has(col) {
			missing = append(missing, col)
			combined = multierr.Append(combined, fmt.Errorf("missing required column %q", col))
		}
	}

	if combined == nil {
		return nil
	}
	return &SchemaError{Missing: missing, err: combined}
}

// IsSchemaError reports whether err is a schema violation.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
