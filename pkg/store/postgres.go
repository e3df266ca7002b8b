// pkg/store/postgres.go

// Package store is the storage collaborator: it materializes completed
// pipeline runs into PostgreSQL. The cleaned table is fully recomputed on
// every run, so materialization replaces rather than merges.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/civicdata/nyc311-ingress/pkg/config"
	"github.com/civicdata/nyc311-ingress/pkg/model"
	"github.com/civicdata/nyc311-ingress/pkg/pipeline"
)

// insertBatchSize bounds the rows per multi-row insert statement.
const insertBatchSize = 500

// Store writes cleaned records and their cleaning ledger to PostgreSQL.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg *config.PostgresConfig, logger *zap.Logger) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("postgres configuration cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sqlx.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.Named("store"),
	}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the cleaned table and the cleaning-operations
// ledger when they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const cleanedTableSQL = `
		CREATE TABLE IF NOT EXISTS service_requests_cleaned (
			unique_key TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			closed_at TIMESTAMP,
			agency TEXT,
			agency_name TEXT,
			complaint_type TEXT,
			complaint_category TEXT,
			descriptor TEXT,
			location_type TEXT,
			incident_zip TEXT,
			incident_address TEXT,
			city TEXT,
			borough TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			status TEXT,
			resolution_description TEXT,
			resolution_action_date TEXT,
			community_board TEXT,
			has_valid_borough BOOLEAN NOT NULL,
			has_valid_coordinates BOOLEAN NOT NULL,
			has_valid_created_date BOOLEAN NOT NULL,
			has_closed_date BOOLEAN NOT NULL
		)
	`

	const ledgerSQL = `
		CREATE TABLE IF NOT EXISTS cleaning_operations (
			id SERIAL PRIMARY KEY,
			run_id TEXT NOT NULL,
			column_name TEXT NOT NULL,
			original_value TEXT,
			new_value TEXT NOT NULL,
			row_identifier TEXT NOT NULL,
			cleaning_operation TEXT NOT NULL,
			cleaning_reason TEXT NOT NULL,
			cleaned_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`

	// The four lookup dimensions downstream collaborators query by.
	const indexSQL = `
		CREATE INDEX IF NOT EXISTS idx_cleaned_complaint_type ON service_requests_cleaned (complaint_type);
		CREATE INDEX IF NOT EXISTS idx_cleaned_borough ON service_requests_cleaned (borough);
		CREATE INDEX IF NOT EXISTS idx_cleaned_created_at ON service_requests_cleaned (created_at);
	`

	for _, stmt := range []string{cleanedTableSQL, ledgerSQL, indexSQL} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	s.logger.Info("Ensured cleaned table and cleaning ledger exist")
	return nil
}

// MaterializeRun replaces the cleaned table with the run's records and
// appends its cleaning operations to the ledger, all in one transaction.
// Either the full run lands or nothing does.
func (s *Store) MaterializeRun(ctx context.Context, result *pipeline.Result) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.Error(err))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM service_requests_cleaned"); err != nil {
		return fmt.Errorf("failed to clear cleaned table: %w", err)
	}

	if err = s.insertRecords(ctx, tx, result.Records); err != nil {
		return err
	}

	if err = s.insertOperations(ctx, tx, result.Summary.RunID, result.Operations); err != nil {
		return err
	}

	// Row-count verification before publishing the run.
	var count int
	if err = tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM service_requests_cleaned"); err != nil {
		return fmt.Errorf("failed to verify row count: %w", err)
	}
	if count != len(result.Records) {
		err = fmt.Errorf("row count verification failed: expected %d, found %d", len(result.Records), count)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Materialized pipeline run",
		zap.String("runID", result.Summary.RunID),
		zap.Int("records", len(result.Records)),
		zap.Int("cleaningOperations", len(result.Operations)))
	return nil
}

func (s *Store) insertRecords(ctx context.Context, tx *sqlx.Tx, records []model.CleanedRecord) error {
	const insertSQL = `
		INSERT INTO service_requests_cleaned (
			unique_key, created_at, closed_at, agency, agency_name,
			complaint_type, complaint_category, descriptor, location_type,
			incident_zip, incident_address, city, borough, latitude, longitude,
			status, resolution_description, resolution_action_date, community_board,
			has_valid_borough, has_valid_coordinates, has_valid_created_date, has_closed_date
		) VALUES (
			:unique_key, :created_at, :closed_at, :agency, :agency_name,
			:complaint_type, :complaint_category, :descriptor, :location_type,
			:incident_zip, :incident_address, :city, :borough, :latitude, :longitude,
			:status, :resolution_description, :resolution_action_date, :community_board,
			:has_valid_borough, :has_valid_coordinates, :has_valid_created_date, :has_closed_date
		)
	`

	for start := 0; start < len(records); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(records) {
			end = len(records)
		}
		if _, err := tx.NamedExecContext(ctx, insertSQL, records[start:end]); err != nil {
			return fmt.Errorf("failed to insert cleaned records: %w", err)
		}
	}
	return nil
}

func (s *Store) insertOperations(ctx context.Context, tx *sqlx.Tx, runID string, operations []model.CleaningOperation) error {
	if len(operations) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cleaning_operations
		(run_id, column_name, original_value, new_value,
		 row_identifier, cleaning_operation, cleaning_reason, cleaned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, op := range operations {
		if _, err := stmt.ExecContext(ctx,
			runID,
			op.ColumnName,
			op.OriginalValue,
			op.NewValue,
			op.RowIdentifier,
			op.Operation,
			op.Reason,
			op.CleanedAt,
		); err != nil {
			return fmt.Errorf("failed to insert cleaning operation: %w", err)
		}
	}
	return nil
}
