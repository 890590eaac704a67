package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
)

// IngestLogRepository implements repository.IngestLogRepository
type IngestLogRepository struct {
	db *DB
}

// NewIngestLogRepository creates a new IngestLogRepository
func NewIngestLogRepository(db *DB) *IngestLogRepository {
	return &IngestLogRepository{db: db}
}

// Log inserts a new log entry
func (r *IngestLogRepository) Log(ctx context.Context, entry *ingestlog.Entry) error {
	query := `
		INSERT INTO ingest_log (
			run_id, source, measurement_id, user_id,
			step, status, error_class, message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, r.db.rebind(query),
		entry.RunID,
		entry.Source,
		entry.MeasurementID,
		entry.UserID,
		string(entry.Step),
		string(entry.Status),
		entry.ErrorClass,
		entry.Message,
		entry.CreatedAt.UTC(),
	).Scan(&entry.ID)
	if err != nil {
		return mapError(err, "failed to log ingest step")
	}
	return nil
}

// List returns log entries matching the given filters, newest first
func (r *IngestLogRepository) List(ctx context.Context, opts ingestlog.ListOptions) ([]ingestlog.Entry, error) {
	query := `
		SELECT
			id, run_id, source, measurement_id, user_id,
			step, status, error_class, message, created_at
		FROM ingest_log
	`

	var (
		args       []any
		conditions []string
	)
	if opts.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, opts.RunID)
	}
	if opts.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *opts.UserID)
	}
	if opts.MeasurementID != nil {
		conditions = append(conditions, "measurement_id = ?")
		args = append(args, *opts.MeasurementID)
	}
	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*opts.Status))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	query, args = limitOffset(query, args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest log: %w", err)
	}
	defer rows.Close()

	var entries []ingestlog.Entry
	for rows.Next() {
		var (
			e             ingestlog.Entry
			measurementID sql.NullString
			userID        sql.NullInt64
		)
		if err := rows.Scan(
			&e.ID,
			&e.RunID,
			&e.Source,
			&measurementID,
			&userID,
			&e.Step,
			&e.Status,
			&e.ErrorClass,
			&e.Message,
			timeValue{&e.CreatedAt},
		); err != nil {
			return nil, fmt.Errorf("failed to scan ingest log entry: %w", err)
		}
		if measurementID.Valid {
			e.MeasurementID = &measurementID.String
		}
		if userID.Valid {
			e.UserID = &userID.Int64
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingest log rows: %w", err)
	}
	return entries, nil
}
