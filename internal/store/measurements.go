package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/repository"
)

// MeasurementRepository implements repository.MeasurementRepository
type MeasurementRepository struct {
	db *DB
}

// NewMeasurementRepository creates a new MeasurementRepository
func NewMeasurementRepository(db *DB) *MeasurementRepository {
	return &MeasurementRepository{db: db}
}

// ListMeasurements summarizes stored raw batches, newest first
func (r *MeasurementRepository) ListMeasurements(ctx context.Context, opts repository.ListMeasurementsOptions) ([]measurement.Summary, error) {
	if err := r.db.ensure(ctx, repository.TableUsers, repository.TableRawSamples, repository.TableProcessedMetrics); err != nil {
		return nil, err
	}
	query := `
		SELECT
			s.measurement_id, s.user_id, MIN(s.recorded_at), MAX(s.recorded_at), COUNT(*),
			EXISTS (SELECT 1 FROM processed_metrics p WHERE p.measurement_id = s.measurement_id)
		FROM raw_samples s
	`
	var args []any
	if opts.UserID != nil {
		query += " WHERE s.user_id = ?"
		args = append(args, *opts.UserID)
	}
	query += " GROUP BY s.measurement_id, s.user_id ORDER BY MIN(s.recorded_at) DESC, s.measurement_id"
	query, args = limitOffset(query, args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer rows.Close()

	var out []measurement.Summary
	for rows.Next() {
		var s measurement.Summary
		if err := rows.Scan(
			&s.MeasurementID,
			&s.UserID,
			timeValue{&s.Start},
			timeValue{&s.End},
			&s.Samples,
			&s.Processed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurement rows: %w", err)
	}
	return out, nil
}

// GetRawSamples returns the samples of a measurement in time order
func (r *MeasurementRepository) GetRawSamples(ctx context.Context, measurementID string, opts repository.ListOptions) ([]measurement.RawSample, error) {
	if err := r.db.ensure(ctx, repository.TableUsers, repository.TableRawSamples); err != nil {
		return nil, err
	}
	query := `
		SELECT measurement_id, user_id, recorded_at, interval_ms, activity, doctor_comment
		FROM raw_samples
		WHERE measurement_id = ?
		ORDER BY recorded_at
	`
	query, args := limitOffset(query, []any{measurementID}, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get raw samples: %w", err)
	}
	defer rows.Close()

	var out []measurement.RawSample
	for rows.Next() {
		var (
			s        measurement.RawSample
			activity sql.NullString
		)
		if err := rows.Scan(
			&s.MeasurementID,
			&s.UserID,
			timeValue{&s.Timestamp},
			&s.IntervalMS,
			&activity,
			&s.DoctorComment,
		); err != nil {
			return nil, fmt.Errorf("failed to scan raw sample: %w", err)
		}
		if activity.Valid {
			s.Activity = &activity.String
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating raw sample rows: %w", err)
	}
	return out, nil
}

// GetProcessed retrieves the processed row of a measurement
func (r *MeasurementRepository) GetProcessed(ctx context.Context, measurementID string) (*measurement.ProcessedMetrics, error) {
	if err := r.db.ensure(ctx, repository.TableUsers, repository.TableProcessedMetrics); err != nil {
		return nil, err
	}
	cols := append([]string{
		"measurement_id", "user_id", "measured_at", "start_timestamp", "end_timestamp", "duration_ms",
	}, measurement.MetricColumns()...)
	query := "SELECT " + strings.Join(cols, ", ") + " FROM processed_metrics WHERE measurement_id = ?"

	var p measurement.ProcessedMetrics
	dest := []any{
		&p.MeasurementID,
		&p.UserID,
		timeValue{&p.Timestamp},
		timeValue{&p.Start},
		timeValue{&p.End},
		&p.DurationMS,
	}
	dest = append(dest, p.Metrics.ScanTargets()...)

	err := r.db.QueryRowContext(ctx, r.db.rebind(query), measurementID).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processed metrics: %w", err)
	}
	return &p, nil
}
