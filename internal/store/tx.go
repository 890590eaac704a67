package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/repository"
)

// InTx runs fn in a transaction. The transaction commits when fn returns nil
// and rolls back otherwise, so a failed record set leaves nothing behind.
func (db *DB) InTx(ctx context.Context, fn func(repository.Writer) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&txWriter{tx: tx, db: db}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
		return err
	}
	return mapError(tx.Commit(), "failed to commit")
}

// txWriter implements repository.Writer on one transaction.
type txWriter struct {
	tx *sql.Tx
	db *DB
}

func (w *txWriter) InsertUser(ctx context.Context, u participant.User) (bool, error) {
	var age any
	if u.Age != nil {
		age = int64(*u.Age)
	}
	query := `
		INSERT INTO users (id, age, gender, clinical_history, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := w.tx.ExecContext(ctx, w.db.rebind(query), u.ID, age, u.Gender, u.ClinicalHistory, u.Notes)
	if err != nil {
		return false, mapError(err, "failed to insert user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

func (w *txWriter) InsertRawSamples(ctx context.Context, rows []measurement.RawSample) error {
	query := `
		INSERT INTO raw_samples (
			measurement_id, user_id, recorded_at, interval_ms, activity, doctor_comment
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	stmt, err := w.tx.PrepareContext(ctx, w.db.rebind(query))
	if err != nil {
		return fmt.Errorf("failed to prepare raw sample insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		_, err := stmt.ExecContext(ctx,
			r.MeasurementID,
			r.UserID,
			r.Timestamp.UTC(),
			r.IntervalMS,
			r.Activity,
			r.DoctorComment,
		)
		if err != nil {
			return mapError(err, fmt.Sprintf("failed to insert raw sample %d", i))
		}
	}
	return nil
}

func (w *txWriter) InsertProcessed(ctx context.Context, row measurement.ProcessedMetrics) error {
	metricCols := measurement.MetricColumns()
	cols := append([]string{
		"measurement_id", "user_id", "measured_at", "start_timestamp", "end_timestamp", "duration_ms",
	}, metricCols...)

	args := []any{
		row.MeasurementID,
		row.UserID,
		row.Timestamp.UTC(),
		row.Start.UTC(),
		row.End.UTC(),
		row.DurationMS,
	}
	args = append(args, row.Metrics.Values()...)

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := "INSERT INTO processed_metrics (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders + ")"

	if _, err := w.tx.ExecContext(ctx, w.db.rebind(query), args...); err != nil {
		return mapError(err, "failed to insert processed metrics")
	}
	return nil
}
