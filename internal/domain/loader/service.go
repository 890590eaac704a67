package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/repository"
)

// Loader writes record sets idempotently. Every record set is written in its
// own transaction that first creates the owning user when it is missing, so
// measurement rows never reference an unknown user. A record set whose key is
// already stored is skipped without error.
type Loader struct {
	schema repository.Schema
	tx     repository.TxRunner
	logger *slog.Logger
}

// NewLoader creates a new loader.
func NewLoader(schema repository.Schema, tx repository.TxRunner, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{schema: schema, tx: tx, logger: logger}
}

// EnsureUser stores u unless it already exists.
func (l *Loader) EnsureUser(ctx context.Context, u participant.User) (Outcome, error) {
	if u.ID <= 0 {
		return OutcomeFailed, fmt.Errorf("%w: id %d", ErrInvalidUser, u.ID)
	}
	if err := l.ensure(ctx, repository.TableUsers); err != nil {
		return OutcomeFailed, err
	}

	var inserted bool
	err := l.tx.InTx(ctx, func(w repository.Writer) error {
		var err error
		inserted, err = w.InsertUser(ctx, u)
		return err
	})
	if err != nil {
		return l.settle(err, "user", "user_id", u.ID)
	}
	if !inserted {
		l.logger.Info("user exists, skipping", "user_id", u.ID)
		return OutcomeSkipped, nil
	}
	l.logger.Info("user inserted", "user_id", u.ID)
	return OutcomeInserted, nil
}

// LoadRawSamples stores one measurement's raw batch.
func (l *Loader) LoadRawSamples(ctx context.Context, u participant.User, rows []measurement.RawSample) (Outcome, error) {
	if err := validateBatch(u, rows); err != nil {
		return OutcomeFailed, err
	}
	if err := l.ensure(ctx, repository.TableUsers, repository.TableRawSamples); err != nil {
		return OutcomeFailed, err
	}

	err := l.tx.InTx(ctx, func(w repository.Writer) error {
		if _, err := w.InsertUser(ctx, u); err != nil {
			return err
		}
		return w.InsertRawSamples(ctx, rows)
	})
	if err != nil {
		return l.settle(err, "raw samples", "measurement_id", rows[0].MeasurementID)
	}
	l.logger.Info("raw samples inserted",
		"measurement_id", rows[0].MeasurementID,
		"user_id", u.ID,
		"rows", len(rows),
	)
	return OutcomeInserted, nil
}

// LoadProcessed stores one measurement's processed row.
func (l *Loader) LoadProcessed(ctx context.Context, u participant.User, row measurement.ProcessedMetrics) (Outcome, error) {
	if u.ID <= 0 {
		return OutcomeFailed, fmt.Errorf("%w: id %d", ErrInvalidUser, u.ID)
	}
	if row.UserID != u.ID || row.MeasurementID == "" {
		return OutcomeFailed, ErrInconsistent
	}
	if err := l.ensure(ctx, repository.TableUsers, repository.TableProcessedMetrics); err != nil {
		return OutcomeFailed, err
	}

	err := l.tx.InTx(ctx, func(w repository.Writer) error {
		if _, err := w.InsertUser(ctx, u); err != nil {
			return err
		}
		return w.InsertProcessed(ctx, row)
	})
	if err != nil {
		return l.settle(err, "processed metrics", "measurement_id", row.MeasurementID)
	}
	l.logger.Info("processed metrics inserted", "measurement_id", row.MeasurementID, "user_id", u.ID)
	return OutcomeInserted, nil
}

func (l *Loader) ensure(ctx context.Context, tables ...repository.Table) error {
	for _, t := range tables {
		if err := l.schema.EnsureTable(ctx, t); err != nil {
			return fmt.Errorf("ensuring table %s: %w", t, err)
		}
	}
	return nil
}

// settle turns a transaction error into an outcome: duplicates are skips.
func (l *Loader) settle(err error, what, key string, id any) (Outcome, error) {
	if errors.Is(err, repository.ErrDuplicate) {
		l.logger.Info(what+" already ingested, skipping", key, id)
		return OutcomeSkipped, nil
	}
	return OutcomeFailed, fmt.Errorf("loading %s: %w", what, err)
}

func validateBatch(u participant.User, rows []measurement.RawSample) error {
	if u.ID <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidUser, u.ID)
	}
	if len(rows) == 0 {
		return ErrEmptyBatch
	}
	id := rows[0].MeasurementID
	if id == "" {
		return ErrInconsistent
	}
	for i, r := range rows {
		if r.MeasurementID != id || r.UserID != u.ID {
			return fmt.Errorf("%w: row %d", ErrInconsistent, i)
		}
		if i > 0 && !r.Timestamp.After(rows[i-1].Timestamp) {
			return fmt.Errorf("%w: row %d", ErrNotIncreasing, i)
		}
	}
	return nil
}
