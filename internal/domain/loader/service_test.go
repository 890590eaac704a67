package loader_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ganot/hrv-ingest/internal/domain/loader"
	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/repository"
	"github.com/ganot/hrv-ingest/internal/repository/mocks"
	"github.com/ganot/hrv-ingest/internal/store"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func batch(id string, userID int64, n int) []measurement.RawSample {
	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	rows := make([]measurement.RawSample, n)
	for i := range rows {
		rows[i] = measurement.RawSample{
			MeasurementID: id,
			UserID:        userID,
			Timestamp:     start.Add(time.Duration(i) * 810 * time.Millisecond),
			IntervalMS:    810,
		}
	}
	return rows
}

func newMocks() (*mocks.Schema, *mocks.TxRunner, *mocks.Writer) {
	w := &mocks.Writer{}
	return &mocks.Schema{}, &mocks.TxRunner{Writer: w}, w
}

func TestLoadRawSamples_CreatesUserFirst(t *testing.T) {
	ctx := context.Background()
	schema, tx, w := newMocks()
	u := participant.User{ID: 1013}
	rows := batch("m-1", 1013, 3)

	schema.On("EnsureTable", ctx, repository.TableUsers).Return(nil).Once()
	schema.On("EnsureTable", ctx, repository.TableRawSamples).Return(nil).Once()
	tx.On("InTx", ctx).Return(nil)
	w.On("InsertUser", ctx, u).Return(true, nil)
	w.On("InsertRawSamples", ctx, rows).Return(nil)

	out, err := loader.NewLoader(schema, tx, nil).LoadRawSamples(ctx, u, rows)
	require.NoError(t, err)
	require.Equal(t, loader.OutcomeInserted, out)

	require.Len(t, w.Calls, 2)
	require.Equal(t, "InsertUser", w.Calls[0].Method)
	require.Equal(t, "InsertRawSamples", w.Calls[1].Method)
	schema.AssertExpectations(t)
}

func TestLoadRawSamples_DuplicateIsSkipped(t *testing.T) {
	ctx := context.Background()
	schema, tx, w := newMocks()
	u := participant.User{ID: 1013}
	rows := batch("m-1", 1013, 2)

	schema.On("EnsureTable", ctx, mock.Anything).Return(nil)
	tx.On("InTx", ctx).Return(nil)
	w.On("InsertUser", ctx, u).Return(false, nil)
	w.On("InsertRawSamples", ctx, rows).Return(errors.Join(repository.ErrDuplicate, errors.New("UNIQUE constraint failed")))

	out, err := loader.NewLoader(schema, tx, nil).LoadRawSamples(ctx, u, rows)
	require.NoError(t, err)
	require.Equal(t, loader.OutcomeSkipped, out)
}

func TestLoadProcessed_StorageErrorFails(t *testing.T) {
	ctx := context.Background()
	schema, tx, w := newMocks()
	u := participant.User{ID: 1013}
	row := measurement.ProcessedMetrics{MeasurementID: "m-1", UserID: 1013}
	boom := errors.New("disk I/O error")

	schema.On("EnsureTable", ctx, mock.Anything).Return(nil)
	tx.On("InTx", ctx).Return(nil)
	w.On("InsertUser", ctx, u).Return(true, nil)
	w.On("InsertProcessed", ctx, row).Return(boom)

	out, err := loader.NewLoader(schema, tx, nil).LoadProcessed(ctx, u, row)
	require.ErrorIs(t, err, boom)
	require.Equal(t, loader.OutcomeFailed, out)
}

func TestLoader_SchemaFailureStopsBeforeWriting(t *testing.T) {
	ctx := context.Background()
	schema, tx, _ := newMocks()
	boom := errors.New("permission denied")
	schema.On("EnsureTable", ctx, repository.TableUsers).Return(boom)

	out, err := loader.NewLoader(schema, tx, nil).EnsureUser(ctx, participant.User{ID: 1})
	require.ErrorIs(t, err, boom)
	require.Equal(t, loader.OutcomeFailed, out)
	tx.AssertNotCalled(t, "InTx", mock.Anything)
}

func TestLoader_Validation(t *testing.T) {
	ctx := context.Background()
	schema, tx, _ := newMocks()
	l := loader.NewLoader(schema, tx, nil)

	_, err := l.EnsureUser(ctx, participant.User{})
	require.ErrorIs(t, err, loader.ErrInvalidUser)

	_, err = l.LoadRawSamples(ctx, participant.User{ID: 1}, nil)
	require.ErrorIs(t, err, loader.ErrEmptyBatch)

	_, err = l.LoadRawSamples(ctx, participant.User{ID: 1}, batch("m-1", 2, 2))
	require.ErrorIs(t, err, loader.ErrInconsistent)

	rows := batch("m-1", 1, 3)
	rows[2].Timestamp = rows[1].Timestamp
	_, err = l.LoadRawSamples(ctx, participant.User{ID: 1}, rows)
	require.ErrorIs(t, err, loader.ErrNotIncreasing)

	_, err = l.LoadProcessed(ctx, participant.User{ID: 1}, measurement.ProcessedMetrics{MeasurementID: "m-1", UserID: 2})
	require.ErrorIs(t, err, loader.ErrInconsistent)

	schema.AssertNotCalled(t, "EnsureTable", mock.Anything, mock.Anything)
}

func TestLoader_IdempotentAgainstSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, store.DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := loader.NewLoader(db, db, nil)
	age := 40
	u := participant.User{ID: 1013, Age: &age, Gender: "Erkek"}
	rows := batch("m-1", 1013, 10)
	processed := measurement.ProcessedMetrics{
		MeasurementID: "m-1",
		UserID:        1013,
		Timestamp:     rows[0].Timestamp,
		Start:         rows[0].Timestamp,
		End:           rows[9].Timestamp,
		DurationMS:    rows[9].Timestamp.Sub(rows[0].Timestamp).Milliseconds(),
	}

	run := func() []loader.Outcome {
		a, err := l.LoadRawSamples(ctx, u, rows)
		require.NoError(t, err)
		b, err := l.LoadProcessed(ctx, u, processed)
		require.NoError(t, err)
		c, err := l.EnsureUser(ctx, u)
		require.NoError(t, err)
		return []loader.Outcome{a, b, c}
	}

	require.Equal(t, []loader.Outcome{loader.OutcomeInserted, loader.OutcomeInserted, loader.OutcomeSkipped}, run())
	require.Equal(t, []loader.Outcome{loader.OutcomeSkipped, loader.OutcomeSkipped, loader.OutcomeSkipped}, run())

	var users, raw, proc int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM raw_samples").Scan(&raw))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM processed_metrics").Scan(&proc))
	require.Equal(t, 1, users)
	require.Equal(t, 10, raw)
	require.Equal(t, 1, proc)
}
