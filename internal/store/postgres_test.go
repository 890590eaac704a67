package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/repository"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return New(sqlDB, DialectPostgres), mock
}

func TestPostgres_Rebind(t *testing.T) {
	db, _ := setupMockDB(t)
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", db.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := New(nil, DialectSQLite)
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestPostgres_EnsureTableCreatesOnce(t *testing.T) {
	db, mock := setupMockDB(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM information_schema.tables WHERE table_schema = current_schema\(\) AND table_name = \$1`).
		WithArgs("raw_samples").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS raw_samples .*recorded_at TIMESTAMPTZ NOT NULL`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_raw_samples_user`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.EnsureTable(ctx, repository.TableRawSamples))
	require.NoError(t, db.EnsureTable(ctx, repository.TableRawSamples))

	mock.ExpectQuery(`information_schema.tables`).
		WithArgs("users").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	require.NoError(t, db.EnsureTable(ctx, repository.TableUsers))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UniqueViolationRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	ctx := context.Background()
	rows := testSamples("m-1", 1013, 2)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users .* VALUES \(\$1, \$2, \$3, \$4, \$5\)\s+ON CONFLICT \(id\) DO NOTHING`).
		WithArgs(int64(1013), int64(42), "Kadin", "none", "").
		WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(`INSERT INTO raw_samples`)
	prep.ExpectExec().
		WithArgs("m-1", int64(1013), sqlmock.AnyArg(), 800.0, nil, "ok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("m-1", int64(1013), sqlmock.AnyArg(), 800.0, nil, "ok").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := db.InTx(ctx, func(w repository.Writer) error {
		inserted, err := w.InsertUser(ctx, testUser(1013))
		if err != nil {
			return err
		}
		assert.False(t, inserted)
		return w.InsertRawSamples(ctx, rows)
	})
	require.ErrorIs(t, err, repository.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ForeignKeyViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO processed_metrics`).
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	err := db.InTx(ctx, func(w repository.Writer) error {
		return w.InsertProcessed(ctx, seedProcessed())
	})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_IngestLogReturningID(t *testing.T) {
	db, mock := setupMockDB(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO ingest_log .* RETURNING id`).
		WithArgs("r1", "a.txt", nil, nil, "user", "failed", "internal", "boom", created).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	entry := &ingestlog.Entry{
		RunID: "r1", Source: "a.txt", Step: ingestlog.StepUser, Status: ingestlog.StatusFailed,
		ErrorClass: "internal", Message: "boom", CreatedAt: created,
	}
	require.NoError(t, NewIngestLogRepository(db).Log(ctx, entry))
	assert.Equal(t, int64(17), entry.ID)

	mock.ExpectQuery(`FROM ingest_log WHERE run_id = \$1 ORDER BY created_at DESC, id DESC LIMIT \$2`).
		WithArgs("r1", 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "run_id", "source", "measurement_id", "user_id",
			"step", "status", "error_class", "message", "created_at",
		}).AddRow(int64(17), "r1", "a.txt", nil, nil, "user", "failed", "internal", "boom", created))

	entries, err := NewIngestLogRepository(db).List(ctx, ingestlog.ListOptions{RunID: "r1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)
	assert.True(t, entries[0].CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}
