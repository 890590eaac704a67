package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/repository"
)

// EnsureTable creates table when it does not exist yet. Existence is checked
// once per table and remembered for the lifetime of db.
func (db *DB) EnsureTable(ctx context.Context, table repository.Table) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.ensured[table] {
		return nil
	}
	stmts, err := ddl(db.dialect, table)
	if err != nil {
		return err
	}

	exists, err := db.tableExists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		for _, stmt := range stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create %s: %w", table, err)
			}
		}
	}
	db.ensured[table] = true
	return nil
}

// EnsureAll creates every relation, in dependency order.
func (db *DB) EnsureAll(ctx context.Context) error {
	return db.ensure(ctx, repository.Tables...)
}

// ensure runs EnsureTable for every table in order.
func (db *DB) ensure(ctx context.Context, tables ...repository.Table) error {
	for _, t := range tables {
		if err := db.EnsureTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) tableExists(ctx context.Context, table repository.Table) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if db.dialect == DialectPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`
	}
	var n int
	if err := db.QueryRowContext(ctx, db.rebind(query), string(table)).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", table, err)
	}
	return n > 0, nil
}

func ddl(dialect Dialect, table repository.Table) ([]string, error) {
	ts, serial := "TIMESTAMP", "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == DialectPostgres {
		ts, serial = "TIMESTAMPTZ", "BIGSERIAL PRIMARY KEY"
	}

	switch table {
	case repository.TableUsers:
		return []string{`
CREATE TABLE IF NOT EXISTS users (
    id BIGINT PRIMARY KEY,
    age BIGINT,
    gender TEXT NOT NULL DEFAULT '',
    clinical_history TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT ''
)`}, nil

	case repository.TableRawSamples:
		return []string{`
CREATE TABLE IF NOT EXISTS raw_samples (
    measurement_id TEXT NOT NULL,
    user_id BIGINT NOT NULL REFERENCES users(id),
    recorded_at ` + ts + ` NOT NULL,
    interval_ms DOUBLE PRECISION NOT NULL,
    activity TEXT,
    doctor_comment TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (measurement_id, recorded_at)
)`,
			`CREATE INDEX IF NOT EXISTS idx_raw_samples_user ON raw_samples(user_id)`,
		}, nil

	case repository.TableProcessedMetrics:
		var cols strings.Builder
		for _, c := range measurement.MetricColumns() {
			cols.WriteString("    " + c + " DOUBLE PRECISION,\n")
		}
		return []string{`
CREATE TABLE IF NOT EXISTS processed_metrics (
    measurement_id TEXT PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    measured_at ` + ts + ` NOT NULL,
    start_timestamp ` + ts + ` NOT NULL,
    end_timestamp ` + ts + ` NOT NULL,
    duration_ms BIGINT NOT NULL,
` + cols.String() + `    created_at ` + ts + ` DEFAULT CURRENT_TIMESTAMP
)`,
			`CREATE INDEX IF NOT EXISTS idx_processed_metrics_user ON processed_metrics(user_id)`,
		}, nil

	case repository.TableIngestLog:
		return []string{`
CREATE TABLE IF NOT EXISTS ingest_log (
    id ` + serial + `,
    run_id TEXT NOT NULL,
    source TEXT NOT NULL,
    measurement_id TEXT,
    user_id BIGINT,
    step TEXT NOT NULL,
    status TEXT NOT NULL,
    error_class TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL DEFAULT '',
    created_at ` + ts + ` NOT NULL
)`,
			`CREATE INDEX IF NOT EXISTS idx_ingest_log_run ON ingest_log(run_id)`,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown table %q", repository.ErrInvalidInput, table)
	}
}
