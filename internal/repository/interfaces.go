package repository

import (
	"context"

	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
)

// Table names a stored relation.
type Table string

const (
	TableUsers            Table = "users"
	TableRawSamples       Table = "raw_samples"
	TableProcessedMetrics Table = "processed_metrics"
	TableIngestLog        Table = "ingest_log"
)

// Tables lists every relation in creation order.
var Tables = []Table{TableUsers, TableRawSamples, TableProcessedMetrics, TableIngestLog}

// Schema creates relations on first use.
type Schema interface {
	EnsureTable(ctx context.Context, table Table) error
}

// Writer inserts measurement data. Implementations are bound to one
// transaction.
type Writer interface {
	// InsertUser stores u unless a user with the same id exists and reports
	// whether a row was written.
	InsertUser(ctx context.Context, u participant.User) (bool, error)
	InsertRawSamples(ctx context.Context, rows []measurement.RawSample) error
	InsertProcessed(ctx context.Context, row measurement.ProcessedMetrics) error
}

// TxRunner runs fn inside one transaction, committing when fn returns nil
// and rolling back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Writer) error) error
}

// UserRepository reads stored users.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*participant.User, error)
	ListUsers(ctx context.Context, opts ListOptions) ([]participant.User, error)
}

// MeasurementRepository reads stored measurement data.
type MeasurementRepository interface {
	ListMeasurements(ctx context.Context, opts ListMeasurementsOptions) ([]measurement.Summary, error)
	GetRawSamples(ctx context.Context, measurementID string, opts ListOptions) ([]measurement.RawSample, error)
	GetProcessed(ctx context.Context, measurementID string) (*measurement.ProcessedMetrics, error)
}

// IngestLogRepository manages ingest log persistence
type IngestLogRepository interface {
	Log(ctx context.Context, entry *ingestlog.Entry) error
	List(ctx context.Context, opts ingestlog.ListOptions) ([]ingestlog.Entry, error)
}

// ListOptions pages a listing.
type ListOptions struct {
	Limit  int
	Offset int
}

// ListMeasurementsOptions provides filtering options for listing measurements
type ListMeasurementsOptions struct {
	UserID *int64
	Limit  int
	Offset int
}
