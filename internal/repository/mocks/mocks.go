package mocks

import (
	"context"

	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/repository"
	"github.com/stretchr/testify/mock"
)

// Schema is a mock for repository.Schema.
type Schema struct {
	mock.Mock
}

func (m *Schema) EnsureTable(ctx context.Context, table repository.Table) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

// Writer is a mock for repository.Writer.
type Writer struct {
	mock.Mock
}

func (m *Writer) InsertUser(ctx context.Context, u participant.User) (bool, error) {
	args := m.Called(ctx, u)
	return args.Bool(0), args.Error(1)
}

func (m *Writer) InsertRawSamples(ctx context.Context, rows []measurement.RawSample) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *Writer) InsertProcessed(ctx context.Context, row measurement.ProcessedMetrics) error {
	args := m.Called(ctx, row)
	return args.Error(0)
}

// TxRunner is a mock for repository.TxRunner. Unless Err is set it passes
// its Writer to fn and returns fn's error, the way a committed or rolled back
// transaction would.
type TxRunner struct {
	mock.Mock
	Writer *Writer
}

func (m *TxRunner) InTx(ctx context.Context, fn func(repository.Writer) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Writer)
}

// UserRepository is a mock for repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetUser(ctx context.Context, id int64) (*participant.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*participant.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) ListUsers(ctx context.Context, opts repository.ListOptions) ([]participant.User, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]participant.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// MeasurementRepository is a mock for repository.MeasurementRepository.
type MeasurementRepository struct {
	mock.Mock
}

func (m *MeasurementRepository) ListMeasurements(ctx context.Context, opts repository.ListMeasurementsOptions) ([]measurement.Summary, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]measurement.Summary); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MeasurementRepository) GetRawSamples(ctx context.Context, measurementID string, opts repository.ListOptions) ([]measurement.RawSample, error) {
	args := m.Called(ctx, measurementID, opts)
	if list, ok := args.Get(0).([]measurement.RawSample); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MeasurementRepository) GetProcessed(ctx context.Context, measurementID string) (*measurement.ProcessedMetrics, error) {
	args := m.Called(ctx, measurementID)
	if p, ok := args.Get(0).(*measurement.ProcessedMetrics); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// IngestLogRepository is a mock for repository.IngestLogRepository.
type IngestLogRepository struct {
	mock.Mock
}

func (m *IngestLogRepository) Log(ctx context.Context, entry *ingestlog.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *IngestLogRepository) List(ctx context.Context, opts ingestlog.ListOptions) ([]ingestlog.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]ingestlog.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
