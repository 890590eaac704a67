package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganot/hrv-ingest/internal/domain/measurement"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/repository"
)

// Service answers read queries over ingested data.
type Service struct {
	users        repository.UserRepository
	measurements repository.MeasurementRepository
	logger       *slog.Logger
}

// NewService creates a new dataset service.
func NewService(users repository.UserRepository, measurements repository.MeasurementRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{users: users, measurements: measurements, logger: logger}
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*participant.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// ListUsers lists users ordered by id.
func (s *Service) ListUsers(ctx context.Context, page Page) ([]participant.User, error) {
	page, err := normalize(page, DefaultLimit)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx, repository.ListOptions{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// ListMeasurements summarizes stored measurements, newest first.
func (s *Service) ListMeasurements(ctx context.Context, filter MeasurementFilter) ([]measurement.Summary, error) {
	page, err := normalize(filter.Page, DefaultLimit)
	if err != nil {
		return nil, err
	}
	out, err := s.measurements.ListMeasurements(ctx, repository.ListMeasurementsOptions{
		UserID: filter.UserID,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing measurements: %w", err)
	}
	return out, nil
}

// RawSamples returns one page of a measurement's samples in time order.
func (s *Service) RawSamples(ctx context.Context, measurementID string, page Page) ([]measurement.RawSample, error) {
	if strings.TrimSpace(measurementID) == "" {
		return nil, fmt.Errorf("%w: measurement id is required", ErrInvalidInput)
	}
	page, err := normalize(page, MaxSampleLimit)
	if err != nil {
		return nil, err
	}
	if page.Limit > MaxSampleLimit {
		page.Limit = MaxSampleLimit
	}
	rows, err := s.measurements.GetRawSamples(ctx, measurementID, repository.ListOptions{Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("getting raw samples: %w", err)
	}
	if len(rows) == 0 && page.Offset == 0 {
		return nil, ErrMeasurementNotFound
	}
	return rows, nil
}

// Processed returns the processed metrics row of a measurement.
func (s *Service) Processed(ctx context.Context, measurementID string) (*measurement.ProcessedMetrics, error) {
	if strings.TrimSpace(measurementID) == "" {
		return nil, fmt.Errorf("%w: measurement id is required", ErrInvalidInput)
	}
	row, err := s.measurements.GetProcessed(ctx, measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeasurementNotFound
		}
		return nil, fmt.Errorf("getting processed metrics: %w", err)
	}
	return row, nil
}

func normalize(p Page, def int) (Page, error) {
	if p.Limit < 0 || p.Offset < 0 {
		return Page{}, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidInput)
	}
	if p.Limit == 0 {
		p.Limit = def
	}
	return p, nil
}
