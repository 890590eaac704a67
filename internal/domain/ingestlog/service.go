package ingestlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Service handles ingest log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new ingest log service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record stores entry, stamping the current time if missing.
func (s *Service) Record(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.Step == "" || entry.Status == "" {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("recording ingest log entry: %w", err)
	}
	s.logger.Debug("ingest step recorded",
		"run_id", entry.RunID,
		"step", string(entry.Step),
		"status", string(entry.Status),
	)
	return nil
}

// Recent lists entries, newest first.
func (s *Service) Recent(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	return s.repo.List(ctx, opts)
}
