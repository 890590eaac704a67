package ingest

import (
	"errors"
	"io/fs"

	"github.com/ganot/hrv-ingest/internal/domain/activity"
	"github.com/ganot/hrv-ingest/internal/domain/loader"
	"github.com/ganot/hrv-ingest/internal/domain/participant"
	"github.com/ganot/hrv-ingest/internal/failure"
	"github.com/ganot/hrv-ingest/internal/repository"
)

// ErrorClass groups failures by what an operator has to do about them.
type ErrorClass string

const (
	ClassParse     ErrorClass = "parse"
	ClassNotFound  ErrorClass = "not_found"
	ClassDuplicate ErrorClass = "duplicate"
	ClassIntegrity ErrorClass = "integrity"
	ClassInternal  ErrorClass = "internal"
)

// Classify maps an error from any stage to its class. A nil error has no
// class.
func Classify(err error) ErrorClass {
	if err == nil {
		return ""
	}

	var (
		parseErr    *failure.ParseError
		notFoundErr *failure.NotFoundError
	)
	switch {
	case errors.As(err, &notFoundErr), errors.Is(err, fs.ErrNotExist):
		return ClassNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ClassDuplicate
	case errors.Is(err, repository.ErrForeignKeyViolation),
		errors.Is(err, loader.ErrInconsistent),
		errors.Is(err, loader.ErrNotIncreasing),
		errors.Is(err, loader.ErrEmptyBatch),
		errors.Is(err, loader.ErrInvalidUser):
		return ClassIntegrity
	case errors.As(err, &parseErr),
		errors.Is(err, participant.ErrUserID),
		errors.Is(err, participant.ErrInvalidAge),
		errors.Is(err, activity.ErrNoHeader),
		errors.Is(err, activity.ErrMissingColumn):
		return ClassParse
	default:
		return ClassInternal
	}
}
