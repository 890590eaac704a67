package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/hrv-ingest/internal/domain/dataset"
	"github.com/ganot/hrv-ingest/internal/domain/ingestlog"
	"github.com/ganot/hrv-ingest/internal/failure"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	errPathOutsideRoot = errors.New("path is outside the ingest root")
	errIngestDisabled  = errors.New("ingestion is not configured")
)

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var notFound *failure.NotFoundError
	switch {
	case errors.Is(err, dataset.ErrUserNotFound):
		return &APIError{Code: "USER_NOT_FOUND", Message: "user not found", RecoveryHint: "Call list_users for known ids"}
	case errors.Is(err, dataset.ErrMeasurementNotFound):
		return &APIError{Code: "MEASUREMENT_NOT_FOUND", Message: "measurement not found", RecoveryHint: "Call list_measurements for known ids"}
	case errors.Is(err, dataset.ErrInvalidInput), errors.Is(err, ingestlog.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, errPathOutsideRoot):
		return &APIError{Code: "INVALID_PATH", Message: err.Error(), RecoveryHint: "Pass a path relative to the ingest root"}
	case errors.Is(err, errIngestDisabled):
		return &APIError{Code: "INGEST_DISABLED", Message: err.Error()}
	case errors.As(err, &notFound):
		return &APIError{Code: "PATH_NOT_FOUND", Message: notFound.Error()}
	default:
		return nil
	}
}

// toolError converts err into the error a tool handler returns.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return &APIError{Code: "INTERNAL", Message: err.Error()}
}
