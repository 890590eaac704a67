package dataset

import "errors"

var (
	// ErrUserNotFound indicates the user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrMeasurementNotFound indicates no data is stored for a measurement id.
	ErrMeasurementNotFound = errors.New("measurement not found")
	// ErrInvalidInput indicates an invalid query.
	ErrInvalidInput = errors.New("invalid dataset query")
)
