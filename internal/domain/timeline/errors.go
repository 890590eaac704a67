package timeline

import "errors"

var (
	// ErrEmptyLog indicates a log without an origin line or without gaps.
	ErrEmptyLog = errors.New("interval log has no samples")
	// ErrMalformedOrigin indicates a first line that is not "YYYY-MM-DD HH:MM:SS".
	ErrMalformedOrigin = errors.New("malformed start timestamp")
	// ErrMalformedGap indicates a gap line that is not a non-negative integer.
	ErrMalformedGap = errors.New("malformed inter-beat interval")
	// ErrNonIncreasing indicates a zero gap between two timestamped samples.
	ErrNonIncreasing = errors.New("timestamps not strictly increasing")
)
