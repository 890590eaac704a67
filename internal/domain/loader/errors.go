package loader

import "errors"

var (
	ErrInvalidUser   = errors.New("invalid user")
	ErrEmptyBatch    = errors.New("empty raw sample batch")
	ErrInconsistent  = errors.New("batch rows disagree on measurement or user")
	ErrNotIncreasing = errors.New("raw sample timestamps are not strictly increasing")
)
