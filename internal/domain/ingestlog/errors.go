package ingestlog

import "errors"

var ErrInvalidInput = errors.New("invalid log entry")
