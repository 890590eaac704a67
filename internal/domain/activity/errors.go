package activity

import "errors"

var (
	ErrNoHeader       = errors.New("protocol has no header row")
	ErrMissingColumn  = errors.New("protocol header is missing a column")
	ErrMalformedClock = errors.New("malformed time of day")
)
