package participant

import "errors"

var (
	ErrUserID          = errors.New("cannot resolve user id")
	ErrUnknownStrategy = errors.New("unknown user id strategy")
	ErrInvalidAge      = errors.New("invalid age")
)
