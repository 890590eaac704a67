// Package failure holds the error types shared by the ingestion stages.
package failure

import (
	"fmt"
)

// ParseError reports malformed input: a timestamp, a number or a document
// structure that could not be read.
type ParseError struct {
	Source string
	Line   int
	Input  string
	Err    error
}

func (e *ParseError) Error() string {
	loc := e.Source
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Source, e.Line)
	}
	switch {
	case loc != "" && e.Input != "":
		return fmt.Sprintf("parse %s: %q: %v", loc, e.Input, e.Err)
	case loc != "":
		return fmt.Sprintf("parse %s: %v", loc, e.Err)
	case e.Input != "":
		return fmt.Sprintf("parse %q: %v", e.Input, e.Err)
	default:
		return fmt.Sprintf("parse: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a required input file that does not exist.
type NotFoundError struct {
	What string
	Path string
}

func (e *NotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s not found", e.What)
	}
	return fmt.Sprintf("%s not found: %s", e.What, e.Path)
}
