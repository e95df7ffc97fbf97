package dbc

import (
	"errors"
	"fmt"
)

// Errors returned by document loading.
var (
	// ErrParse indicates the input could not be parsed as DBC text.
	ErrParse = errors.New("dbc parse failed")

	// ErrRead indicates the input file could not be read.
	ErrRead = errors.New("dbc read failed")
)

// ParseError reports a parse failure for a named source.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is reports ErrParse for any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
