package service

import "errors"

// ErrUnsupported is returned when the configured store lacks an optional capability
var ErrUnsupported = errors.New("operation not supported by the configured store")

// SearchError is an internal failure while serving a request. It wraps the
// underlying store or filter error and names the step that failed.
type SearchError struct {
	Op  string
	Err error
}

func (e *SearchError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
