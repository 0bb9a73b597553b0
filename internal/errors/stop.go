// Package errors defines the error types shared by the workflow and its
// collaborators.
package errors

import "errors"

// StopError signals that the operator asked to stop (quit at a prompt,
// Ctrl+C in the TUI). It is not a failure.
type StopError struct {
	Reason string
}

func (e *StopError) Error() string {
	return e.Reason
}

// NewStopError creates a StopError with the provided reason.
func NewStopError(reason string) *StopError {
	return &StopError{Reason: reason}
}

// IsStopError reports whether err is a StopError, even when wrapped.
func IsStopError(err error) bool {
	var stopErr *StopError
	return errors.As(err, &stopErr)
}
