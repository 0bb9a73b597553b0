package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is an unexpected HTTP status from a lookup source.
type StatusError struct {
	Source     string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (HTTP %d)", e.Source, e.Message, e.StatusCode)
}

// NewStatusError describes statusCode in operator terms.
func NewStatusError(source string, statusCode int) *StatusError {
	var message string
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		message = "access denied, check the API key"
	case statusCode >= 500:
		message = "service unavailable"
	default:
		message = "unexpected response"
	}
	return &StatusError{Source: source, StatusCode: statusCode, Message: message}
}

// IsStatusError reports whether err is a StatusError, even when wrapped.
func IsStatusError(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// IsTemporary reports whether retrying later could help: throttling or a
// server-side failure.
func IsTemporary(err error) bool {
	if IsRateLimitError(err) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode >= 500
}
