package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RateLimitError is returned when a lookup source throttles us.
type RateLimitError struct {
	Source     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s rate limit exceeded (retry after %s)", e.Source, e.RetryAfter)
	}
	return fmt.Sprintf("%s rate limit exceeded", e.Source)
}

// NewRateLimitError builds a RateLimitError from a 429 response, reading the
// Retry-After header when it holds a number of seconds.
func NewRateLimitError(source string, resp *http.Response) *RateLimitError {
	err := &RateLimitError{Source: source}
	if resp == nil {
		return err
	}
	if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
		err.RetryAfter = time.Duration(secs) * time.Second
	}
	return err
}

// IsRateLimitError reports whether err is a RateLimitError, even when wrapped.
func IsRateLimitError(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}
