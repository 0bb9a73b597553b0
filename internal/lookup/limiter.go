package lookup

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// limiter wraps rate.Limiter with the source name for error messages.
type limiter struct {
	limiter *rate.Limiter
	name    string
}

// newLimiter allows one request per interval with bursts of burst.
func newLimiter(name string, interval time.Duration, burst int) *limiter {
	return &limiter{
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		name:    name,
	}
}

// Wait blocks until a request may proceed or ctx is done.
func (l *limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}
