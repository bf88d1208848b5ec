// Package retry provides a bounded-retry policy for outbound HTTP calls.
// Each call site instantiates a Policy with the attempt budget and backoff
// schedule it needs; transient failures are retried, everything else is
// surfaced to the caller immediately.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/TomHughesSAXTech/SAXTech-ConnectWise-Ticket-Sync/internal/logger"
)

// BackoffFunc computes the wait before the next attempt. The attempt
// argument is 1-based: it is the number of attempts already made.
type BackoffFunc func(attempt int) time.Duration

// Exponential returns a backoff of base, 2*base, 4*base, ...
func Exponential(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return base << (attempt - 1)
	}
}

// Fixed returns a linearly growing schedule of base, 2*base, 3*base, ...
func Fixed(base time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * base
	}
}

// Policy describes how a call site retries a failing operation.
type Policy struct {
	// Name identifies the call site in retry logs.
	Name string

	// MaxAttempts is the total attempt budget, including the first try.
	MaxAttempts int

	// Backoff computes the wait between attempts.
	Backoff BackoffFunc

	// Retryable reports whether an error is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Do runs fn until it succeeds, a non-retryable error occurs, or the
// attempt budget is exhausted. The last error is returned unwrapped so
// callers can inspect it with errors.As.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var last error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		last = fn(ctx)
		if last == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(last) {
			return last
		}
		if attempt == p.MaxAttempts {
			break
		}

		wait := p.Backoff(attempt)
		logger.Warn("%s: attempt %d/%d failed, retrying in %s: %v",
			p.Name, attempt, p.MaxAttempts, wait, last)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	logger.Error("%s: failed after %d attempts: %v", p.Name, p.MaxAttempts, last)
	return last
}

// IsTransient reports whether err looks like a connection or timeout
// failure. HTTP status errors are not transient; call sites decide
// separately which statuses (429) to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	// http.Client wraps failures in *url.Error; the checks above see
	// through the wrapper, so a wrapped TLS or scheme error stays
	// non-transient.
	return false
}
