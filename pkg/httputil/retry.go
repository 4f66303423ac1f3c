package httputil

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultRetryDelay is the wait before the second attempt.
	DefaultRetryDelay = time.Second

	// MaxRetryDelay caps the doubling backoff.
	MaxRetryDelay = 30 * time.Second
)

// transient marks an error worth another attempt.
type transient struct{ error }

func (t transient) Unwrap() error { return t.error }

// Retryable marks err as transient so that [Retry] tries again. It returns
// nil for a nil error.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transient{err}
}

// IsRetryable reports whether err, or anything it wraps, was marked by
// [Retryable].
func IsRetryable(err error) bool {
	var t transient
	return errors.As(err, &t)
}

func unmark(err error) error {
	if t, ok := err.(transient); ok {
		return t.error
	}
	return err
}

// Retry calls fn until it succeeds, fails with an unmarked error, or has
// been called attempts times. Values below one mean a single call. The
// returned error has the transient mark removed. If ctx ends during a wait,
// Retry returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	for n := 1; ; n++ {
		err := fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if n >= attempts {
			return unmark(err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, MaxRetryDelay)
	}
}
