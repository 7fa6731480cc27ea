// Package retry runs operations under a capped exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as worth another attempt under a policy without ShouldRetry.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	// Attempts counts the first call. Values below 1 mean a single call.
	Attempts int
	// Base is the wait after the first failure; it doubles per attempt up to Cap.
	Base time.Duration
	Cap  time.Duration
	// Jitter spreads each wait by ±Jitter of its value.
	Jitter float64
	// ShouldRetry overrides the Retryable marker check.
	ShouldRetry func(error) bool
	// OnRetry observes each failure that is followed by another attempt.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Do calls op until it succeeds, the policy gives up, or ctx is done.
// The last error from op is returned without its Retryable marker.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)
	var last error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		last = stripMarker(err)
		if attempt >= attempts || !p.retries(err) {
			return last
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, last, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return last
		case <-timer.C:
		}
	}
}

// Backoff returns the wait that follows the given failed attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	wait := float64(p.Base) * math.Pow(2, float64(attempt-1))
	if p.Cap > 0 {
		wait = math.Min(wait, float64(p.Cap))
	}
	if p.Jitter > 0 {
		wait *= 1 + p.Jitter*(rand.Float64()*2-1)
	}
	return time.Duration(math.Max(wait, 0))
}

func (p Policy) retries(err error) bool {
	if p.ShouldRetry != nil {
		return p.ShouldRetry(err)
	}
	return IsRetryable(err)
}

func stripMarker(err error) error {
	if re, ok := err.(*retryableError); ok {
		return re.err
	}
	return err
}

// Transaction is the policy for short database transactions that hit
// serialization failures or deadlocks.
func Transaction(transient func(error) bool) Policy {
	return Policy{Attempts: 3, Base: 50 * time.Millisecond, Cap: time.Second, Jitter: 0.05, ShouldRetry: transient}
}

// Connect is the startup policy for reaching a backing service.
func Connect(attempts int) Policy {
	return Policy{
		Attempts:    attempts,
		Base:        500 * time.Millisecond,
		Cap:         10 * time.Second,
		Jitter:      0.2,
		ShouldRetry: func(error) bool { return true },
	}
}
