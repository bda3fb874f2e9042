// Package resilience retries remote calls that fail for transient reasons.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy decides how often and how patiently a failed call is repeated.
// Zero fields take the values of DefaultPolicy.
type Policy struct {
	// Attempts counts the first call. 1 disables retries.
	Attempts int
	// Backoff is the wait before the second attempt; it grows by Factor
	// after every further failure and never exceeds MaxBackoff.
	Backoff    time.Duration
	MaxBackoff time.Duration
	Factor     float64
	// Jitter spreads each wait by ±Jitter of its length.
	Jitter float64

	// Retryable replaces IsTransient.
	Retryable func(err error) bool
	// OnRetry is called with the failed attempt number before waiting.
	OnRetry func(attempt int, err error)
}

// DefaultPolicy is used for source downloads.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
		Factor:     2,
		Jitter:     0.25,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.Attempts <= 0 {
		p.Attempts = d.Attempts
	}
	if p.Backoff <= 0 {
		p.Backoff = d.Backoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = d.MaxBackoff
	}
	if p.Factor < 1 {
		p.Factor = d.Factor
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	if p.Retryable == nil {
		p.Retryable = IsTransient
	}
	return p
}

// wait returns the pause after the given failed attempt (1-based). A
// server-supplied Retry-After wins over the computed value but is still
// capped by MaxBackoff.
func (p Policy) wait(attempt int, err error) time.Duration {
	d := float64(p.Backoff)
	for i := 1; i < attempt && d < float64(p.MaxBackoff); i++ {
		d *= p.Factor
	}
	if p.Jitter > 0 {
		d += d * p.Jitter * (2*rand.Float64() - 1)
	}
	if ra := RetryAfter(err); ra > time.Duration(d) {
		d = float64(ra)
	}
	return max(0, min(time.Duration(d), p.MaxBackoff))
}

// Do calls fn until it succeeds, fails permanently, runs out of attempts, or
// ctx ends.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for calls returning a value. The error of the last attempt is
// returned as is so its cause stays visible.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()
	for attempt := 1; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= p.Attempts || ctx.Err() != nil || !p.Retryable(err) {
			return v, err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		t := time.NewTimer(p.wait(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return v, err
		case <-t.C:
		}
	}
}
