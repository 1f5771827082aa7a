// Package backoff implements a pure exponential delay formula and a retry
// wrapper built on it. The scheduler package does not use it: a scheduled
// job body runs once per due instant, with no retry.
package backoff

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Policy computes a delay for a given attempt index: initial * factor^attempt,
// capped at MaxDelay when MaxDelay is non-zero. Zero value MaxDelay means
// uncapped exponential growth.
type Policy struct {
	Initial  time.Duration
	Factor   float64
	MaxDelay time.Duration // zero means uncapped
}

// Delay returns the backoff delay for the given zero-based attempt index.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.Initial) * math.Pow(p.Factor, float64(attempt))
	delay := time.Duration(d)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// Retry invokes fn until it succeeds or maxRetries additional attempts have
// been exhausted. maxRetries=0 means one attempt, no retry. Between failed
// attempts it sleeps per Delay, with up to 20% jitter, unless ctx is
// cancelled first. Retry re-raises (returns) the last failure once the
// budget is exhausted.
func (p Policy) Retry(ctx context.Context, maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := p.Delay(attempt - 1)
			if delay > 0 {
				jitter := time.Duration(rand.Int63n(int64(delay)/5 + 1))
				select {
				case <-time.After(delay + jitter):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}
