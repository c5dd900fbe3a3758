// Package retry provides a bounded, fixed-delay retry policy.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 5 * time.Second
)

// Policy describes how many times an operation is attempted and how long to wait
// between attempts. There is no wait after the final attempt.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy returns three attempts with a five second delay.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// Notify is called after every failed attempt with the 1-based attempt number.
type Notify func(attempt int, err error)

// Do runs op until it succeeds, the attempts are exhausted, or ctx is done.
// It returns the last error from op, or ctx's error if cancelled while waiting.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, notify Notify) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(delay)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return op(ctx)
	}, b, func(err error, _ time.Duration) {
		if notify != nil {
			notify(attempt, err)
		}
	})
}
