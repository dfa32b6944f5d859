// Package retry runs an operation again with exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how often and how patiently an operation is retried.
// MaxRetries counts the attempts after the first one; zero disables retries.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// OnRetry is called before each wait with the failed attempt's error.
	OnRetry func(err error, wait time.Duration)
}

// Enabled reports whether the policy retries at all.
func (p Policy) Enabled() bool {
	return p.MaxRetries > 0
}

// Permanent marks err so Do returns it without further attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a permanent error, the context is
// done or the policy is exhausted. The delay doubles after every attempt.
func Do(ctx context.Context, p Policy, fn func(context.Context) error) error {
	if !p.Enabled() {
		return unwrapPermanent(fn(ctx))
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialDelay
	if exp.InitialInterval <= 0 {
		exp.InitialInterval = time.Second
	}
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxElapsedTime = 0
	if p.MaxDelay > 0 {
		exp.MaxInterval = p.MaxDelay
	} else {
		exp.MaxInterval = exp.InitialInterval << p.MaxRetries
	}
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxRetries)), ctx)
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		return fn(ctx)
	}
	return unwrapPermanent(backoff.RetryNotify(op, b, p.OnRetry))
}

func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}
