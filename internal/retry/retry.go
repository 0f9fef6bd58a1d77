// Package retry wraps transient destination API failures with exponential backoff.
//
// It is a pure control-flow decorator: it knows nothing about the operation it
// wraps and is reusable for both read and write calls. Only failures that carry
// a retryable HTTP status code are retried; everything else fails immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry policy defaults. Delay before attempt n is min(base*2^n, max).
const (
	DefaultMaxRetries = 2 // 3 attempts total
	DefaultBaseDelay  = 500 * time.Millisecond
	DefaultMaxDelay   = 2 * time.Second
)

// StatusCoder is implemented by API errors that carry an HTTP status code.
// Errors without a status code are never retried.
type StatusCoder interface {
	HTTPStatus() int
}

// retryableStatus lists the HTTP status codes treated as transient.
var retryableStatus = map[int]bool{
	409: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// Retryable reports whether err carries a status code in the retryable set.
func Retryable(err error) bool {
	var sc StatusCoder
	if !errors.As(err, &sc) {
		return false
	}
	return retryableStatus[sc.HTTPStatus()]
}

// Options overrides the default retry policy.
type Options struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (o *Options) withDefaults() Options {
	out := Options{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
	if o == nil {
		return out
	}
	if o.MaxRetries > 0 {
		out.MaxRetries = o.MaxRetries
	}
	if o.BaseDelay > 0 {
		out.BaseDelay = o.BaseDelay
	}
	if o.MaxDelay > 0 {
		out.MaxDelay = o.MaxDelay
	}
	return out
}

// newBackoff builds the per-call backoff schedule.
// BackOff implementations are stateful; always return a fresh instance.
func newBackoff(opts Options) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	// The first sleep happens before attempt 1 (n=1): base*2^1.
	bo.InitialInterval = opts.BaseDelay * 2
	bo.Multiplier = 2
	bo.MaxInterval = opts.MaxDelay
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	return backoff.WithMaxRetries(bo, opts.MaxRetries)
}

// Do invokes op, retrying transient failures per the policy in opts
// (nil opts means defaults). The final failure is returned unchanged;
// no new error type is synthesized. Callers capture results in the
// closure, e.g.:
//
//	var rec *Record
//	err := retry.Do(ctx, func() error {
//		var opErr error
//		rec, opErr = client.CreatePage(ctx, props)
//		return opErr
//	}, nil)
func Do(ctx context.Context, op func() error, opts *Options) error {
	bo := newBackoff(opts.withDefaults())
	return backoff.Retry(func() error {
		err := op()
		if err != nil && Retryable(err) {
			return err // Transient - backoff will retry
		}
		if err != nil {
			return backoff.Permanent(err) // Non-retryable - stop immediately
		}
		return nil
	}, backoff.WithContext(bo, ctx))
}
