package retry_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghledger/internal/retry"
)

// statusErr is a minimal StatusCoder for tests.
type statusErr struct {
	code int
}

func (e *statusErr) Error() string   { return fmt.Sprintf("api error (HTTP %d)", e.code) }
func (e *statusErr) HTTPStatus() int { return e.code }

// fastOpts keeps the backoff schedule out of the test runtime.
var fastOpts = &retry.Options{BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"conflict", &statusErr{409}, true},
		{"rate limited", &statusErr{429}, true},
		{"server error", &statusErr{500}, true},
		{"bad gateway", &statusErr{502}, true},
		{"unavailable", &statusErr{503}, true},
		{"gateway timeout", &statusErr{504}, true},
		{"bad request", &statusErr{400}, false},
		{"unauthorized", &statusErr{401}, false},
		{"not found", &statusErr{404}, false},
		{"validation", &statusErr{422}, false},
		{"wrapped retryable", fmt.Errorf("creating page: %w", &statusErr{503}), true},
		{"no status code", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.Retryable(tt.err))
		})
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), func() error {
		calls++
		return nil
	}, fastOpts)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientThenSucceeds(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &statusErr{503}
		}
		return nil
	}, fastOpts)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	original := &statusErr{429}
	calls := 0
	err := retry.Do(context.Background(), func() error {
		calls++
		return original
	}, fastOpts)
	// Default policy is three attempts, and the last failure comes back
	// unchanged rather than wrapped in a synthesized retry error.
	assert.Equal(t, 3, calls)
	require.Error(t, err)
	var sc *statusErr
	require.ErrorAs(t, err, &sc)
	assert.Same(t, original, sc)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	original := &statusErr{404}
	calls := 0
	err := retry.Do(context.Background(), func() error {
		calls++
		return original
	}, fastOpts)
	assert.Equal(t, 1, calls)
	var sc *statusErr
	require.ErrorAs(t, err, &sc)
	assert.Same(t, original, sc)
}

func TestDoStopsOnPlainError(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := retry.Do(context.Background(), func() error {
		calls++
		return boom
	}, fastOpts)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, boom)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry.Do(ctx, func() error {
		calls++
		cancel()
		return &statusErr{503}
	}, &retry.Options{BaseDelay: time.Second, MaxDelay: time.Second})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "no further attempts after cancellation")
}

func TestDoCustomRetryBudget(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), func() error {
		calls++
		return &statusErr{500}
	}, &retry.Options{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
	require.Error(t, err)
	assert.Equal(t, 5, calls)
}
