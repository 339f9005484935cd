package bridge

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Sink is the operation the retry wrapper decorates: one attempt at
// delivering a single payload to the target endpoint.
type Sink func(ctx context.Context, payload []byte) error

// RetryPolicy configures RetryWrapper per spec.md §4.3: max_attempts >= 1,
// a fixed (not exponential) inter-attempt delay, never applied before the
// first attempt.
type RetryPolicy struct {
	Disabled     bool
	MaxAttempts  int
	DelaySeconds float64
}

// RetryWrapper decorates sink with the bounded-retry, fixed-delay contract
// of spec.md §4.3. When Disabled, it makes exactly one attempt and
// propagates any error verbatim (§8 testable property).
func RetryWrapper(policy RetryPolicy, sink Sink) Sink {
	if policy.Disabled {
		return sink
	}

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := time.Duration(policy.DelaySeconds * float64(time.Second))

	return func(ctx context.Context, payload []byte) error {
		constant := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(maxAttempts-1)),
			ctx,
		)

		op := func() error { return sink(ctx, payload) }
		return backoff.Retry(op, constant)
	}
}
