package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWrapperSucceedsWithinBudget(t *testing.T) {
	var calls int
	op := func(ctx context.Context, payload []byte) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}

	wrapped := RetryWrapper(RetryPolicy{MaxAttempts: 5, DelaySeconds: 0.001}, op)
	err := wrapped(context.Background(), []byte("x"))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWrapperExhaustsAndPropagatesLastError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	op := func(ctx context.Context, payload []byte) error {
		calls++
		return boom
	}

	wrapped := RetryWrapper(RetryPolicy{MaxAttempts: 3, DelaySeconds: 0.001}, op)
	err := wrapped(context.Background(), []byte("x"))

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestRetryWrapperDisabledMakesExactlyOneAttempt(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	op := func(ctx context.Context, payload []byte) error {
		calls++
		return boom
	}

	wrapped := RetryWrapper(RetryPolicy{Disabled: true, MaxAttempts: 10}, op)
	err := wrapped(context.Background(), []byte("x"))

	require.Error(t, err)
	assert.Same(t, boom, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWrapperTransparentToSuccess(t *testing.T) {
	op := func(ctx context.Context, payload []byte) error { return nil }
	wrapped := RetryWrapper(RetryPolicy{MaxAttempts: 3, DelaySeconds: 0.001}, op)
	assert.NoError(t, wrapped(context.Background(), []byte("x")))
}

func TestRetryWrapperWaitsBetweenAttempts(t *testing.T) {
	var calls int
	op := func(ctx context.Context, payload []byte) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}

	start := time.Now()
	wrapped := RetryWrapper(RetryPolicy{MaxAttempts: 3, DelaySeconds: 0.05}, op)
	require.NoError(t, wrapped(context.Background(), []byte("x")))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
