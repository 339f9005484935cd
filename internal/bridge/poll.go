package bridge

import (
	"context"
	"time"

	"github.com/kubemq-io/mq-bridge/internal/observability"
)

// Receiver is the adapter-specific inner step of the canonical poll loop,
// spec.md §4.5. Concrete adapters implement Receiver against their broker
// SDK; RunPollLoop drives the shared state-machine reaction to each
// classified outcome.
type Receiver interface {
	// Connected reports the cached connection state, no round trip.
	Connected() bool
	// Reconnect attempts to (re)establish the session.
	Reconnect(ctx context.Context) error
	// Receive waits up to the adapter's configured poll interval for one
	// message, returning its classified outcome.
	Receive(ctx context.Context) (payload []byte, kind Kind, err error)
	// Ack confirms successful delivery of the most recently received message.
	Ack(ctx context.Context) error
	// Nack marks the most recently received message as redeliverable.
	Nack(ctx context.Context) error
}

// PollConfig carries the loop's naming and timing knobs.
type PollConfig struct {
	Name          string
	ReconnectWait time.Duration
	ShutdownWait  time.Duration
	Logger        observability.Logger
}

func (c PollConfig) reconnectWait() time.Duration {
	if c.ReconnectWait > 0 {
		return c.ReconnectWait
	}
	return 5 * time.Second
}

func (c PollConfig) shutdownWait() time.Duration {
	if c.ShutdownWait > 0 {
		return c.ShutdownWait
	}
	return 30 * time.Second
}

// RunPollLoop implements the canonical 8-step iteration of spec.md §4.5. It
// blocks until stop is closed or ctx is cancelled, so callers run it in its
// own goroutine.
func RunPollLoop(ctx context.Context, stop <-chan struct{}, cfg PollConfig, r Receiver, cb DeliveryCallback) {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNoopLogger()
	}

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		if !r.Connected() {
			if err := r.Reconnect(ctx); err != nil {
				logger.Warn(ctx, "reconnect attempt failed",
					observability.String("binding", cfg.Name), observability.Error(err))
				if !interruptibleSleep(ctx, stop, cfg.reconnectWait()) {
					return
				}
				continue
			}
		}

		payload, kind, recvErr := r.Receive(ctx)
		switch kind {
		case KindMessage:
			if cbErr := cb(ctx, payload); cbErr != nil {
				_ = r.Nack(ctx)
			} else {
				_ = r.Ack(ctx)
			}
		case KindNoMessage:
			if !interruptibleSleep(ctx, stop, 100*time.Millisecond) {
				return
			}
		case KindTransient:
			logger.Debug(ctx, "transient receive error",
				observability.String("binding", cfg.Name), observability.Error(recvErr))
			if !interruptibleSleep(ctx, stop, 100*time.Millisecond) {
				return
			}
		case KindConnection:
			logger.Warn(ctx, "connection lost during poll",
				observability.String("binding", cfg.Name), observability.Error(recvErr))
		case KindShutdown:
			logger.Warn(ctx, "remote endpoint is shutting down",
				observability.String("binding", cfg.Name), observability.Error(recvErr))
			if !interruptibleSleep(ctx, stop, cfg.shutdownWait()) {
				return
			}
		default: // KindConfiguration, KindPermanent, KindUnknown
			logger.Error(ctx, "unrecoverable receive error, continuing",
				observability.String("binding", cfg.Name), observability.Error(recvErr))
			if !interruptibleSleep(ctx, stop, time.Second) {
				return
			}
		}
	}
}

// interruptibleSleep waits for d unless stop or ctx end first. It returns
// false when the loop should exit immediately.
func interruptibleSleep(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}
