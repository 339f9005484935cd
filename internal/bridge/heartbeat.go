package bridge

import (
	"context"
	"time"

	"github.com/kubemq-io/mq-bridge/internal/observability"
)

// DefaultHeartbeatInterval is used when an adapter does not configure its
// own, matching spec.md §5's suggested 5-15s liveness-probe cadence.
const DefaultHeartbeatInterval = 10 * time.Second

// Prober is the direct-liveness side of Endpoint, plus the reconnect path a
// heartbeat triggers when the probe disagrees with cached state.
type Prober interface {
	Healthy() bool
	ProbeLive(ctx context.Context) bool
	Reconnect(ctx context.Context) error
}

// HeartbeatConfig carries the heartbeat loop's naming and timing knobs.
type HeartbeatConfig struct {
	Name     string
	Interval time.Duration
	Logger   observability.Logger
}

func (c HeartbeatConfig) interval() time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	return DefaultHeartbeatInterval
}

// RunHeartbeat implements spec.md §5's per-endpoint heartbeat task: on every
// tick it calls ProbeLive, which reconciles the endpoint's cached state
// (StateTracker.Reconcile) to the probe's answer, and triggers a reconnect
// if the probe fails while the endpoint was Connected. It blocks until stop
// is closed or ctx is cancelled, so callers run it in its own goroutine.
func RunHeartbeat(ctx context.Context, stop <-chan struct{}, cfg HeartbeatConfig, p Prober) {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.NewNoopLogger()
	}

	ticker := time.NewTicker(cfg.interval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			wasHealthy := p.Healthy()
			if p.ProbeLive(ctx) || !wasHealthy {
				continue
			}
			logger.Warn(ctx, "heartbeat probe failed while connected, reconnecting",
				observability.String("endpoint", cfg.Name))
			if err := p.Reconnect(ctx); err != nil {
				logger.Error(ctx, "heartbeat-triggered reconnect failed",
					observability.String("endpoint", cfg.Name), observability.Error(err))
			}
		}
	}
}
