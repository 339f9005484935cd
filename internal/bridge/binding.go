package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/kubemq-io/mq-bridge/internal/observability"
)

// Binding owns one source Endpoint, one target Endpoint, and the
// retry-wrapped sink glueing them together, per spec.md §4.3. Metrics
// helpers are not owned here — they are wired directly into each Endpoint
// by the supervisor, per spec.md §3's ownership note ("MetricsHelpers ...
// shared by reference into each Endpoint").
type Binding struct {
	Name string
	Type string

	source Endpoint
	target Endpoint
	retry  RetryPolicy
	logger observability.Logger

	mu      sync.Mutex
	running bool
}

// NewBinding constructs a Binding. It performs no I/O.
func NewBinding(name, bindingType string, source, target Endpoint, retry RetryPolicy, logger observability.Logger) *Binding {
	return &Binding{
		Name:   name,
		Type:   bindingType,
		source: source,
		target: target,
		retry:  retry,
		logger: logger,
	}
}

// Start runs the strict start sequence of spec.md §4.3: target first, then
// source, then the retry-wrapped sink is wired into the source's poller.
func (b *Binding) Start(ctx context.Context) error {
	if err := b.target.Start(ctx); err != nil {
		return fmt.Errorf("binding %s: target start: %w", b.Name, err)
	}
	if err := b.source.Start(ctx); err != nil {
		_ = b.target.Stop(ctx)
		return fmt.Errorf("binding %s: source start: %w", b.Name, err)
	}

	sink := RetryWrapper(b.retry, b.target.Send)

	cb := func(ctx context.Context, payload []byte) error {
		if err := sink(ctx, payload); err != nil {
			b.logger.Warn(ctx, "delivery exhausted retries, negatively acknowledging",
				observability.String("binding", b.Name), observability.Error(err))
			return err
		}
		return nil
	}

	if err := b.source.Poll(ctx, cb); err != nil {
		_ = b.source.Stop(ctx)
		_ = b.target.Stop(ctx)
		return fmt.Errorf("binding %s: poll start: %w", b.Name, err)
	}

	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	return nil
}

// Stop runs the shutdown sequence of spec.md §4.3: source first (to let it
// stop accepting new messages), then target. Both stops are attempted even
// if the first fails; the first error encountered is returned.
func (b *Binding) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()

	var firstErr error
	if err := b.source.Stop(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("binding %s: source stop: %w", b.Name, err)
	}
	if err := b.target.Stop(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("binding %s: target stop: %w", b.Name, err)
	}
	return firstErr
}

// Healthy is a strict conjunction of both endpoints' cheap health checks,
// per spec.md §4.3: "the binding never synthesizes health from its own
// counters."
func (b *Binding) Healthy() bool {
	return b.source.Healthy() && b.target.Healthy()
}

// Running reports whether Start has completed successfully and Stop has not
// yet been called.
func (b *Binding) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}
