// Package supervisor implements the binding supervisor of spec.md §4.1: it
// loads the declared binding set, constructs runtime objects, and mediates
// concurrent start/stop/health/metrics across all bindings.
package supervisor

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kubemq-io/mq-bridge/internal/bridge"
	"github.com/kubemq-io/mq-bridge/internal/config"
	"github.com/kubemq-io/mq-bridge/internal/ibmmq"
	"github.com/kubemq-io/mq-bridge/internal/kubemq"
	"github.com/kubemq-io/mq-bridge/internal/metrics"
	"github.com/kubemq-io/mq-bridge/internal/observability"
)

type managedBinding struct {
	binding      *bridge.Binding
	bindingType  string
	sourceHelper *metrics.Helper
	targetHelper *metrics.Helper
}

// Supervisor is the process-wide owner of every configured Binding.
type Supervisor struct {
	logger   observability.Logger
	registry *metrics.Registry
	gatherer prometheus.Gatherer

	mu       sync.RWMutex
	bindings map[string]*managedBinding
}

// New creates a Supervisor backed by its own Prometheus registry.
func New(logger observability.Logger) *Supervisor {
	promReg := prometheus.NewRegistry()
	return &Supervisor{
		logger:   logger,
		registry: metrics.NewRegistry(promReg),
		gatherer: promReg,
		bindings: make(map[string]*managedBinding),
	}
}

// Gatherer exposes the Prometheus registry backing every binding's metrics,
// for the HTTP /metrics surface.
func (s *Supervisor) Gatherer() prometheus.Gatherer { return s.gatherer }

// Init parses configSource into BindingSpecs and constructs a Binding, two
// Endpoints and two MetricsHelpers for each, per spec.md §4.1. It performs
// no network I/O and returns a *config.ConfigError-wrapping failure if the
// configuration is invalid.
func (s *Supervisor) Init(configSource string) error {
	cfg, err := config.Load(configSource)
	if err != nil {
		return err
	}

	bindings := make(map[string]*managedBinding, len(cfg.Bindings))
	for _, spec := range cfg.Bindings {
		sourceHelper := metrics.NewHelper(s.registry, spec.Name, string(spec.Type), spec.Source.QueueName())
		targetHelper := metrics.NewHelper(s.registry, spec.Name, string(spec.Type), spec.Target.QueueName())

		sourceEndpoint := buildEndpoint(spec.Source, "source", sourceHelper, s.logger)
		targetEndpoint := buildEndpoint(spec.Target, "target", targetHelper, s.logger)

		retry := bridge.RetryPolicy{
			Disabled:     spec.Retry.DisableRetry,
			MaxAttempts:  spec.Retry.MaxRetries,
			DelaySeconds: spec.Retry.DelaySeconds,
		}

		bindings[spec.Name] = &managedBinding{
			binding:      bridge.NewBinding(spec.Name, string(spec.Type), sourceEndpoint, targetEndpoint, retry, s.logger),
			bindingType:  string(spec.Type),
			sourceHelper: sourceHelper,
			targetHelper: targetHelper,
		}

		s.logger.Info(context.Background(), "binding configured",
			observability.String("binding", spec.Name),
			observability.String("source_type", spec.Source.TypeName()),
			observability.Duration("source_poll_interval", spec.Source.PollInterval()),
			observability.Duration("source_reconnect_delay", spec.Source.ReconnectDelay()),
			observability.String("target_type", spec.Target.TypeName()),
			observability.Duration("target_poll_interval", spec.Target.PollInterval()),
			observability.Duration("target_reconnect_delay", spec.Target.ReconnectDelay()))
	}

	s.mu.Lock()
	s.bindings = bindings
	s.mu.Unlock()
	return nil
}

func buildEndpoint(spec config.EndpointSpec, role string, helper *metrics.Helper, logger observability.Logger) bridge.Endpoint {
	if spec.IBMMQ != nil {
		return ibmmq.NewClient(spec.IBMMQ, role, helper, logger)
	}
	return kubemq.NewClient(spec.KubeMQ, role, helper, logger)
}

// Start concurrently starts every binding, per spec.md §4.1: the call
// completes once every binding has either started or failed; one binding's
// failure does not prevent the others from starting.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wg sync.WaitGroup
	for name, mb := range s.bindings {
		wg.Add(1)
		go func(name string, mb *managedBinding) {
			defer wg.Done()
			if err := mb.binding.Start(ctx); err != nil {
				s.logger.Error(ctx, "binding failed to start",
					observability.String("binding", name), observability.Error(err))
			}
		}(name, mb)
	}
	wg.Wait()
}

// Stop concurrently stops every binding and waits for each to finish.
func (s *Supervisor) Stop(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var wg sync.WaitGroup
	for name, mb := range s.bindings {
		wg.Add(1)
		go func(name string, mb *managedBinding) {
			defer wg.Done()
			if err := mb.binding.Stop(ctx); err != nil {
				s.logger.Warn(ctx, "binding failed to stop cleanly",
					observability.String("binding", name), observability.Error(err))
			}
		}(name, mb)
	}
	wg.Wait()
}

// BindingHealth is one binding's health verdict.
type BindingHealth struct {
	Healthy bool `json:"healthy"`
}

// SystemHealth is the supervisor-wide health aggregate of spec.md §4.1.
type SystemHealth struct {
	Count      int                      `json:"count"`
	Overall    bool                     `json:"overall"`
	PerBinding map[string]BindingHealth `json:"per_binding"`
}

// Health returns the current aggregate health: overall is healthy iff every
// binding reports healthy.
func (s *Supervisor) Health() SystemHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := SystemHealth{Count: len(s.bindings), Overall: true, PerBinding: make(map[string]BindingHealth, len(s.bindings))}
	for name, mb := range s.bindings {
		healthy := mb.binding.Healthy()
		report.PerBinding[name] = BindingHealth{Healthy: healthy}
		if !healthy {
			report.Overall = false
		}
	}
	return report
}

// BindingHealthByName returns one binding's health, or ok=false if the name
// is unknown (callers translate that to HTTP 404).
func (s *Supervisor) BindingHealthByName(name string) (BindingHealth, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mb, ok := s.bindings[name]
	if !ok {
		return BindingHealth{}, false
	}
	return BindingHealth{Healthy: mb.binding.Healthy()}, true
}

// MetricsReport is the supervisor-wide roll-up of spec.md §4.6.
type MetricsReport struct {
	System   metrics.SystemSnapshot             `json:"system"`
	Bindings map[string]metrics.BindingSnapshot `json:"bindings"`
}

// Metrics returns the system-wide and per-binding metric roll-ups.
func (s *Supervisor) Metrics() MetricsReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bindings := make(map[string]metrics.BindingSnapshot, len(s.bindings))
	list := make([]metrics.BindingSnapshot, 0, len(s.bindings))
	for name, mb := range s.bindings {
		snap := metrics.RollupBinding(name, mb.bindingType, mb.sourceHelper, mb.targetHelper)
		bindings[name] = snap
		list = append(list, snap)
	}

	return MetricsReport{System: metrics.RollupSystem(list), Bindings: bindings}
}

// BindingMetricsByName returns one binding's roll-up, or ok=false if the
// name is unknown.
func (s *Supervisor) BindingMetricsByName(name string) (metrics.BindingSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mb, ok := s.bindings[name]
	if !ok {
		return metrics.BindingSnapshot{}, false
	}
	return metrics.RollupBinding(name, mb.bindingType, mb.sourceHelper, mb.targetHelper), true
}

// BindingCount reports how many bindings were constructed by Init.
func (s *Supervisor) BindingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}
