// Package metrics implements the per-endpoint counters, the per-binding and
// system-wide roll-ups of spec.md §4.6, and the Prometheus-backed scrape
// surface of spec.md §6.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the process-wide Prometheus collector set. It is shared
// mutable state across bindings, per spec.md §5 — every update goes through
// a Helper, never touches the vectors directly from adapter code.
type Registry struct {
	messagesCount *prometheus.CounterVec
	messagesVol   *prometheus.CounterVec
	errorsCount   *prometheus.CounterVec
	connStatus    *prometheus.GaugeVec
}

// NewRegistry creates and registers the four series of spec.md §6's table.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		messagesCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "total_messages_count",
			Help: "Total number of messages sent or received by a binding endpoint.",
		}, []string{"binding_name", "binding_type", "direction", "queue_name"}),
		messagesVol: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "total_messages_volume",
			Help: "Total bytes sent or received by a binding endpoint.",
		}, []string{"binding_name", "binding_type", "direction", "queue_name"}),
		errorsCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "total_errors_count",
			Help: "Total number of send/receive errors observed by a binding endpoint.",
		}, []string{"binding_name", "binding_type", "direction", "queue_name"}),
		connStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "connection_status",
			Help: "1 if the endpoint is connected, 0 otherwise.",
		}, []string{"binding_name", "binding_type", "queue_name"}),
	}

	reg.MustRegister(r.messagesCount, r.messagesVol, r.errorsCount, r.connStatus)
	return r
}
