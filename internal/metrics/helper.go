package metrics

import "time"

// Helper is the labelled view into the process-wide Registry for one
// endpoint, per spec.md §3's MetricsHelper: its label tuple
// {name, type, direction, queue} is stable for the helper's lifetime.
// It owns an EndpointMetrics for the in-process roll-up logic and mirrors
// every update into the shared Prometheus Registry for the scrape surface.
type Helper struct {
	registry     *Registry
	bindingName  string
	bindingType  string
	queueName    string
	Metrics      *EndpointMetrics
	now          func() time.Time
}

// NewHelper creates a Helper for one endpoint of one binding. bindingType is
// the binding's configured `type` tag (e.g. "ibm_mq_to_kubemq"), matching
// the label spec.md §6 requires on every series.
func NewHelper(registry *Registry, bindingName, bindingType, queueName string) *Helper {
	return &Helper{
		registry:    registry,
		bindingName: bindingName,
		bindingType: bindingType,
		queueName:   queueName,
		Metrics:     &EndpointMetrics{},
		now:         time.Now,
	}
}

func (h *Helper) nowNanos() int64 { return h.now().UnixNano() }

// RecordReceived updates the received-side counters for one message of the
// given byte volume.
func (h *Helper) RecordReceived(volume int) {
	h.Metrics.MessagesReceivedTotal.Add(1)
	h.Metrics.MessagesReceivedVolume.Add(uint64(volume))
	ts := h.nowNanos()
	h.Metrics.LastReceivedAt.Store(ts)

	h.registry.messagesCount.WithLabelValues(h.bindingName, h.bindingType, "received", h.queueName).Inc()
	h.registry.messagesVol.WithLabelValues(h.bindingName, h.bindingType, "received", h.queueName).Add(float64(volume))
}

// RecordSent updates the sent-side counters for one message of the given
// byte volume.
func (h *Helper) RecordSent(volume int) {
	h.Metrics.MessagesSentTotal.Add(1)
	h.Metrics.MessagesSentVolume.Add(uint64(volume))
	ts := h.nowNanos()
	h.Metrics.LastSentAt.Store(ts)

	h.registry.messagesCount.WithLabelValues(h.bindingName, h.bindingType, "sent", h.queueName).Inc()
	h.registry.messagesVol.WithLabelValues(h.bindingName, h.bindingType, "sent", h.queueName).Add(float64(volume))
}

// RecordSendError increments the send-error counters.
func (h *Helper) RecordSendError() {
	h.Metrics.ErrorsSentTotal.Add(1)
	h.Metrics.LastSendErrorAt.Store(h.nowNanos())
	h.registry.errorsCount.WithLabelValues(h.bindingName, h.bindingType, "sent", h.queueName).Inc()
}

// RecordReceiveError increments the receive-error counters.
func (h *Helper) RecordReceiveError() {
	h.Metrics.ErrorsReceivedTotal.Add(1)
	h.Metrics.LastRecvErrorAt.Store(h.nowNanos())
	h.registry.errorsCount.WithLabelValues(h.bindingName, h.bindingType, "received", h.queueName).Inc()
}

// RecordReconnectAttempt increments reconnection_attempts_total.
func (h *Helper) RecordReconnectAttempt() {
	h.Metrics.ReconnectAttemptsTotal.Add(1)
	h.Metrics.LastReconnectAt.Store(h.nowNanos())
}

// RecordReconnectFailure increments reconnection_failures_total.
func (h *Helper) RecordReconnectFailure() {
	h.Metrics.ReconnectFailuresTotal.Add(1)
}

// SetConnectionStatus implements bridge.GaugeSink: it flips the
// connection_status gauge (0/1) and the in-process Connected flag in the
// same call, per spec.md §4.4's "update the metrics gauge" requirement.
func (h *Helper) SetConnectionStatus(connected bool) {
	h.Metrics.Connected.Store(connected)
	value := 0.0
	if connected {
		value = 1.0
	}
	h.registry.connStatus.WithLabelValues(h.bindingName, h.bindingType, h.queueName).Set(value)
}
