package metrics

// BindingSnapshot is the per-binding roll-up of spec.md §4.6: the source
// endpoint's receive-side counters combined with the target endpoint's
// send-side counters, plus reconnection activity summed across both.
type BindingSnapshot struct {
	Name string
	Type string

	MessagesReceivedTotal  uint64
	MessagesReceivedVolume uint64
	MessagesSentTotal      uint64
	MessagesSentVolume     uint64
	ErrorsReceivedTotal    uint64
	ErrorsSentTotal        uint64
	ReconnectAttemptsTotal uint64
	ReconnectFailuresTotal uint64

	LastReceivedAt  *int64
	LastSentAt      *int64
	LastRecvErrorAt *int64
	LastSendErrorAt *int64
	LastReconnectAt *int64

	SourceConnected bool
	TargetConnected bool
}

// RollupBinding combines a source Helper's receive-side counters with a
// target Helper's send-side counters into one BindingSnapshot. Reconnection
// counters and timestamps are summed/maxed across both endpoints, since
// either side may independently reconnect.
func RollupBinding(name, bindingType string, source, target *Helper) BindingSnapshot {
	src := source.Metrics.Snapshot()
	tgt := target.Metrics.Snapshot()

	return BindingSnapshot{
		Name: name,
		Type: bindingType,

		MessagesReceivedTotal:  src.MessagesReceivedTotal,
		MessagesReceivedVolume: src.MessagesReceivedVolume,
		MessagesSentTotal:      tgt.MessagesSentTotal,
		MessagesSentVolume:     tgt.MessagesSentVolume,
		ErrorsReceivedTotal:    src.ErrorsReceivedTotal,
		ErrorsSentTotal:        tgt.ErrorsSentTotal,
		ReconnectAttemptsTotal: src.ReconnectAttemptsTotal + tgt.ReconnectAttemptsTotal,
		ReconnectFailuresTotal: src.ReconnectFailuresTotal + tgt.ReconnectFailuresTotal,

		LastReceivedAt:  src.LastReceivedAt,
		LastSentAt:      tgt.LastSentAt,
		LastRecvErrorAt: src.LastRecvErrorAt,
		LastSendErrorAt: tgt.LastSendErrorAt,
		LastReconnectAt: LatestTimestamp(src.LastReconnectAt, tgt.LastReconnectAt),

		SourceConnected: src.Connected,
		TargetConnected: tgt.Connected,
	}
}

// SystemSnapshot is the system-wide roll-up: every counter summed across all
// bindings, and every timestamp the latest seen across all bindings.
type SystemSnapshot struct {
	BindingCount int

	MessagesReceivedTotal  uint64
	MessagesReceivedVolume uint64
	MessagesSentTotal      uint64
	MessagesSentVolume     uint64
	ErrorsReceivedTotal    uint64
	ErrorsSentTotal        uint64
	ReconnectAttemptsTotal uint64
	ReconnectFailuresTotal uint64

	LastReceivedAt  *int64
	LastSentAt      *int64
	LastRecvErrorAt *int64
	LastSendErrorAt *int64
	LastReconnectAt *int64
}

// RollupSystem sums a set of per-binding snapshots into one system-wide
// snapshot, per spec.md §4.6.
func RollupSystem(bindings []BindingSnapshot) SystemSnapshot {
	var sys SystemSnapshot
	sys.BindingCount = len(bindings)

	for _, b := range bindings {
		sys.MessagesReceivedTotal += b.MessagesReceivedTotal
		sys.MessagesReceivedVolume += b.MessagesReceivedVolume
		sys.MessagesSentTotal += b.MessagesSentTotal
		sys.MessagesSentVolume += b.MessagesSentVolume
		sys.ErrorsReceivedTotal += b.ErrorsReceivedTotal
		sys.ErrorsSentTotal += b.ErrorsSentTotal
		sys.ReconnectAttemptsTotal += b.ReconnectAttemptsTotal
		sys.ReconnectFailuresTotal += b.ReconnectFailuresTotal

		sys.LastReceivedAt = LatestTimestamp(sys.LastReceivedAt, b.LastReceivedAt)
		sys.LastSentAt = LatestTimestamp(sys.LastSentAt, b.LastSentAt)
		sys.LastRecvErrorAt = LatestTimestamp(sys.LastRecvErrorAt, b.LastRecvErrorAt)
		sys.LastSendErrorAt = LatestTimestamp(sys.LastSendErrorAt, b.LastSendErrorAt)
		sys.LastReconnectAt = LatestTimestamp(sys.LastReconnectAt, b.LastReconnectAt)
	}

	return sys
}
