package metrics

import "sync/atomic"

// EndpointMetrics is the per-endpoint counter/timestamp set of spec.md §3's
// data model. Every counter is an atomic monotone integer. A message total
// and its volume share one timestamp, each error counter and the reconnect
// attempt counter have their own, and ReconnectFailuresTotal has none; each
// timestamp is updated alongside its counters.
type EndpointMetrics struct {
	MessagesReceivedTotal  atomic.Uint64
	MessagesReceivedVolume atomic.Uint64
	MessagesSentTotal      atomic.Uint64
	MessagesSentVolume     atomic.Uint64
	ErrorsSentTotal        atomic.Uint64
	ErrorsReceivedTotal    atomic.Uint64
	ReconnectAttemptsTotal atomic.Uint64
	ReconnectFailuresTotal atomic.Uint64

	LastReceivedAt  atomic.Int64 // unix nanos, 0 means unset
	LastSentAt      atomic.Int64
	LastSendErrorAt atomic.Int64
	LastRecvErrorAt atomic.Int64
	LastReconnectAt atomic.Int64

	Connected atomic.Bool
}

// Snapshot is an immutable point-in-time read of an EndpointMetrics,
// used by the roll-up functions and the JSON metrics surface.
type Snapshot struct {
	MessagesReceivedTotal  uint64
	MessagesReceivedVolume uint64
	MessagesSentTotal      uint64
	MessagesSentVolume     uint64
	ErrorsSentTotal        uint64
	ErrorsReceivedTotal    uint64
	ReconnectAttemptsTotal uint64
	ReconnectFailuresTotal uint64

	LastReceivedAt  *int64
	LastSentAt      *int64
	LastSendErrorAt *int64
	LastRecvErrorAt *int64
	LastReconnectAt *int64

	Connected bool
}

func ptrIfSet(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

// Snapshot returns a consistent-enough read of m. Individual fields are read
// independently (no cross-field lock): lock-free atomic counters over a
// guarded struct.
func (m *EndpointMetrics) Snapshot() Snapshot {
	return Snapshot{
		MessagesReceivedTotal:  m.MessagesReceivedTotal.Load(),
		MessagesReceivedVolume: m.MessagesReceivedVolume.Load(),
		MessagesSentTotal:      m.MessagesSentTotal.Load(),
		MessagesSentVolume:     m.MessagesSentVolume.Load(),
		ErrorsSentTotal:        m.ErrorsSentTotal.Load(),
		ErrorsReceivedTotal:    m.ErrorsReceivedTotal.Load(),
		ReconnectAttemptsTotal: m.ReconnectAttemptsTotal.Load(),
		ReconnectFailuresTotal: m.ReconnectFailuresTotal.Load(),
		LastReceivedAt:         ptrIfSet(m.LastReceivedAt.Load()),
		LastSentAt:             ptrIfSet(m.LastSentAt.Load()),
		LastSendErrorAt:        ptrIfSet(m.LastSendErrorAt.Load()),
		LastRecvErrorAt:        ptrIfSet(m.LastRecvErrorAt.Load()),
		LastReconnectAt:        ptrIfSet(m.LastReconnectAt.Load()),
		Connected:              m.Connected.Load(),
	}
}

// LatestTimestamp returns nil if both a and b are nil, else the max of the
// non-nil values — spec.md §4.6's null-handling rule, shared by the
// per-binding and system-wide roll-ups.
func LatestTimestamp(a, b *int64) *int64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *a >= *b:
		return a
	default:
		return b
	}
}
