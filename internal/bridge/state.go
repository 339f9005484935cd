package bridge

import "sync"

// State is one of the four states in the endpoint state machine of
// spec.md §4.4.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

// GaugeSink receives connection_status gauge updates (1 = Connected, 0 =
// anything else) whenever the tracker transitions, per spec.md §4.4's
// "update the metrics gauge" requirement.
type GaugeSink interface {
	SetConnectionStatus(connected bool)
}

// StateTracker centralizes the three transition routines spec.md §4.4
// requires (→Connected, →Disconnected, →Reconnecting) behind a single
// mutex guarding connected/reconnecting together, rather than exposing
// them as independently-lockable fields.
type StateTracker struct {
	mu        sync.Mutex
	state     State
	lastErr   error
	liveCache bool
	gauge     GaugeSink
}

// NewStateTracker creates a tracker in the initial Disconnected state.
func NewStateTracker(gauge GaugeSink) *StateTracker {
	return &StateTracker{state: StateDisconnected, gauge: gauge}
}

// Connecting marks the start of a connection attempt (Disconnected →
// Connecting).
func (t *StateTracker) Connecting() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateConnecting
}

// Connected transitions to Connected, marking the cached liveness result as
// live, clearing the last error, and flipping the connection_status gauge to 1.
func (t *StateTracker) Connected() {
	t.mu.Lock()
	t.state = StateConnected
	t.lastErr = nil
	t.liveCache = true
	t.mu.Unlock()
	if t.gauge != nil {
		t.gauge.SetConnectionStatus(true)
	}
}

// Disconnected transitions to Disconnected carrying reason, resetting the
// cached liveness result and flipping the gauge to 0.
func (t *StateTracker) Disconnected(reason error) {
	t.mu.Lock()
	t.state = StateDisconnected
	t.lastErr = reason
	t.liveCache = false
	t.mu.Unlock()
	if t.gauge != nil {
		t.gauge.SetConnectionStatus(false)
	}
}

// Reconnecting transitions to Reconnecting ahead of a reconnect attempt.
func (t *StateTracker) Reconnecting() {
	t.mu.Lock()
	t.state = StateReconnecting
	t.mu.Unlock()
	if t.gauge != nil {
		t.gauge.SetConnectionStatus(false)
	}
}

// State returns the current cached state.
func (t *StateTracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// LastError returns the reason carried by the most recent Disconnected
// transition, if any.
func (t *StateTracker) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Healthy is the cheap, no-round-trip check of spec.md §4.2: it reports the
// most recently known state without touching the network.
func (t *StateTracker) Healthy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StateConnected && t.liveCache
}

// Reconcile folds the result of a direct liveness probe into the cached
// state, per spec.md §4.4: "if the probe disagrees with cached state,
// cached state is reconciled to the probe's answer before returning from a
// health query."
func (t *StateTracker) Reconcile(liveProbe bool) {
	t.mu.Lock()
	wasConnected := t.state == StateConnected
	t.liveCache = liveProbe
	if wasConnected && !liveProbe {
		t.state = StateDisconnected
	}
	t.mu.Unlock()
	if wasConnected && !liveProbe && t.gauge != nil {
		t.gauge.SetConnectionStatus(false)
	}
}
