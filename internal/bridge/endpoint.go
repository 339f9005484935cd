package bridge

import "context"

// DeliveryCallback receives one received payload at a time. Its return value
// governs whether the underlying message is acknowledged (nil) or negatively
// acknowledged (non-nil), per spec.md §4.2.
type DeliveryCallback func(ctx context.Context, payload []byte) error

// Endpoint is the abstract capability every concrete queue adapter (MQ-A,
// MQ-B) must satisfy, per spec.md §4.2. The core depends only on this
// interface, never on a concrete broker client.
type Endpoint interface {
	// Start establishes the session. On failure it leaves the endpoint
	// Disconnected and returns a *ConnectError.
	Start(ctx context.Context) error

	// Stop signals any running poll loop to terminate and releases the
	// session. Idempotent.
	Stop(ctx context.Context) error

	// Poll starts a long-running background poller that invokes cb for
	// each received payload. It returns once the poller goroutine has been
	// scheduled; the goroutine runs until Stop is called. At most one
	// poller runs per endpoint at a time.
	Poll(ctx context.Context, cb DeliveryCallback) error

	// Send delivers one payload. If not connected, Send attempts a single
	// reconnect before failing; on a successful reconnect it retries the
	// send once.
	Send(ctx context.Context, payload []byte) error

	// Healthy is a cheap, no-round-trip check reporting the most recently
	// known state.
	Healthy() bool

	// ProbeLive performs a minimal server round trip. Adapters that cannot
	// support a cheaper liveness probe than a full operation may fall back
	// to Healthy's cached answer.
	ProbeLive(ctx context.Context) bool
}
