// Package kubemq adapts KubeMQ queues to the bridge.Endpoint capability,
// grounded on original_source/src/kubemq/client.py's connect/send/receive
// flow. Receive uses the transactional queues_stream API so each message
// carries its own Ack/Reject, mirroring the original's message.ack()/
// message.reject() rather than the destructive, non-transactional queue
// poll.
package kubemq

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	qs "github.com/kubemq-io/kubemq-go/queues_stream"

	"github.com/kubemq-io/mq-bridge/internal/bridge"
	"github.com/kubemq-io/mq-bridge/internal/config"
	"github.com/kubemq-io/mq-bridge/internal/metrics"
	"github.com/kubemq-io/mq-bridge/internal/observability"
)

// Client is a bridge.Endpoint backed by a KubeMQ queues_stream channel.
type Client struct {
	spec    *config.KubeMQSpec
	role    string
	logger  observability.Logger
	metrics *metrics.Helper
	state   *bridge.StateTracker

	mu            sync.Mutex
	client        *qs.QueuesStreamClient
	stopCh        chan struct{}
	stopOnce      sync.Once
	heartbeatOnce sync.Once
	polling       bool
	lastMessage   *qs.QueueMessage
}

// NewClient constructs an unconnected Client. role is "source" or "target".
func NewClient(spec *config.KubeMQSpec, role string, m *metrics.Helper, logger observability.Logger) *Client {
	return &Client{
		spec:    spec,
		role:    role,
		logger:  logger,
		metrics: m,
		state:   bridge.NewStateTracker(m),
		stopCh:  make(chan struct{}),
	}
}

func (c *Client) clientID() string {
	if c.spec.ClientID != "" {
		return c.spec.ClientID
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.NewString()
}

// Start dials the KubeMQ gRPC endpoint.
func (c *Client) Start(ctx context.Context) error {
	c.state.Connecting()

	opts := []qs.Option{
		qs.WithAddress(c.spec.Address, 0),
		qs.WithClientId(c.clientID()),
		qs.WithTransportType(qs.TransportTypeGRPC),
	}
	if c.spec.AuthToken != "" {
		opts = append(opts, qs.WithAuthToken(c.spec.AuthToken))
	}
	if c.spec.TLS {
		opts = append(opts, qs.WithCredentials(c.spec.TLSCertFile, c.spec.TLSKeyFile, c.spec.TLSCAFile))
	}

	client, err := qs.NewQueuesStreamClient(ctx, opts...)
	if err != nil {
		c.state.Disconnected(err)
		return &bridge.ConnectError{Endpoint: c.endpointName(), Err: err}
	}

	c.mu.Lock()
	c.client = client
	c.mu.Unlock()

	c.state.Connected()
	c.heartbeatOnce.Do(func() {
		cfg := bridge.HeartbeatConfig{Name: c.endpointName(), Logger: c.logger}
		go bridge.RunHeartbeat(ctx, c.stopCh, cfg, c)
	})
	return nil
}

// Stop closes the underlying gRPC connection. Idempotent: a repeated call
// is a no-op, since stopCh is only ever closed once.
func (c *Client) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stopCh) })

	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	var err error
	if client != nil {
		err = client.Close()
	}
	c.state.Disconnected(err)
	return err
}

// Poll launches the canonical poll loop in its own goroutine.
func (c *Client) Poll(ctx context.Context, cb bridge.DeliveryCallback) error {
	c.mu.Lock()
	if c.polling {
		c.mu.Unlock()
		return fmt.Errorf("kubemq: poller already running for %s", c.endpointName())
	}
	c.polling = true
	c.mu.Unlock()

	cfg := bridge.PollConfig{Name: c.endpointName(), Logger: c.logger}
	go bridge.RunPollLoop(ctx, c.stopCh, cfg, c, cb)
	return nil
}

// Send delivers one payload to the configured queue channel.
func (c *Client) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	if client == nil || !c.state.Healthy() {
		if err := c.reconnect(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		client = c.client
		c.mu.Unlock()
	}

	msg := qs.NewQueueMessage().
		SetId(uuid.NewString()).
		SetChannel(c.spec.QueueName).
		SetBody(payload)

	result, err := client.Send(ctx, msg)
	if err != nil {
		c.metrics.RecordSendError()
		return classify(err)
	}
	if result != nil && result.IsError {
		c.metrics.RecordSendError()
		return bridge.Classify(bridge.KindPermanent, fmt.Errorf("kubemq: send rejected: %s", result.Error))
	}

	c.metrics.RecordSent(len(payload))
	return nil
}

// Healthy reports the cached connection state, no round trip.
func (c *Client) Healthy() bool { return c.state.Healthy() }

// ProbeLive pings the KubeMQ server.
func (c *Client) ProbeLive(ctx context.Context) bool {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		c.state.Reconcile(false)
		return false
	}
	_, err := client.Ping(ctx)
	live := err == nil
	c.state.Reconcile(live)
	return live
}

// --- bridge.Receiver ---

// Connected implements bridge.Receiver.
func (c *Client) Connected() bool { return c.state.Healthy() }

// Reconnect implements bridge.Receiver.
func (c *Client) Reconnect(ctx context.Context) error { return c.reconnect(ctx) }

func (c *Client) reconnect(ctx context.Context) error {
	c.state.Reconnecting()
	c.metrics.RecordReconnectAttempt()
	if err := c.Start(ctx); err != nil {
		c.metrics.RecordReconnectFailure()
		return err
	}
	return nil
}

// Receive implements bridge.Receiver: a single transactional poll for up to
// one message, waiting the configured interval. The returned message keeps
// its own Ack/Reject handle open on the stream until Ack or Nack is called,
// so an unacknowledged message is redelivered rather than lost.
func (c *Client) Receive(ctx context.Context) ([]byte, bridge.Kind, error) {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()
	if client == nil {
		return nil, bridge.KindConnection, fmt.Errorf("kubemq: receive with no connection")
	}

	req := qs.NewPollRequest().
		SetChannel(c.spec.QueueName).
		SetMaxItems(1).
		SetWaitTimeout(c.spec.PollIntervalSeconds * 1000)

	resp, err := client.Poll(ctx, req)
	if err != nil {
		ce := classify(err)
		if ce.Kind == bridge.KindNoMessage {
			return nil, bridge.KindNoMessage, nil
		}
		c.metrics.RecordReceiveError()
		return nil, ce.Kind, ce
	}
	if resp.IsError {
		ce := bridge.Classify(bridge.KindPermanent, fmt.Errorf("kubemq: %s", resp.Error))
		c.metrics.RecordReceiveError()
		return nil, ce.Kind, ce
	}
	if len(resp.Messages) == 0 {
		return nil, bridge.KindNoMessage, nil
	}

	msg := resp.Messages[0]
	c.mu.Lock()
	c.lastMessage = msg
	c.mu.Unlock()

	c.metrics.RecordReceived(len(msg.Body))
	return msg.Body, bridge.KindMessage, nil
}

// Ack implements bridge.Receiver: acknowledges the most recently received
// message on the transactional stream.
func (c *Client) Ack(ctx context.Context) error {
	c.mu.Lock()
	msg := c.lastMessage
	c.mu.Unlock()
	if msg == nil {
		return nil
	}
	return msg.Ack()
}

// Nack implements bridge.Receiver: rejects the most recently received
// message, returning it to the queue for redelivery.
func (c *Client) Nack(ctx context.Context) error {
	c.mu.Lock()
	msg := c.lastMessage
	c.mu.Unlock()
	if msg == nil {
		return nil
	}
	return msg.Reject()
}

func (c *Client) endpointName() string {
	return fmt.Sprintf("kubemq:%s:%s", c.role, c.spec.QueueName)
}
