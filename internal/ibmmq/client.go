// Package ibmmq adapts IBM MQ to the bridge.Endpoint capability, grounded
// on original_source/src/ibm_mq/client.py's connect/open/get/put flow.
package ibmmq

import (
	"context"
	"fmt"
	"sync"

	mq "github.com/ibm-messaging/mq-golang/v5/ibmmq"

	"github.com/kubemq-io/mq-bridge/internal/bridge"
	"github.com/kubemq-io/mq-bridge/internal/config"
	"github.com/kubemq-io/mq-bridge/internal/metrics"
	"github.com/kubemq-io/mq-bridge/internal/observability"
)

const getBufferSize = 256 * 1024

// Client is a bridge.Endpoint backed by an IBM MQ queue manager connection.
// One Client instance plays exactly one role (source or target) in exactly
// one Binding.
type Client struct {
	spec      *config.IBMMQSpec
	role      string
	logger    observability.Logger
	metrics   *metrics.Helper
	normalize Normalizer

	state *bridge.StateTracker

	mu            sync.Mutex
	qmgr          *mq.MQQueueManager
	queue         *mq.MQObject
	lastMD        *mq.MQMD
	stopCh        chan struct{}
	stopOnce      sync.Once
	heartbeatOnce sync.Once
	polling       bool
}

// NewClient constructs an unconnected Client. role is "source" or "target".
func NewClient(spec *config.IBMMQSpec, role string, m *metrics.Helper, logger observability.Logger) *Client {
	return &Client{
		spec:      spec,
		role:      role,
		logger:    logger,
		metrics:   m,
		normalize: normalizerFor(spec.ReceiverMode),
		state:     bridge.NewStateTracker(m),
		stopCh:    make(chan struct{}),
	}
}

func (c *Client) connectionOptions() *mq.MQCNO {
	cno := mq.NewMQCNO()
	cd := mq.NewMQCD()
	cd.ChannelName = c.spec.ChannelName
	cd.ConnectionName = fmt.Sprintf("%s(%d)", c.spec.HostName, c.spec.PortNumber)
	cno.ClientConn = cd
	cno.Options = mq.MQCNO_CLIENT_BINDING

	if c.spec.Username != "" {
		csp := mq.NewMQCSP()
		csp.AuthenticationType = mq.MQCSP_AUTH_USER_ID_AND_PWD
		csp.UserId = c.spec.Username
		csp.Password = c.spec.Password
		cno.SecurityParms = csp
	}

	if c.spec.SSL {
		sco := mq.NewMQSCO()
		sco.KeyRepository = c.spec.KeyRepoLocation
		cd.SSLCipherSpec = c.spec.SSLCipherSpec
		cno.SSLConfig = sco
	}

	return cno
}

// Start connects to the queue manager and opens the configured queue for
// both get and put, matching the source repo's single shared queue handle.
func (c *Client) Start(ctx context.Context) error {
	c.state.Connecting()

	qmgr, err := mq.Connx(c.spec.QueueManager, c.connectionOptions())
	if err != nil {
		c.state.Disconnected(err)
		return &bridge.ConnectError{Endpoint: c.endpointName(), Err: err}
	}

	od := mq.NewMQOD()
	od.ObjectName = c.spec.QueueName
	od.ObjectType = mq.MQOT_Q
	openOptions := mq.MQOO_INPUT_AS_Q_DEF | mq.MQOO_OUTPUT | mq.MQOO_FAIL_IF_QUIESCING

	queue, err := qmgr.Open(od, openOptions)
	if err != nil {
		_ = qmgr.Disc()
		c.state.Disconnected(err)
		return &bridge.ConnectError{Endpoint: c.endpointName(), Err: err}
	}

	c.mu.Lock()
	c.qmgr = &qmgr
	c.queue = &queue
	c.mu.Unlock()

	c.state.Connected()
	c.heartbeatOnce.Do(func() {
		cfg := bridge.HeartbeatConfig{Name: c.endpointName(), Logger: c.logger}
		go bridge.RunHeartbeat(ctx, c.stopCh, cfg, c)
	})
	return nil
}

// Stop closes the queue handle and disconnects from the queue manager. It
// is idempotent: a repeated call is a no-op, since stopCh is only ever
// closed once.
func (c *Client) Stop(ctx context.Context) error {
	c.stopOnce.Do(func() { close(c.stopCh) })

	c.mu.Lock()
	queue, qmgr := c.queue, c.qmgr
	c.queue, c.qmgr = nil, nil
	c.mu.Unlock()

	var firstErr error
	if queue != nil {
		if err := queue.Close(0); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if qmgr != nil {
		if err := qmgr.Disc(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.state.Disconnected(firstErr)
	return firstErr
}

// Poll launches the canonical poll loop in its own goroutine.
func (c *Client) Poll(ctx context.Context, cb bridge.DeliveryCallback) error {
	c.mu.Lock()
	if c.polling {
		c.mu.Unlock()
		return fmt.Errorf("ibmmq: poller already running for %s", c.endpointName())
	}
	c.polling = true
	c.mu.Unlock()

	cfg := bridge.PollConfig{
		Name:          c.endpointName(),
		ReconnectWait: c.spec.ReconnectDelay(),
		Logger:        c.logger,
	}
	go bridge.RunPollLoop(ctx, c.stopCh, cfg, c, cb)
	return nil
}

// Send puts one payload to the configured queue, under syncpoint so a send
// failure leaves nothing committed.
func (c *Client) Send(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	queue := c.queue
	c.mu.Unlock()

	if queue == nil || !c.state.Healthy() {
		if err := c.reconnect(ctx); err != nil {
			return err
		}
		c.mu.Lock()
		queue = c.queue
		c.mu.Unlock()
	}

	md := mq.NewMQMD()
	pmo := mq.NewMQPMO()
	pmo.Options = mq.MQPMO_SYNCPOINT | mq.MQPMO_FAIL_IF_QUIESCING
	if c.spec.MessageFormat != "" {
		md.Format = c.spec.MessageFormat
	}
	if c.spec.MessageCCSID != 0 {
		md.CodedCharSetId = int32(c.spec.MessageCCSID)
	}

	if err := queue.Put(md, pmo, payload); err != nil {
		ce := classify(err)
		c.metrics.RecordSendError()
		if ce.Kind == bridge.KindConnection || ce.Kind == bridge.KindShutdown {
			c.state.Disconnected(err)
		}
		return ce
	}

	c.mu.Lock()
	qmgr := c.qmgr
	c.mu.Unlock()
	if qmgr != nil {
		_ = qmgr.Cmit()
	}

	if c.spec.LogSent {
		c.logger.Info(ctx, "sent message to ibm mq", observability.String("queue", c.spec.QueueName))
	}
	c.metrics.RecordSent(len(payload))
	return nil
}

// Healthy reports the cached connection state, no round trip.
func (c *Client) Healthy() bool { return c.state.Healthy() }

// ProbeLive reports live iff the client still holds a queue manager handle,
// and reconciles the cached state to that answer. It makes no call to the
// queue manager, so a session that broke without an MQ call failing is not
// detected here.
func (c *Client) ProbeLive(ctx context.Context) bool {
	c.mu.Lock()
	qmgr := c.qmgr
	c.mu.Unlock()
	live := qmgr != nil
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

// Receive implements bridge.Receiver: one MQGET under syncpoint with a
// broker wait of poll_interval_ms.
func (c *Client) Receive(ctx context.Context) ([]byte, bridge.Kind, error) {
	c.mu.Lock()
	queue := c.queue
	c.mu.Unlock()
	if queue == nil {
		return nil, bridge.KindConnection, fmt.Errorf("ibmmq: receive on closed queue")
	}

	md := mq.NewMQMD()
	gmo := mq.NewMQGMO()
	gmo.Options = mq.MQGMO_WAIT | mq.MQGMO_SYNCPOINT | mq.MQGMO_FAIL_IF_QUIESCING
	gmo.WaitInterval = int32(c.spec.PollIntervalMS)

	buffer := make([]byte, getBufferSize)
	datalen, err := queue.Get(md, gmo, buffer)
	if err != nil {
		ce := classify(err)
		if ce.Kind == bridge.KindNoMessage {
			return nil, bridge.KindNoMessage, nil
		}
		c.metrics.RecordReceiveError()
		if ce.Kind == bridge.KindConnection || ce.Kind == bridge.KindShutdown {
			c.state.Disconnected(err)
		}
		return nil, ce.Kind, ce
	}

	payload := c.normalize(buffer[:datalen])
	c.lastMD = md
	if c.spec.LogReceived {
		c.logger.Info(ctx, "received message from ibm mq", observability.String("queue", c.spec.QueueName))
	}
	c.metrics.RecordReceived(len(payload))
	return payload, bridge.KindMessage, nil
}

// Ack implements bridge.Receiver: commit the syncpoint unit of work.
func (c *Client) Ack(ctx context.Context) error {
	c.mu.Lock()
	qmgr := c.qmgr
	c.mu.Unlock()
	if qmgr == nil {
		return nil
	}
	return qmgr.Cmit()
}

// Nack implements bridge.Receiver: back out the syncpoint unit of work,
// making the message redeliverable.
func (c *Client) Nack(ctx context.Context) error {
	c.mu.Lock()
	qmgr := c.qmgr
	c.mu.Unlock()
	if qmgr == nil {
		return nil
	}
	return qmgr.Back()
}

func (c *Client) endpointName() string {
	return fmt.Sprintf("ibm_mq:%s:%s", c.role, c.spec.QueueName)
}
