package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeProber struct {
	mu             sync.Mutex
	healthy        bool
	live           bool
	reconnectCalls int
	reconnectErr   error
}

func (p *fakeProber) Healthy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.healthy
}

func (p *fakeProber) ProbeLive(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func (p *fakeProber) Reconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reconnectCalls++
	if p.reconnectErr == nil {
		p.healthy = true
		p.live = true
	}
	return p.reconnectErr
}

func (p *fakeProber) reconnects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reconnectCalls
}

func TestRunHeartbeatReconnectsWhenProbeFailsWhileConnected(t *testing.T) {
	p := &fakeProber{healthy: true, live: false}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunHeartbeat(context.Background(), stop, HeartbeatConfig{Name: "e1", Interval: 5 * time.Millisecond}, p)
		close(done)
	}()

	assert.Eventually(t, func() bool { return p.reconnects() >= 1 }, time.Second, time.Millisecond)
	close(stop)
	<-done
}

func TestRunHeartbeatDoesNotReconnectWhenAlreadyUnhealthy(t *testing.T) {
	p := &fakeProber{healthy: false, live: false}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunHeartbeat(context.Background(), stop, HeartbeatConfig{Name: "e1", Interval: 5 * time.Millisecond}, p)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	assert.Equal(t, 0, p.reconnects())
}

func TestRunHeartbeatDoesNotReconnectWhenProbeSucceeds(t *testing.T) {
	p := &fakeProber{healthy: true, live: true}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunHeartbeat(context.Background(), stop, HeartbeatConfig{Name: "e1", Interval: 5 * time.Millisecond}, p)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	close(stop)
	<-done

	assert.Equal(t, 0, p.reconnects())
}

func TestRunHeartbeatExitsOnStop(t *testing.T) {
	p := &fakeProber{healthy: true, live: true}

	stop := make(chan struct{})
	close(stop)
	done := make(chan struct{})
	go func() {
		RunHeartbeat(context.Background(), stop, HeartbeatConfig{Name: "e1", Interval: 5 * time.Millisecond}, p)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("heartbeat loop did not exit after stop was closed")
	}
}
