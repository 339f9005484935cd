package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeReceiver struct {
	mu        sync.Mutex
	connected bool
	steps     []step
	idx       int
	acks      int
	nacks     int
}

type step struct {
	payload []byte
	kind    Kind
	err     error
}

func (r *fakeReceiver) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

func (r *fakeReceiver) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = true
	return nil
}

func (r *fakeReceiver) Receive(ctx context.Context) ([]byte, Kind, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx >= len(r.steps) {
		return nil, KindNoMessage, nil
	}
	s := r.steps[r.idx]
	r.idx++
	return s.payload, s.kind, s.err
}

func (r *fakeReceiver) Ack(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks++
	return nil
}

func (r *fakeReceiver) Nack(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nacks++
	return nil
}

func TestRunPollLoopDeliversMessageAndAcks(t *testing.T) {
	r := &fakeReceiver{connected: true, steps: []step{
		{payload: []byte("hello"), kind: KindMessage},
	}}
	var received [][]byte
	cb := func(ctx context.Context, payload []byte) error {
		received = append(received, payload)
		return nil
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunPollLoop(context.Background(), stop, PollConfig{Name: "b1"}, r, cb)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)
	<-done

	assert.Equal(t, [][]byte{[]byte("hello")}, received)
	assert.Equal(t, 1, r.acks)
	assert.Equal(t, 0, r.nacks)
}

func TestRunPollLoopNacksOnCallbackFailure(t *testing.T) {
	r := &fakeReceiver{connected: true, steps: []step{
		{payload: []byte("hello"), kind: KindMessage},
	}}
	cb := func(ctx context.Context, payload []byte) error { return errors.New("sink exhausted") }

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunPollLoop(context.Background(), stop, PollConfig{Name: "b1"}, r, cb)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)
	<-done

	assert.Equal(t, 0, r.acks)
	assert.Equal(t, 1, r.nacks)
}

func TestRunPollLoopReconnectsWhenDisconnected(t *testing.T) {
	r := &fakeReceiver{connected: false}
	cb := func(ctx context.Context, payload []byte) error { return nil }

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunPollLoop(context.Background(), stop, PollConfig{Name: "b1"}, r, cb)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	assert.True(t, r.Connected())
	close(stop)
	<-done
}

func TestRunPollLoopExitsOnStop(t *testing.T) {
	r := &fakeReceiver{connected: true}
	cb := func(ctx context.Context, payload []byte) error { return nil }

	stop := make(chan struct{})
	close(stop)
	done := make(chan struct{})
	go func() {
		RunPollLoop(context.Background(), stop, PollConfig{Name: "b1"}, r, cb)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll loop did not exit after stop was closed")
	}
}
