package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeGauge struct {
	values []bool
}

func (g *fakeGauge) SetConnectionStatus(connected bool) {
	g.values = append(g.values, connected)
}

func TestStateTrackerInitialStateIsDisconnected(t *testing.T) {
	tr := NewStateTracker(nil)
	assert.Equal(t, StateDisconnected, tr.State())
	assert.False(t, tr.Healthy())
}

func TestStateTrackerConnectedSetsHealthyAndGauge(t *testing.T) {
	gauge := &fakeGauge{}
	tr := NewStateTracker(gauge)

	tr.Connecting()
	assert.Equal(t, StateConnecting, tr.State())

	tr.Connected()
	assert.Equal(t, StateConnected, tr.State())
	assert.True(t, tr.Healthy())
	assert.Nil(t, tr.LastError())
	assert.Equal(t, []bool{true}, gauge.values)
}

func TestStateTrackerDisconnectedCarriesReasonAndFlipsGauge(t *testing.T) {
	gauge := &fakeGauge{}
	tr := NewStateTracker(gauge)
	tr.Connected()

	reason := errors.New("connection reset")
	tr.Disconnected(reason)

	assert.Equal(t, StateDisconnected, tr.State())
	assert.False(t, tr.Healthy())
	assert.Equal(t, reason, tr.LastError())
	assert.Equal(t, []bool{true, false}, gauge.values)
}

func TestStateTrackerReconnectingFlipsGaugeOff(t *testing.T) {
	gauge := &fakeGauge{}
	tr := NewStateTracker(gauge)
	tr.Connected()
	tr.Reconnecting()

	assert.Equal(t, StateReconnecting, tr.State())
	assert.False(t, tr.Healthy())
	assert.Equal(t, []bool{true, false}, gauge.values)
}

func TestStateTrackerReconcileForcesDisconnectWhenProbeDisagrees(t *testing.T) {
	gauge := &fakeGauge{}
	tr := NewStateTracker(gauge)
	tr.Connected()

	tr.Reconcile(false)

	assert.Equal(t, StateDisconnected, tr.State())
	assert.False(t, tr.Healthy())
	assert.Equal(t, []bool{true, false}, gauge.values)
}

func TestStateTrackerReconcileNoopWhenProbeAgrees(t *testing.T) {
	gauge := &fakeGauge{}
	tr := NewStateTracker(gauge)
	tr.Connected()

	tr.Reconcile(true)

	assert.Equal(t, StateConnected, tr.State())
	assert.True(t, tr.Healthy())
	assert.Equal(t, []bool{true}, gauge.values)
}

func TestStateTrackerReconcileIgnoredWhenNotConnected(t *testing.T) {
	gauge := &fakeGauge{}
	tr := NewStateTracker(gauge)

	tr.Reconcile(false)

	assert.Equal(t, StateDisconnected, tr.State())
	assert.Empty(t, gauge.values)
}
