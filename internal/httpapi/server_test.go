package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubemq-io/mq-bridge/internal/observability"
	"github.com/kubemq-io/mq-bridge/internal/supervisor"
)

func newTestSupervisor(t *testing.T) *supervisor.Supervisor {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
bindings:
  - name: orders
    type: kubemq_to_kubemq
    source: {address: a:50000, queue_name: qa, poll_interval_seconds: 1}
    target: {address: b:50000, queue_name: qb, poll_interval_seconds: 1}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	sup := supervisor.New(observability.NewNoopLogger())
	require.NoError(t, sup.Init(path))
	return sup
}

func TestHealthEndpointReportsServiceUnavailableWhenUnstarted(t *testing.T) {
	sup := newTestSupervisor(t)
	srv := New("127.0.0.1:0", sup, observability.NewNoopLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body supervisor.SystemHealth
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	assert.False(t, body.Overall)
}

func TestHealthByNameUnknownReturns404(t *testing.T) {
	sup := newTestSupervisor(t)
	srv := New("127.0.0.1:0", sup, observability.NewNoopLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsByNameUnknownReturns404(t *testing.T) {
	sup := newTestSupervisor(t)
	srv := New("127.0.0.1:0", sup, observability.NewNoopLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpointServesPrometheusExposition(t *testing.T) {
	sup := newTestSupervisor(t)
	srv := New("127.0.0.1:0", sup, observability.NewNoopLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequestIDIsPropagatedWhenProvided(t *testing.T) {
	sup := newTestSupervisor(t)
	srv := New("127.0.0.1:0", sup, observability.NewNoopLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "fixed-id")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "fixed-id", resp.Header.Get("X-Request-ID"))
}
