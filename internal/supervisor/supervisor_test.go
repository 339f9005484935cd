package supervisor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubemq-io/mq-bridge/internal/config"
	"github.com/kubemq-io/mq-bridge/internal/observability"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	path := writeConfig(t, `bindings: [{name: "", type: kubemq_to_kubemq, source: {}, target: {}}]`)

	sup := New(observability.NewNoopLogger())
	err := sup.Init(path)
	require.Error(t, err)
	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, sup.BindingCount())
}

func TestInitConstructsOneBindingPerSpec(t *testing.T) {
	path := writeConfig(t, `
bindings:
  - name: orders
    type: kubemq_to_kubemq
    source: {address: a:50000, queue_name: qa, poll_interval_seconds: 1}
    target: {address: b:50000, queue_name: qb, poll_interval_seconds: 1}
  - name: invoices
    type: kubemq_to_kubemq
    source: {address: a:50000, queue_name: qc, poll_interval_seconds: 1}
    target: {address: b:50000, queue_name: qd, poll_interval_seconds: 1}
`)

	sup := New(observability.NewNoopLogger())
	require.NoError(t, sup.Init(path))
	assert.Equal(t, 2, sup.BindingCount())

	health := sup.Health()
	assert.Equal(t, 2, health.Count)
	assert.False(t, health.Overall) // neither binding has been started
	assert.Len(t, health.PerBinding, 2)
}

func TestHealthByNameUnknownBindingReturnsNotOK(t *testing.T) {
	sup := New(observability.NewNoopLogger())
	_, ok := sup.BindingHealthByName("does-not-exist")
	assert.False(t, ok)
}

func TestMetricsEmptySupervisorReportsNoBindings(t *testing.T) {
	sup := New(observability.NewNoopLogger())
	report := sup.Metrics()
	assert.Equal(t, 0, report.System.BindingCount)
	assert.Empty(t, report.Bindings)
}

func TestMetricsByNameUnknownBindingReturnsNotOK(t *testing.T) {
	sup := New(observability.NewNoopLogger())
	_, ok := sup.BindingMetricsByName("does-not-exist")
	assert.False(t, ok)
}
