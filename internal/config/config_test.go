package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadValidIBMMQToKubeMQBinding(t *testing.T) {
	path := writeConfig(t, `
bindings:
  - name: orders
    type: ibm_mq_to_kubemq
    source:
      host_name: mq.internal
      port_number: 1414
      queue_manager: QM1
      channel_name: DEV.APP.SVRCONN
      queue_name: QUEUE.IN
      poll_interval_ms: 500
    target:
      address: kubemq.internal:50000
      queue_name: queue-out
      poll_interval_seconds: 5
    retry:
      max_retries: 5
      delay_seconds: 2
`)

	bindings, err := Load(path)
	require.NoError(t, err)
	require.Len(t, bindings.Bindings, 1)

	b := bindings.Bindings[0]
	assert.Equal(t, "orders", b.Name)
	assert.Equal(t, IBMMQToKubeMQ, b.Type)
	require.NotNil(t, b.Source.IBMMQ)
	assert.Equal(t, "QUEUE.IN", b.Source.QueueName())
	require.NotNil(t, b.Target.KubeMQ)
	assert.Equal(t, "queue-out", b.Target.QueueName())
	assert.Equal(t, 5, b.Retry.MaxRetries)
}

func TestLoadKubeMQToKubeMQBinding(t *testing.T) {
	path := writeConfig(t, `
bindings:
  - name: mirror
    type: kubemq_to_kubemq
    source:
      address: kubemq-a.internal:50000
      queue_name: queue-a
      poll_interval_seconds: 1
    target:
      address: kubemq-b.internal:50000
      queue_name: queue-b
      poll_interval_seconds: 1
`)

	bindings, err := Load(path)
	require.NoError(t, err)
	require.Len(t, bindings.Bindings, 1)
	assert.Equal(t, "kubemq", bindings.Bindings[0].Source.TypeName())
	assert.Equal(t, "kubemq", bindings.Bindings[0].Target.TypeName())
	assert.Equal(t, DefaultRetryPolicy(), bindings.Bindings[0].Retry)
}

func TestLoadRejectsMissingQueueName(t *testing.T) {
	path := writeConfig(t, `
bindings:
  - name: b1
    type: kubemq_to_ibm_mq
    source:
      address: kubemq.internal:50000
      poll_interval_seconds: 1
    target:
      host_name: mq.internal
      port_number: 1414
      queue_manager: QM1
      channel_name: DEV.APP.SVRCONN
      queue_name: QUEUE.OUT
      poll_interval_ms: 500
`)

	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	path := writeConfig(t, `
bindings:
  - name: b1
    type: kubemq_to_kubemq
    source: {address: a:50000, queue_name: qa, poll_interval_seconds: 1}
    target: {address: b:50000, queue_name: qb, poll_interval_seconds: 1}
  - name: b1
    type: kubemq_to_kubemq
    source: {address: a:50000, queue_name: qa, poll_interval_seconds: 1}
    target: {address: b:50000, queue_name: qb, poll_interval_seconds: 1}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate binding name")
}

func TestLoadRejectsUnsupportedType(t *testing.T) {
	path := writeConfig(t, `
bindings:
  - name: b1
    type: kubemq_to_mainframe
    source: {}
    target: {}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported binding type")
}

func TestLoadRejectsSSLWithoutRequiredFields(t *testing.T) {
	path := writeConfig(t, `
bindings:
  - name: b1
    type: ibm_mq_to_kubemq
    source:
      host_name: mq.internal
      port_number: 1414
      queue_manager: QM1
      channel_name: DEV.APP.SVRCONN
      queue_name: QUEUE.IN
      poll_interval_ms: 500
      ssl: true
    target: {address: a:50000, queue_name: qb, poll_interval_seconds: 1}
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ssl_cipher_spec")
}

func TestLoadMissingFileReturnsConfigError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "read", cfgErr.Op)
}
