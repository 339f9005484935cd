// Package config loads and validates the daemon's YAML binding set.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BindingType selects which endpoint variant plays source and which plays
// target for a binding, per spec.md §6.
type BindingType string

const (
	IBMMQToKubeMQ   BindingType = "ibm_mq_to_kubemq"
	KubeMQToIBMMQ   BindingType = "kubemq_to_ibm_mq"
	KubeMQToKubeMQ  BindingType = "kubemq_to_kubemq"
)

func (t BindingType) valid() bool {
	switch t {
	case IBMMQToKubeMQ, KubeMQToIBMMQ, KubeMQToKubeMQ:
		return true
	}
	return false
}

// RetryPolicy is the optional per-binding retry configuration.
type RetryPolicy struct {
	DisableRetry  bool    `yaml:"disable_retry"`
	MaxRetries    int     `yaml:"max_retries"`
	DelaySeconds  float64 `yaml:"delay_seconds"`
}

// DefaultRetryPolicy matches the defaults chosen when `retry` is omitted.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, DelaySeconds: 1}
}

func (r RetryPolicy) validate() error {
	if r.DisableRetry {
		return nil
	}
	if r.MaxRetries < 1 {
		return fmt.Errorf("retry.max_retries must be >= 1, got %d", r.MaxRetries)
	}
	if r.DelaySeconds < 0 {
		return fmt.Errorf("retry.delay_seconds must be >= 0, got %f", r.DelaySeconds)
	}
	return nil
}

// IBMMQSpec is the MQ-A endpoint configuration, field set per spec.md §6.
type IBMMQSpec struct {
	HostName          string `yaml:"host_name"`
	PortNumber        int    `yaml:"port_number"`
	QueueManager      string `yaml:"queue_manager"`
	ChannelName       string `yaml:"channel_name"`
	QueueName         string `yaml:"queue_name"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	PollIntervalMS    int    `yaml:"poll_interval_ms"`
	SSL               bool   `yaml:"ssl"`
	SSLCipherSpec     string `yaml:"ssl_cipher_spec"`
	KeyRepoLocation   string `yaml:"key_repo_location"`
	MessageCCSID      int    `yaml:"message_ccsid"`
	MessageFormat     string `yaml:"message_format"`
	ReceiverMode      string `yaml:"receiver_mode"`
	SenderMode        string `yaml:"sender_mode"`
	LogReceived       bool   `yaml:"log_received_messages"`
	LogSent           bool   `yaml:"log_sent_messages"`
	ReconnectDelaySec float64 `yaml:"reconnect_delay"`
}

func (s *IBMMQSpec) validate() error {
	if s.QueueName == "" {
		return fmt.Errorf("ibm_mq: queue_name is required")
	}
	if s.PortNumber < 1 || s.PortNumber > 65535 {
		return fmt.Errorf("ibm_mq: port_number must be in [1,65535], got %d", s.PortNumber)
	}
	if s.PollIntervalMS < 1 {
		return fmt.Errorf("ibm_mq: poll_interval_ms must be >= 1, got %d", s.PollIntervalMS)
	}
	if s.SSL && (s.SSLCipherSpec == "" || s.KeyRepoLocation == "") {
		return fmt.Errorf("ibm_mq: ssl_cipher_spec and key_repo_location are required when ssl is enabled")
	}
	switch s.ReceiverMode {
	case "", "default", "rfh2", "no_rfh2":
	default:
		return fmt.Errorf("ibm_mq: unsupported receiver_mode %q", s.ReceiverMode)
	}
	switch s.SenderMode {
	case "", "default", "rfh2", "custom":
	default:
		return fmt.Errorf("ibm_mq: unsupported sender_mode %q", s.SenderMode)
	}
	return nil
}

// ReconnectDelay returns the configured fixed reconnect delay, defaulting
// to 5s when unset.
func (s *IBMMQSpec) ReconnectDelay() time.Duration {
	if s.ReconnectDelaySec <= 0 {
		return 5 * time.Second
	}
	return time.Duration(s.ReconnectDelaySec * float64(time.Second))
}

func (s *IBMMQSpec) pollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// KubeMQSpec is the MQ-B endpoint configuration, field set per spec.md §6.
type KubeMQSpec struct {
	Address             string `yaml:"address"`
	QueueName           string `yaml:"queue_name"`
	ClientID            string `yaml:"client_id"`
	AuthToken           string `yaml:"auth_token"`
	TLS                 bool   `yaml:"tls"`
	TLSCertFile         string `yaml:"tls_cert_file"`
	TLSKeyFile          string `yaml:"tls_key_file"`
	TLSCAFile           string `yaml:"tls_ca_file"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
}

func (s *KubeMQSpec) validate() error {
	if s.Address == "" {
		return fmt.Errorf("kubemq: address is required")
	}
	if s.QueueName == "" {
		return fmt.Errorf("kubemq: queue_name is required")
	}
	if s.PollIntervalSeconds < 1 {
		return fmt.Errorf("kubemq: poll_interval_seconds must be >= 1, got %d", s.PollIntervalSeconds)
	}
	return nil
}

func (s *KubeMQSpec) pollInterval() time.Duration {
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// EndpointSpec is the tagged union of source/target configuration: exactly
// one of IBMMQ or KubeMQ is populated, selected by the owning binding's type.
type EndpointSpec struct {
	IBMMQ  *IBMMQSpec
	KubeMQ *KubeMQSpec
}

// QueueName returns the queue identity regardless of variant.
func (e EndpointSpec) QueueName() string {
	if e.IBMMQ != nil {
		return e.IBMMQ.QueueName
	}
	if e.KubeMQ != nil {
		return e.KubeMQ.QueueName
	}
	return ""
}

// TypeName reports the adapter family for metric labels ("ibm_mq" / "kubemq").
func (e EndpointSpec) TypeName() string {
	if e.IBMMQ != nil {
		return "ibm_mq"
	}
	return "kubemq"
}

// PollInterval returns the configured broker-wait interval regardless of
// variant (spec.md §4.5 step 2).
func (e EndpointSpec) PollInterval() time.Duration {
	if e.IBMMQ != nil {
		return e.IBMMQ.pollInterval()
	}
	return e.KubeMQ.pollInterval()
}

// ReconnectDelay returns the configured fixed reconnect delay (spec.md §4.7).
// KubeMQ endpoints have no reconnect_delay option and always report the same
// 5s that IBM MQ falls back to when unset.
func (e EndpointSpec) ReconnectDelay() time.Duration {
	if e.IBMMQ != nil {
		return e.IBMMQ.ReconnectDelay()
	}
	return 5 * time.Second
}

func (e *EndpointSpec) validate() error {
	if e.IBMMQ == nil && e.KubeMQ == nil {
		return fmt.Errorf("endpoint spec has neither ibm_mq nor kubemq configuration")
	}
	if e.IBMMQ != nil {
		return e.IBMMQ.validate()
	}
	return e.KubeMQ.validate()
}

// rawEndpoint is the YAML shape before it is resolved into an EndpointSpec
// variant based on the binding's type tag.
type rawEndpoint map[string]any

// BindingSpec is one named, unidirectional pipeline, per spec.md §3.
type BindingSpec struct {
	Name   string
	Type   BindingType
	Source EndpointSpec
	Target EndpointSpec
	Retry  RetryPolicy
}

// Bindings is the daemon's full, validated configuration.
type Bindings struct {
	Bindings []BindingSpec
}

type rawBinding struct {
	Name   string       `yaml:"name"`
	Type   BindingType  `yaml:"type"`
	Source rawEndpoint  `yaml:"source"`
	Target rawEndpoint  `yaml:"target"`
	Retry  *RetryPolicy `yaml:"retry"`
}

type rawFile struct {
	Bindings []rawBinding `yaml:"bindings"`
}

// Load reads, parses and validates the bindings file at path, returning a
// *ConfigError wrapped failure on any violation (spec.md §7: ConfigError is
// fatal at startup).
func Load(path string) (*Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Op: "read", Err: err}
	}

	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Op: "parse", Err: err}
	}

	bindings := &Bindings{}
	seen := make(map[string]bool, len(raw.Bindings))

	for i, rb := range raw.Bindings {
		spec, err := resolveBinding(rb)
		if err != nil {
			return nil, &ConfigError{Op: fmt.Sprintf("bindings[%d]", i), Err: err}
		}
		if spec.Name == "" {
			return nil, &ConfigError{Op: fmt.Sprintf("bindings[%d]", i), Err: fmt.Errorf("name is required")}
		}
		if seen[spec.Name] {
			return nil, &ConfigError{Op: "bindings", Err: fmt.Errorf("duplicate binding name %q", spec.Name)}
		}
		seen[spec.Name] = true
		bindings.Bindings = append(bindings.Bindings, spec)
	}

	return bindings, nil
}

func resolveBinding(rb rawBinding) (BindingSpec, error) {
	if !rb.Type.valid() {
		return BindingSpec{}, fmt.Errorf("unsupported binding type %q", rb.Type)
	}

	sourceIsIBMMQ := rb.Type == IBMMQToKubeMQ
	targetIsIBMMQ := rb.Type == KubeMQToIBMMQ

	source, err := decodeEndpoint(rb.Source, sourceIsIBMMQ)
	if err != nil {
		return BindingSpec{}, fmt.Errorf("source: %w", err)
	}
	target, err := decodeEndpoint(rb.Target, targetIsIBMMQ)
	if err != nil {
		return BindingSpec{}, fmt.Errorf("target: %w", err)
	}

	retry := DefaultRetryPolicy()
	if rb.Retry != nil {
		retry = *rb.Retry
	}
	if err := retry.validate(); err != nil {
		return BindingSpec{}, err
	}

	spec := BindingSpec{
		Name:   rb.Name,
		Type:   rb.Type,
		Source: source,
		Target: target,
		Retry:  retry,
	}
	if err := spec.Source.validate(); err != nil {
		return BindingSpec{}, fmt.Errorf("source: %w", err)
	}
	if err := spec.Target.validate(); err != nil {
		return BindingSpec{}, fmt.Errorf("target: %w", err)
	}
	return spec, nil
}

func decodeEndpoint(raw rawEndpoint, isIBMMQ bool) (EndpointSpec, error) {
	if raw == nil {
		return EndpointSpec{}, fmt.Errorf("missing configuration")
	}

	encoded, err := yaml.Marshal(raw)
	if err != nil {
		return EndpointSpec{}, err
	}

	if isIBMMQ {
		var spec IBMMQSpec
		if err := yaml.Unmarshal(encoded, &spec); err != nil {
			return EndpointSpec{}, err
		}
		return EndpointSpec{IBMMQ: &spec}, nil
	}

	var spec KubeMQSpec
	if err := yaml.Unmarshal(encoded, &spec); err != nil {
		return EndpointSpec{}, err
	}
	return EndpointSpec{KubeMQ: &spec}, nil
}

// ConfigError wraps any failure encountered while loading the bindings
// file; spec.md §7 treats it as fatal and non-retryable at startup.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config: %s: %v", e.Op, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }
