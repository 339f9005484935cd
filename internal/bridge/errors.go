// Package bridge implements the endpoint contract, the connection state
// machine, the retry wrapper and the binding runtime described in spec.md
// §§4-5: the core that is independent of any concrete broker adapter.
package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies a raw broker error into the taxonomy of spec.md §7. Poll
// loops and the retry wrapper react to the Kind, never to a raw broker code.
type Kind int

const (
	// KindUnknown is the zero value. The adapters' classifiers and KindOf
	// report unrecognized errors as KindPermanent, not KindUnknown.
	KindUnknown Kind = iota
	// KindMessage indicates a message was successfully received.
	KindMessage
	// KindNoMessage indicates the broker wait elapsed with nothing available.
	KindNoMessage
	// KindTransient is a temporary broker-side condition, retried in place.
	KindTransient
	// KindConnection indicates the session was lost mid-operation.
	KindConnection
	// KindShutdown indicates the remote is quiescing or stopping.
	KindShutdown
	// KindConfiguration indicates not-authorized/unknown-object/type errors.
	KindConfiguration
	// KindPermanent indicates an unclassified or unrecoverable failure.
	KindPermanent
)

func (k Kind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindNoMessage:
		return "no_message"
	case KindTransient:
		return "transient"
	case KindConnection:
		return "connection"
	case KindShutdown:
		return "shutdown"
	case KindConfiguration:
		return "configuration"
	case KindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ConfigError is raised at startup for malformed configuration. It is the
// only error kind allowed to terminate the daemon, besides an explicit
// signal.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}
func (e *ConfigError) Unwrap() error { return e.Err }

// ConnectError is raised out of Endpoint.Start when a session cannot be
// established (auth, network, missing queue, TLS misconfiguration).
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect error on %s: %v", e.Endpoint, e.Err)
}
func (e *ConnectError) Unwrap() error { return e.Err }

// ClassifiedError pairs a raw adapter error with its taxonomy Kind so the
// poll loop and retry wrapper can react uniformly across adapters.
type ClassifiedError struct {
	Kind Kind
	Err  error
}

func (e *ClassifiedError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}
func (e *ClassifiedError) Unwrap() error { return e.Err }

// Classify wraps err with the given Kind. A nil err classified is still a
// non-nil ClassifiedError — callers only invoke Classify on genuine failures.
func Classify(kind Kind, err error) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *ClassifiedError, defaulting to KindPermanent for anything else — spec.md
// §7's "conservative delay, reconnect if uncertain" rule for Unknown.
func KindOf(err error) Kind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindPermanent
}
