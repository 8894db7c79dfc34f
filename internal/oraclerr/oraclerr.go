// Package oraclerr defines the oracle's error taxonomy: not type names, but
// the seven distinguishable failure kinds the rest of the system reasons
// about. Every error crossing a package boundary is one of these, matched
// via errors.As rather than string comparison.
package oraclerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Transport represents a network failure, timeout, or non-2xx HTTP
// response. The threshold coordinator absorbs these across redundant
// endpoints; they only surface wrapped inside a NoConsensus error.
type Transport struct {
	URL    string
	Status int // 0 when no response was received at all
	Err    error
}

func (e *Transport) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("transport error for %s (status=%d): %v", e.URL, e.Status, e.Err)
}
func (e *Transport) Unwrap() error { return e.Err }

// Decode represents a 2xx response whose body failed to parse into the
// expected shape.
type Decode struct {
	URL    string
	Status int
	Err    error
}

func (e *Decode) Error() string {
	return fmt.Sprintf("decode error for %s (status=%d): %v", e.URL, e.Status, e.Err)
}
func (e *Decode) Unwrap() error { return e.Err }

// Protocol represents a well-formed, successfully decoded response that is
// nonetheless semantically wrong: a stack of the wrong length, a missing
// Anchor discriminator, an unexpected return type.
type Protocol struct {
	Endpoint string
	Reason   string
}

func (e *Protocol) Error() string {
	return fmt.Sprintf("protocol error from %s: %s", e.Endpoint, e.Reason)
}

// NoConsensus is returned when every verifier in a threshold call has
// responded and no value reached the required threshold. It carries the
// full tally and the collected per-endpoint errors for debugging.
type NoConsensus struct {
	Threshold int
	Tally     map[string]int
	Errors    []error
}

func (e *NoConsensus) Error() string {
	return fmt.Sprintf("no consensus reached (threshold=%d, tally=%v, %d errors)", e.Threshold, e.Tally, len(e.Errors))
}

// ConfigurationError represents an invalid configuration discovered at load
// time: threshold <= floor(servers/2), duplicate servers, or a missing
// required chain config. Fatal at startup, never a runtime panic.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ClientError represents a caller mistake: proof/access-list arity
// mismatch, a malformed uid, or an AuthCall indirection targeting NEAR.
// Surfaced to the caller verbatim.
type ClientError struct {
	Reason string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: %s", e.Reason)
}

// VerificationDenied represents a fully successful round of RPC calls whose
// consensus result was false. Distinct from a transport/protocol failure:
// every endpoint answered, and they agreed the message is not authorized.
type VerificationDenied struct {
	AuthMethod string
}

func (e *VerificationDenied) Error() string {
	return fmt.Sprintf("authentication method %s returned false", e.AuthMethod)
}

// HTTPStatus maps an oracle error to the status code the inbound HTTP
// surface (internal/httpapi) should respond with.
func HTTPStatus(err error) int {
	switch {
	case asConfigurationError(err) != nil, asClientError(err) != nil:
		return http.StatusBadRequest
	case AsVerificationDenied(err) != nil:
		return http.StatusUnprocessableEntity
	case AsNoConsensus(err) != nil:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func asConfigurationError(err error) *ConfigurationError {
	var e *ConfigurationError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func asClientError(err error) *ClientError {
	var e *ClientError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// AsVerificationDenied reports whether err wraps a *VerificationDenied.
func AsVerificationDenied(err error) *VerificationDenied {
	var e *VerificationDenied
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// AsNoConsensus reports whether err wraps a *NoConsensus.
func AsNoConsensus(err error) *NoConsensus {
	var e *NoConsensus
	if errors.As(err, &e) {
		return e
	}
	return nil
}
