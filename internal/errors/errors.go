package errors

import (
	"errors"
	"fmt"
)

// MsfMCPError is the base interface for all server errors.
type MsfMCPError interface {
	error
	IsMsfMCPError() bool
}

// Compile-time verification that all error types implement MsfMCPError.
var (
	_ MsfMCPError = (*TransportError)(nil)
	_ MsfMCPError = (*ProtocolError)(nil)
	_ MsfMCPError = (*ValidationError)(nil)
	_ MsfMCPError = (*SafetyGateError)(nil)
	_ MsfMCPError = (*ArtifactError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrMissingPassword indicates the RPC credential was not configured.
	ErrMissingPassword = errors.New("MSF_RPC_PASSWORD environment variable not set")

	// ErrNotAuthenticated indicates the login call did not yield a token.
	ErrNotAuthenticated = errors.New("authentication failed")

	// ErrInvalidOptionsJSON indicates the additional_options blob is not a JSON object.
	ErrInvalidOptionsJSON = errors.New("Invalid JSON in additional_options") //nolint:staticcheck // literal is part of the tool contract

	// ErrMissingArgument indicates a required tool argument was absent or empty.
	ErrMissingArgument = errors.New("required argument missing")

	// ErrNoResult indicates the remote reply carried no "result" field.
	ErrNoResult = errors.New("no result in RPC response")

	// ErrNoPayloadData indicates a generation result without extractable payload bytes.
	ErrNoPayloadData = errors.New("no payload data in result")

	// ErrUnsafeArtifactPath indicates an artifact name that resolves outside the output directory.
	ErrUnsafeArtifactPath = errors.New("artifact path escapes output directory")
)

// TransportError indicates the RPC endpoint could not be reached or
// answered with a non-2xx status.
type TransportError struct {
	Method     string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("rpc %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsMsfMCPError implements MsfMCPError.
func (e *TransportError) IsMsfMCPError() bool { return true }

// ProtocolError indicates a malformed or error-tagged RPC envelope.
type ProtocolError struct {
	Method  string
	Code    int
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rpc %s: malformed response: %v", e.Method, e.Err)
	}

	return fmt.Sprintf("rpc %s: remote error %d: %s", e.Method, e.Code, e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// IsMsfMCPError implements MsfMCPError.
func (e *ProtocolError) IsMsfMCPError() bool { return true }

// ValidationError indicates bad caller input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrInvalidOptionsJSON) {
		return e.Err.Error()
	}

	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsMsfMCPError implements MsfMCPError.
func (e *ValidationError) IsMsfMCPError() bool { return true }

// SafetyGateError indicates the check-before-exploit gate did not report
// the target as exploitable.
type SafetyGateError struct {
	Module string
	Status string
}

func (e *SafetyGateError) Error() string {
	return "Target is not vulnerable or check failed"
}

// IsMsfMCPError implements MsfMCPError.
func (e *SafetyGateError) IsMsfMCPError() bool { return true }

// ArtifactError indicates a generation call whose result could not be
// turned into a payload file.
type ArtifactError struct {
	Module string
	Err    error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("payload %s: %v", e.Module, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// IsMsfMCPError implements MsfMCPError.
func (e *ArtifactError) IsMsfMCPError() bool { return true }
