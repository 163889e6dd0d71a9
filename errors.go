package msfmcp

import "github.com/wagiedev/msf-mcp-go/internal/errors"

// Re-export error types from internal package

// TransportError indicates the RPC endpoint could not be reached or answered
// with a non-2xx status.
type TransportError = errors.TransportError

// ProtocolError indicates a malformed or error-tagged RPC envelope.
type ProtocolError = errors.ProtocolError

// ValidationError indicates bad tool input.
type ValidationError = errors.ValidationError

// SafetyGateError indicates the exploit check did not report the target as
// exploitable.
type SafetyGateError = errors.SafetyGateError

// ArtifactError indicates a generated payload could not be saved.
type ArtifactError = errors.ArtifactError

// MsfMCPError is the base interface for all server errors.
type MsfMCPError = errors.MsfMCPError

// Re-export sentinel errors from internal package.
var (
	// ErrMissingPassword indicates the RPC credential was not configured.
	ErrMissingPassword = errors.ErrMissingPassword

	// ErrNotAuthenticated indicates the login call did not yield a token.
	ErrNotAuthenticated = errors.ErrNotAuthenticated

	// ErrInvalidOptionsJSON indicates the additional_options blob is not a JSON object.
	ErrInvalidOptionsJSON = errors.ErrInvalidOptionsJSON

	// ErrMissingArgument indicates a required tool argument was absent.
	ErrMissingArgument = errors.ErrMissingArgument

	// ErrNoResult indicates the remote reply carried no result.
	ErrNoResult = errors.ErrNoResult

	// ErrNoPayloadData indicates a generation result without payload bytes.
	ErrNoPayloadData = errors.ErrNoPayloadData

	// ErrUnsafeArtifactPath indicates an artifact name outside the output directory.
	ErrUnsafeArtifactPath = errors.ErrUnsafeArtifactPath
)
