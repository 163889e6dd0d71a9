package rpc

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
)

// Version is the protocol version tag sent with every request.
const Version = "2.0"

// Error codes for failures detected before a remote result is available.
// HTTP failures use the HTTP status code.
const (
	CodeTransport      = -32000
	CodeAuthentication = -32001
	CodeMalformed      = -32700
)

// Request is a single JSON-RPC call to msfrpcd.
//
// Wire format:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "module.execute",
//	  "params": {"module": "...", "options": {...}},
//	  "id": "01J9Z...",
//	  "token": "TEMP..."
//	}
type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      string         `json:"id"`
	Token   string         `json:"token,omitempty"`
}

// NewRequest builds a request with a fresh identifier.
func NewRequest(method string, params map[string]any) *Request {
	if params == nil {
		params = map[string]any{}
	}

	return &Request{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      ulid.Make().String(),
	}
}

// Error is the failure arm of a Response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is the outcome of one RPC round trip: either Result holds the
// decoded response body, or Error describes why no body is available.
//
// A Result response may still carry a remote error inside the body; use
// RemoteError to inspect it.
type Response struct {
	Result any
	Error  *Error
}

// NewResult wraps a decoded response body.
func NewResult(body any) *Response {
	return &Response{Result: body}
}

// NewError builds a failure response.
func NewError(code int, message string) *Response {
	return &Response{Error: &Error{Code: code, Message: message}}
}

// IsError reports whether the round trip failed before a body was decoded.
func (r *Response) IsError() bool {
	return r == nil || r.Error != nil
}

// Body returns the decoded body as an object, or nil if it is not one.
func (r *Response) Body() map[string]any {
	if r.IsError() {
		return nil
	}

	body, _ := r.Result.(map[string]any)

	return body
}

// RemoteResult returns the body's "result" field.
func (r *Response) RemoteResult() (any, bool) {
	body := r.Body()
	if body == nil {
		return nil, false
	}

	result, ok := body["result"]

	return result, ok
}

// RemoteError returns the body's "error" field, accepting both the
// {"code", "message"} object form and a bare string.
func (r *Response) RemoteError() (*Error, bool) {
	body := r.Body()
	if body == nil {
		return nil, false
	}

	raw, ok := body["error"]
	if !ok || raw == nil {
		return nil, false
	}

	switch v := raw.(type) {
	case string:
		return &Error{Message: v}, true
	case map[string]any:
		e := &Error{}
		if code, ok := v["code"].(float64); ok {
			e.Code = int(code)
		}

		if msg, ok := v["message"].(string); ok {
			e.Message = msg
		}

		if data, ok := v["data"].(map[string]any); ok && e.Message == "" {
			e.Message, _ = data["error_message"].(string)
		}

		return e, true
	default:
		encoded, _ := json.Marshal(v)

		return &Error{Message: string(encoded)}, true
	}
}

// Err converts a failed or error-tagged response into a typed error.
// It returns nil for a Result response without a remote error.
func (r *Response) Err(method string) error {
	if r == nil {
		return &errors.ProtocolError{Method: method, Err: errors.ErrNoResult}
	}

	if r.Error != nil {
		switch {
		case r.Error.Code == CodeAuthentication:
			return &errors.TransportError{Method: method, Err: errors.ErrNotAuthenticated}
		case r.Error.Code == CodeMalformed:
			return &errors.ProtocolError{Method: method, Code: r.Error.Code, Message: r.Error.Message}
		case r.Error.Code >= 100 && r.Error.Code < 600:
			return &errors.TransportError{Method: method, StatusCode: r.Error.Code}
		default:
			return &errors.TransportError{Method: method, Err: stderrors.New(r.Error.Message)}
		}
	}

	if remote, ok := r.RemoteError(); ok {
		return &errors.ProtocolError{Method: method, Code: remote.Code, Message: remote.Message}
	}

	return nil
}

// MarshalJSON renders a Result response as the raw body and an Error
// response as {"error": {"code": ..., "message": ...}}.
func (r *Response) MarshalJSON() ([]byte, error) {
	if r.Error != nil {
		return json.Marshal(map[string]any{"error": r.Error})
	}

	return json.Marshal(r.Result)
}

// invalidTokenMessage is how msfrpcd words a rejected token, lowercased.
const invalidTokenMessage = "invalid authentication token"

// rejectsToken reports whether a response tells us the token is no longer valid.
func (r *Response) rejectsToken() bool {
	if r.Error != nil {
		return r.Error.Code == 401
	}

	remote, ok := r.RemoteError()
	if !ok {
		return false
	}

	return remote.Code == 401 || strings.Contains(strings.ToLower(remote.Message), invalidTokenMessage)
}
