package tools

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	internalmcp "github.com/wagiedev/msf-mcp-go/internal/mcp"
)

// Envelope statuses.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusCheckFailed = "check_failed"
)

// envelope is the JSON object every tool returns.
type envelope map[string]any

func success(fields envelope) envelope {
	env := envelope{"status": StatusSuccess}
	for k, v := range fields {
		env[k] = v
	}

	return env
}

func failure(message string) envelope {
	return envelope{"status": StatusError, "message": message}
}

func failureWithResult(message string, result any) envelope {
	env := failure(message)
	env["result"] = result

	return env
}

func (e envelope) status() string {
	s, _ := e["status"].(string)

	return s
}

// toResult encodes the envelope as indented JSON text. Error envelopes are
// flagged as tool errors; check_failed is a regular result.
func (e envelope) toResult() *mcp.CallToolResult {
	result := internalmcp.JSONResult(map[string]any(e))
	if e.status() == StatusError {
		result.IsError = true
	}

	return result
}
