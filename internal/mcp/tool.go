package mcp

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolOption configures a Tool during construction.
type ToolOption func(*Tool)

// WithAnnotations sets MCP tool annotations (hints about tool behavior).
func WithAnnotations(annotations *mcp.ToolAnnotations) ToolOption {
	return func(t *Tool) {
		t.Annotations = annotations
	}
}

// WithTitle sets a human-readable title on the tool.
func WithTitle(title string) ToolOption {
	return func(t *Tool) {
		t.Title = title
	}
}

// Tool is a named handler with its input schema.
type Tool struct {
	Name        string
	Title       string
	Description string
	Schema      *jsonschema.Schema
	Handler     mcp.ToolHandler
	Annotations *mcp.ToolAnnotations
}

// NewTool creates a Tool. A nil schema accepts an empty object.
func NewTool(
	name, description string,
	schema *jsonschema.Schema,
	handler mcp.ToolHandler,
	opts ...ToolOption,
) *Tool {
	if schema == nil {
		schema = Object(nil)
	}

	t := &Tool{
		Name:        name,
		Description: description,
		Schema:      schema,
		Handler:     handler,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Definition returns the protocol-level tool description.
func (t *Tool) Definition() *mcp.Tool {
	schema := t.Schema
	if schema == nil {
		schema = Object(nil)
	}

	return &mcp.Tool{
		Name:        t.Name,
		Title:       t.Title,
		Description: t.Description,
		InputSchema: schema,
		Annotations: t.Annotations,
	}
}
