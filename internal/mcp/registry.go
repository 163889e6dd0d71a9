package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Registry is an ordered, concurrency-safe set of tools.
type Registry struct {
	name    string
	version string

	mu    sync.RWMutex
	order []string
	tools map[string]*Tool
}

// NewRegistry creates an empty registry for a server with the given
// implementation name and version.
func NewRegistry(name, version string) *Registry {
	return &Registry{
		name:    name,
		version: version,
		tools:   make(map[string]*Tool, 8),
	}
}

// Name returns the server name.
func (r *Registry) Name() string {
	return r.name
}

// Version returns the server version.
func (r *Registry) Version() string {
	return r.version
}

// Add registers tools, replacing any tool with the same name while keeping
// its original position.
func (r *Registry) Add(tools ...*Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range tools {
		if _, exists := r.tools[t.Name]; !exists {
			r.order = append(r.order, t.Name)
		}

		r.tools[t.Name] = t
	}
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}

	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]

	return t, ok
}

// ListTools returns the protocol descriptions of all registered tools.
func (r *Registry) ListTools() []*mcp.Tool {
	tools := r.Tools()

	out := make([]*mcp.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, t.Definition())
	}

	return out
}

// NewServer builds a go-sdk server exposing every registered tool.
func (r *Registry) NewServer(opts *mcp.ServerOptions) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: r.name, Version: r.version}, opts)

	for _, t := range r.Tools() {
		server.AddTool(t.Definition(), t.Handler)
	}

	return server
}

// CallTool executes a tool by name with the given input without going
// through a transport. Unknown tools and handler errors are reported as
// error results.
func (r *Registry) CallTool(ctx context.Context, name string, input map[string]any) *mcp.CallToolResult {
	t, exists := r.Lookup(name)
	if !exists {
		return ErrorResult("Tool not found: " + name)
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return ErrorResult(fmt.Sprintf("Failed to marshal input: %v", err))
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: raw,
		},
	}

	result, err := t.Handler(ctx, req)
	if err != nil {
		return ErrorResult("Tool execution failed: " + err.Error())
	}

	if result == nil {
		return &mcp.CallToolResult{Content: []mcp.Content{}}
	}

	return result
}
