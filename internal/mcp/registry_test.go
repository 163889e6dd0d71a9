package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func echoTool() *Tool {
	return NewTool(
		"echo", "echoes text",
		Object(map[string]*jsonschema.Schema{"text": String("text to echo")}, "text"),
		func(_ context.Context, req *mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			args, err := ParseArguments(req)
			if err != nil {
				return nil, err
			}

			text, _ := args.String("text")

			return TextResult("echo: " + text), nil
		},
		WithAnnotations(&mcpgo.ToolAnnotations{ReadOnlyHint: true}),
	)
}

func TestRegistryMetadata(t *testing.T) {
	registry := NewRegistry("demo", "1.2.3")

	require.Equal(t, "demo", registry.Name())
	require.Equal(t, "1.2.3", registry.Version())
	require.Empty(t, registry.Tools())
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry("demo", "1.0.0")
	registry.Add(
		NewTool("b", "second", nil, nil),
		NewTool("a", "first", nil, nil),
	)
	registry.Add(NewTool("b", "replaced", nil, nil))

	tools := registry.ListTools()
	require.Len(t, tools, 2)
	require.Equal(t, "b", tools[0].Name)
	require.Equal(t, "replaced", tools[0].Description)
	require.Equal(t, "a", tools[1].Name)
}

func TestRegistryListToolsAndCallTool(t *testing.T) {
	registry := NewRegistry("demo", "1.0.0")
	registry.Add(echoTool())

	tools := registry.ListTools()
	require.Len(t, tools, 1)
	require.Equal(t, "echo", tools[0].Name)
	require.Equal(t, "echoes text", tools[0].Description)
	require.True(t, tools[0].Annotations.ReadOnlyHint)

	result := registry.CallTool(context.Background(), "echo", map[string]any{"text": "hello"})
	require.False(t, result.IsError)
	require.Equal(t, "echo: hello", ResultText(result))

	missing := registry.CallTool(context.Background(), "unknown", map[string]any{})
	require.True(t, missing.IsError)
	require.Equal(t, "Tool not found: unknown", ResultText(missing))
}

func TestRegistryCallTool_HandlerError(t *testing.T) {
	registry := NewRegistry("demo", "1.0.0")
	registry.Add(NewTool("fails", "always fails", nil,
		func(_ context.Context, _ *mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			return nil, errors.New("boom")
		},
	))

	result := registry.CallTool(context.Background(), "fails", nil)

	require.True(t, result.IsError)
	require.Equal(t, "Tool execution failed: boom", ResultText(result))
}

func TestRegistryNewServer_InMemory(t *testing.T) {
	registry := NewRegistry("demo", "1.0.0")
	registry.Add(echoTool())

	ctx := context.Background()
	server := registry.NewServer(nil)
	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	serverTransport, clientTransport := mcpgo.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = serverSession.Close() })

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = clientSession.Close() })

	listed, err := clientSession.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 1)
	require.Equal(t, "echo", listed.Tools[0].Name)

	result, err := clientSession.CallTool(ctx, &mcpgo.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "over the wire"},
	})
	require.NoError(t, err)
	require.Equal(t, "echo: over the wire", ResultText(result))
}
