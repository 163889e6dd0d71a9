package msfmcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalmcp "github.com/wagiedev/msf-mcp-go/internal/mcp"
	"github.com/wagiedev/msf-mcp-go/internal/rpc/rpctest"
)

func newTestServer(t *testing.T, srv *rpctest.Server, opts ...Option) *Server {
	t.Helper()

	base := []Option{
		WithRPCURL(srv.URL),
		WithPassword(rpctest.Password),
		WithFs(afero.NewMemMapFs()),
	}

	server, err := NewServer(append(base, opts...)...)
	require.NoError(t, err)

	return server
}

func TestNewServer_MissingPassword(t *testing.T) {
	srv := rpctest.NewServer(t)

	server, err := NewServer(WithRPCURL(srv.URL))

	require.Nil(t, server)
	require.ErrorIs(t, err, ErrMissingPassword)
	require.Equal(t, "MSF_RPC_PASSWORD environment variable not set", err.Error())
	require.Empty(t, srv.Requests(""))
}

func TestNewServer_NoTrafficUntilFirstCall(t *testing.T) {
	srv := rpctest.NewServer(t)

	server := newTestServer(t, srv)

	require.Len(t, server.Tools(), 8)
	require.Empty(t, srv.Requests(""))
}

func TestServer_CallTool(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleResult("session.list", map[string]any{"1": map[string]any{"type": "shell"}})

	server := newTestServer(t, srv)

	result := server.CallTool(context.Background(), "list_sessions", nil)

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(internalmcp.ResultText(result)), &env))
	assert.Equal(t, "success", env["status"])
	assert.Equal(t, float64(1), env["count"])
	assert.Equal(t, 1, srv.Calls("login"))
}

func TestServer_Ping(t *testing.T) {
	srv := rpctest.NewServer(t)

	require.NoError(t, newTestServer(t, srv).Ping(context.Background()))

	bad, err := NewServer(WithRPCURL(srv.URL), WithPassword("wrong"))
	require.NoError(t, err)

	err = bad.Ping(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestServer_HandlerRejectsStdio(t *testing.T) {
	server := newTestServer(t, rpctest.NewServer(t))

	handler, err := server.Handler(TransportStdio)

	require.Nil(t, handler)
	require.Error(t, err)
}

func TestServer_StreamableHTTP(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleResult("module.exploits", []any{"exploit/windows/smb/ms17_010", "exploit/unix/ftp"})

	reg := prometheus.NewRegistry()
	server := newTestServer(t, srv, WithRegisterer(reg))

	handler, err := server.Handler(TransportHTTP)
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: ts.URL + PathMCP}, nil)
	require.NoError(t, err)

	t.Cleanup(func() { _ = session.Close() })

	listed, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, listed.Tools, 8)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "list_exploits",
		Arguments: map[string]any{"search_term": "smb"},
	})
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(internalmcp.ResultText(result)), &env))
	assert.Equal(t, []any{"exploit/windows/smb/ms17_010"}, env["exploits"])

	resp, err := http.Get(ts.URL + PathMetrics)
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "msfmcp_tools_calls_total")
	assert.Contains(t, string(body), "msfmcp_rpc_requests_total")
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	server := newTestServer(t, rpctest.NewServer(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- server.Run(ctx, TransportSSE, addr) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 5*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_RunRejectsUnknownTransport(t *testing.T) {
	server := newTestServer(t, rpctest.NewServer(t))

	err := server.Run(context.Background(), TransportMode("carrier-pigeon"), "")

	require.ErrorContains(t, err, "unsupported transport")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown", "k", "v")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "WARN", record["level"])

	_, err = NewLogger(&buf, "loud", "text")
	require.Error(t, err)

	_, err = NewLogger(&buf, "", "xml")
	require.Error(t, err)

	log, err = NewLogger(&buf, "", "")
	require.NoError(t, err)
	require.NotNil(t, log)
}
