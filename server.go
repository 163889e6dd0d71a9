package msfmcp

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/msf-mcp-go/internal/artifact"
	"github.com/wagiedev/msf-mcp-go/internal/config"
	"github.com/wagiedev/msf-mcp-go/internal/errors"
	internalmcp "github.com/wagiedev/msf-mcp-go/internal/mcp"
	"github.com/wagiedev/msf-mcp-go/internal/msf"
	"github.com/wagiedev/msf-mcp-go/internal/rpc"
	"github.com/wagiedev/msf-mcp-go/internal/telemetry"
	"github.com/wagiedev/msf-mcp-go/internal/tools"
)

const (
	// ServerName is the MCP implementation name.
	ServerName = "msf-mcp"
	// Version is the MCP implementation version.
	Version = "0.1.0"
)

// HTTP paths served by the network transports.
const (
	PathMCP     = "/mcp"
	PathSSE     = "/sse"
	PathMetrics = "/metrics"
)

const shutdownTimeout = 10 * time.Second

// TransportMode selects how the server is exposed to its host.
type TransportMode = config.TransportMode

// Transport modes.
const (
	TransportStdio = config.TransportStdio
	TransportHTTP  = config.TransportHTTP
	TransportSSE   = config.TransportSSE
)

// Server exposes a Metasploit RPC daemon as MCP tools.
type Server struct {
	log      *slog.Logger
	session  *rpc.Session
	registry *internalmcp.Registry
	gatherer prometheus.Gatherer
}

// NewServer validates the configuration and wires the RPC session, command
// client, artifact store and tools. It makes no network calls; the first
// tool call authenticates.
func NewServer(opts ...Option) (*Server, error) {
	options := applyOptions(opts)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	options.ApplyDefaults()

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	reg := options.Registerer
	if reg == nil {
		private := prometheus.NewRegistry()
		reg = private
		options.Registerer = private
	}

	metrics, err := telemetry.New(reg)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	gatherer, _ := reg.(prometheus.Gatherer)

	session := rpc.NewSession(log, options, metrics)
	client := msf.New(log, session)
	store := artifact.NewStore(log, options.Fs, options.PayloadDir)

	registry := internalmcp.NewRegistry(ServerName, Version)
	tools.New(log, client, store, metrics, options.ListLimit).Register(registry)

	log.With("component", "server").Debug("Server configured",
		"rpc_endpoint", session.Endpoint(),
		"payload_dir", options.PayloadDir,
		"tools", len(registry.Tools()),
	)

	return &Server{
		log:      log.With("component", "server"),
		session:  session,
		registry: registry,
		gatherer: gatherer,
	}, nil
}

// Ping authenticates against the RPC endpoint and reports whether a token
// was issued.
func (s *Server) Ping(ctx context.Context) error {
	if !s.session.Authenticate(ctx) {
		return &errors.TransportError{Method: rpc.MethodLogin, Err: errors.ErrNotAuthenticated}
	}

	return nil
}

// Tools returns the protocol descriptions of the exposed tools.
func (s *Server) Tools() []*mcp.Tool {
	return s.registry.ListTools()
}

// CallTool invokes a tool directly, bypassing any transport.
func (s *Server) CallTool(ctx context.Context, name string, input map[string]any) *mcp.CallToolResult {
	return s.registry.CallTool(ctx, name, input)
}

// MCPServer builds a go-sdk server exposing the tools.
func (s *Server) MCPServer() *mcp.Server {
	return s.registry.NewServer(&mcp.ServerOptions{
		Instructions: tools.Instructions,
		Logger:       s.log,
	})
}

// Handler returns the HTTP handler for a network transport mode: the MCP
// endpoint (PathMCP for http, PathSSE for sse) plus PathMetrics.
func (s *Server) Handler(mode TransportMode) (http.Handler, error) {
	server := s.MCPServer()
	getServer := func(*http.Request) *mcp.Server { return server }

	mux := http.NewServeMux()

	switch mode {
	case TransportHTTP:
		mux.Handle(PathMCP, mcp.NewStreamableHTTPHandler(getServer, nil))
	case TransportSSE:
		mux.Handle(PathSSE, mcp.NewSSEHandler(getServer, nil))
	default:
		return nil, fmt.Errorf("transport %q has no HTTP handler", mode)
	}

	if s.gatherer != nil {
		mux.Handle(PathMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return otelhttp.NewHandler(mux, ServerName), nil
}

// Run serves MCP until ctx is cancelled. addr is the listen address for the
// http and sse modes and is ignored for stdio.
func (s *Server) Run(ctx context.Context, mode TransportMode, addr string) error {
	if !mode.Valid() {
		return fmt.Errorf("unsupported transport %q", mode)
	}

	if mode == TransportStdio {
		s.log.Info("Serving MCP over stdio")

		return s.MCPServer().Run(ctx, &mcp.StdioTransport{})
	}

	handler, err := s.Handler(mode)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Serving MCP over HTTP", "transport", mode, "addr", addr)

		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}

		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.log.Info("Shutting down HTTP server")

		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
