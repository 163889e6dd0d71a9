// Package rpctest provides an in-process msfrpcd stand-in for tests.
package rpctest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/wagiedev/msf-mcp-go/internal/config"
	"github.com/wagiedev/msf-mcp-go/internal/rpc"
)

const (
	// Password is the credential the fake server accepts.
	Password = "s3cret"
	// Token is the token issued on a successful login.
	Token = "TEMPaP5mGuZ4kAq7"
)

// Handler answers one decoded request with an HTTP status and a JSON body.
type Handler func(req *rpc.Request) (int, any)

// Server is a fake msfrpcd JSON-RPC endpoint that records every request.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	requests []*rpc.Request
}

// NewServer starts a fake endpoint that accepts Password and issues Token.
// It is closed automatically when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{handlers: make(map[string]Handler, 8)}
	s.Handle(rpc.MethodLogin, func(req *rpc.Request) (int, any) {
		if req.Params["password"] != Password {
			return http.StatusOK, map[string]any{
				"jsonrpc": rpc.Version,
				"error":   map[string]any{"code": 401, "message": "Login Failed"},
				"id":      req.ID,
			}
		}

		return http.StatusOK, map[string]any{
			"jsonrpc": rpc.Version,
			"result":  map[string]any{"result": "success", "token": Token},
			"id":      req.ID,
		}
	})

	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)

	return s
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api" || r.Method != http.MethodPost {
		http.NotFound(w, r)

		return
	}

	var req rpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, &req)
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	status, body := http.StatusOK, any(map[string]any{
		"jsonrpc": rpc.Version,
		"error":   map[string]any{"code": -32601, "message": "Method not found"},
		"id":      req.ID,
	})
	if ok {
		status, body = h(&req)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if raw, isRaw := body.([]byte); isRaw {
		_, _ = w.Write(raw)

		return
	}

	_ = json.NewEncoder(w).Encode(body)
}

// Handle registers h for method, replacing any previous handler.
func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[method] = h
}

// HandleResult answers method with {"result": result}.
func (s *Server) HandleResult(method string, result any) {
	s.Handle(method, func(req *rpc.Request) (int, any) {
		return http.StatusOK, map[string]any{"jsonrpc": rpc.Version, "result": result, "id": req.ID}
	})
}

// HandleRemoteError answers method with a 200 reply carrying {"error": {...}}.
func (s *Server) HandleRemoteError(method string, code int, message string) {
	s.Handle(method, func(req *rpc.Request) (int, any) {
		return http.StatusOK, map[string]any{
			"jsonrpc": rpc.Version,
			"error":   map[string]any{"code": code, "message": message},
			"id":      req.ID,
		}
	})
}

// HandleStatus answers method with an empty body and the given HTTP status.
func (s *Server) HandleStatus(method string, status int) {
	s.Handle(method, func(_ *rpc.Request) (int, any) {
		return status, map[string]any{}
	})
}

// Requests returns the recorded requests for method, in arrival order.
// An empty method returns every request.
func (s *Server) Requests(method string) []*rpc.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*rpc.Request, 0, len(s.requests))
	for _, req := range s.requests {
		if method == "" || req.Method == method {
			out = append(out, req)
		}
	}

	return out
}

// Calls returns how many requests for method were received.
func (s *Server) Calls(method string) int {
	return len(s.Requests(method))
}

// LastRequest returns the most recent request for method, or nil.
func (s *Server) LastRequest(method string) *rpc.Request {
	reqs := s.Requests(method)
	if len(reqs) == 0 {
		return nil
	}

	return reqs[len(reqs)-1]
}

// Options returns server options pointing at this endpoint with the accepted password.
func (s *Server) Options() *config.Options {
	opts := &config.Options{
		RPCURL:   s.URL,
		Password: Password,
	}
	opts.ApplyDefaults()

	return opts
}
