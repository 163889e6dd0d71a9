package rpc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wagiedev/msf-mcp-go/internal/config"
	"github.com/wagiedev/msf-mcp-go/internal/telemetry"
)

// MethodLogin is the RPC method used to obtain a token.
const MethodLogin = "login"

// Session is the single authenticated connection to msfrpcd shared by all
// tool calls in a process.
type Session struct {
	log      *slog.Logger
	endpoint string
	password string
	client   *http.Client
	metrics  *telemetry.Metrics

	// tokenMu guards token reads and writes only; it is never held across a
	// network call, so logins from concurrent callers are not serialized.
	tokenMu sync.RWMutex
	token   string
}

// NewSession creates an unauthenticated session for the configured endpoint.
// No network traffic happens until the first Invoke or Authenticate.
func NewSession(log *slog.Logger, opts *config.Options, metrics *telemetry.Metrics) *Session {
	client := opts.HTTPClient
	if client == nil {
		client = NewHTTPClient(opts.InsecureSkipVerify)
	}

	return &Session{
		log:      log.With("component", "rpc"),
		endpoint: opts.RPCURL + "/api",
		password: opts.Password,
		client:   client,
		metrics:  metrics,
	}
}

// NewHTTPClient returns the default RPC client: the standard transport with
// optional certificate verification, instrumented with otelhttp.
func NewHTTPClient(insecureSkipVerify bool) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if insecureSkipVerify {
		base.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // msfrpcd uses a self-signed certificate
		}
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(base),
	}
}

// Endpoint returns the URL requests are posted to.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// Token returns the current token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.tokenMu.RLock()
	defer s.tokenMu.RUnlock()

	return s.token
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Invalidate drops the current token so the next Invoke logs in again.
func (s *Session) Invalidate() {
	s.setToken("")
}

func (s *Session) setToken(token string) {
	s.tokenMu.Lock()
	defer s.tokenMu.Unlock()

	s.token = token
}

// Authenticate logs in with the configured credential and stores the issued
// token. It returns false on any transport failure, non-2xx status,
// malformed body or missing token, leaving the session unauthenticated.
func (s *Session) Authenticate(ctx context.Context) bool {
	req := NewRequest(MethodLogin, map[string]any{"password": s.password})

	resp := s.roundTrip(ctx, req)
	if resp.IsError() {
		s.log.Warn("RPC login failed", "endpoint", s.endpoint, "code", resp.Error.Code, "error", resp.Error.Message)
		s.metrics.ObserveLogin(false)

		return false
	}

	token := tokenFrom(resp)
	if token == "" {
		s.log.Warn("RPC login response carried no token", "endpoint", s.endpoint)
		s.metrics.ObserveLogin(false)

		return false
	}

	s.setToken(token)
	s.metrics.ObserveLogin(true)
	s.log.Debug("RPC login succeeded", "endpoint", s.endpoint)

	return true
}

// tokenFrom extracts result.token from a login response.
func tokenFrom(resp *Response) string {
	result, ok := resp.RemoteResult()
	if !ok {
		return ""
	}

	fields, ok := result.(map[string]any)
	if !ok {
		return ""
	}

	token, _ := fields["token"].(string)

	return token
}

// Invoke calls method with params and returns the classified outcome.
//
// When no token is held, Invoke logs in first; if that fails the call is not
// sent and an authentication Error is returned. A response that rejects the
// token clears it, so the following call re-authenticates. There are no
// retries.
func (s *Session) Invoke(ctx context.Context, method string, params map[string]any) *Response {
	if !s.Authenticated() && !s.Authenticate(ctx) {
		s.metrics.ObserveRPC(method, telemetry.OutcomeAuthError, 0)

		return NewError(CodeAuthentication, "authentication failed")
	}

	req := NewRequest(method, params)
	req.Token = s.Token()

	resp := s.roundTrip(ctx, req)
	if resp.rejectsToken() {
		s.log.Info("RPC token rejected, will re-authenticate on next call", "method", method)
		s.Invalidate()
	}

	return resp
}

// roundTrip posts one request and classifies the reply.
func (s *Session) roundTrip(ctx context.Context, req *Request) *Response {
	start := time.Now()
	resp, outcome := s.do(ctx, req)
	s.metrics.ObserveRPC(req.Method, outcome, time.Since(start))

	return resp
}

func (s *Session) do(ctx context.Context, req *Request) (*Response, string) {
	payload, err := json.Marshal(req)
	if err != nil {
		return NewError(CodeTransport, fmt.Sprintf("encode request: %v", err)), telemetry.OutcomeTransportError
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return NewError(CodeTransport, err.Error()), telemetry.OutcomeTransportError
	}

	httpReq.Header.Set("Content-Type", "application/json")

	s.log.Debug("Sending RPC request", "method", req.Method, "id", req.ID)

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		s.log.Debug("RPC transport failure", "method", req.Method, "error", err)

		return NewError(CodeTransport, err.Error()), telemetry.OutcomeTransportError
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, httpResp.Body)

		return NewError(httpResp.StatusCode, fmt.Sprintf("HTTP %d", httpResp.StatusCode)), telemetry.OutcomeHTTPError
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return NewError(CodeTransport, err.Error()), telemetry.OutcomeTransportError
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return NewError(CodeMalformed, fmt.Sprintf("invalid JSON response: %v", err)), telemetry.OutcomeMalformed
	}

	resp := NewResult(body)
	if _, remote := resp.RemoteError(); remote {
		return resp, telemetry.OutcomeRemoteError
	}

	return resp, telemetry.OutcomeSuccess
}
