package rpc_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/msf-mcp-go/internal/config"
	"github.com/wagiedev/msf-mcp-go/internal/rpc"
	"github.com/wagiedev/msf-mcp-go/internal/rpc/rpctest"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(t *testing.T, srv *rpctest.Server) *rpc.Session {
	t.Helper()

	return rpc.NewSession(nopLogger(), srv.Options(), nil)
}

func TestAuthenticate_StoresToken(t *testing.T) {
	srv := rpctest.NewServer(t)
	session := newSession(t, srv)

	require.False(t, session.Authenticated())
	require.True(t, session.Authenticate(context.Background()))
	require.Equal(t, rpctest.Token, session.Token())

	login := srv.LastRequest(rpc.MethodLogin)
	require.NotNil(t, login)
	require.Equal(t, rpctest.Password, login.Params["password"])
	require.Equal(t, rpc.Version, login.JSONRPC)
	require.Empty(t, login.Token)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(srv *rpctest.Server)
	}{
		{
			name: "non-200 status",
			setup: func(srv *rpctest.Server) {
				srv.HandleStatus(rpc.MethodLogin, http.StatusInternalServerError)
			},
		},
		{
			name: "missing token field",
			setup: func(srv *rpctest.Server) {
				srv.HandleResult(rpc.MethodLogin, map[string]any{"result": "success"})
			},
		},
		{
			name: "result is not an object",
			setup: func(srv *rpctest.Server) {
				srv.HandleResult(rpc.MethodLogin, "success")
			},
		},
		{
			name: "remote login error",
			setup: func(srv *rpctest.Server) {
				srv.HandleRemoteError(rpc.MethodLogin, 401, "Login Failed")
			},
		},
		{
			name: "malformed body",
			setup: func(srv *rpctest.Server) {
				srv.Handle(rpc.MethodLogin, func(_ *rpc.Request) (int, any) {
					return http.StatusOK, []byte(`{"result": {"token": `)
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rpctest.NewServer(t)
			tt.setup(srv)
			session := newSession(t, srv)

			require.False(t, session.Authenticate(context.Background()))
			require.False(t, session.Authenticated())
			require.Empty(t, session.Token())
		})
	}
}

func TestAuthenticate_TransportFailure(t *testing.T) {
	srv := rpctest.NewServer(t)
	opts := srv.Options()
	srv.Close()

	session := rpc.NewSession(nopLogger(), opts, nil)

	require.False(t, session.Authenticate(context.Background()))
	require.False(t, session.Authenticated())
}

func TestInvoke_LazilyAuthenticatesOnce(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleResult("module.exploits", []any{"exploit/unix/ftp/vsftpd_234_backdoor"})
	session := newSession(t, srv)

	first := session.Invoke(context.Background(), "module.exploits", nil)
	second := session.Invoke(context.Background(), "module.exploits", nil)

	require.False(t, first.IsError())
	require.False(t, second.IsError())
	require.Equal(t, 1, srv.Calls(rpc.MethodLogin))
	require.Equal(t, 2, srv.Calls("module.exploits"))

	call := srv.LastRequest("module.exploits")
	require.Equal(t, rpctest.Token, call.Token)
	require.Equal(t, map[string]any{}, call.Params)
	require.NotEmpty(t, call.ID)
}

func TestInvoke_AuthenticationFailureReturnsError(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleStatus(rpc.MethodLogin, http.StatusUnauthorized)
	session := newSession(t, srv)

	resp := session.Invoke(context.Background(), "session.list", nil)

	require.True(t, resp.IsError())
	require.Equal(t, rpc.CodeAuthentication, resp.Error.Code)
	require.False(t, session.Authenticated())
	require.Equal(t, 0, srv.Calls("session.list"))
}

func TestInvoke_AuthenticationMissingTokenReturnsError(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleResult(rpc.MethodLogin, map[string]any{"result": "success"})
	session := newSession(t, srv)

	resp := session.Invoke(context.Background(), "session.list", nil)

	require.True(t, resp.IsError())
	require.Empty(t, session.Token())
}

func TestInvoke_HTTPStatusError(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleStatus("module.payloads", http.StatusInternalServerError)
	session := newSession(t, srv)

	resp := session.Invoke(context.Background(), "module.payloads", nil)

	require.True(t, resp.IsError())
	require.Equal(t, http.StatusInternalServerError, resp.Error.Code)
	require.Equal(t, "HTTP 500", resp.Error.Message)
	require.EqualError(t, resp.Err("module.payloads"), "HTTP 500")
}

func TestInvoke_TransportError(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleResult("session.list", map[string]any{})
	session := newSession(t, srv)
	require.True(t, session.Authenticate(context.Background()))

	srv.Close()

	resp := session.Invoke(context.Background(), "session.list", nil)

	require.True(t, resp.IsError())
	require.Equal(t, rpc.CodeTransport, resp.Error.Code)
	require.NotEmpty(t, resp.Error.Message)
}

func TestInvoke_NestedErrorPassesThrough(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleRemoteError("session.stop", 500, "Unknown Session ID 7")
	session := newSession(t, srv)

	resp := session.Invoke(context.Background(), "session.stop", map[string]any{"id": 7})

	require.False(t, resp.IsError())

	remote, ok := resp.RemoteError()
	require.True(t, ok)
	require.Equal(t, 500, remote.Code)
	require.Equal(t, "Unknown Session ID 7", remote.Message)
	require.True(t, session.Authenticated())
	require.EqualError(t, resp.Err("session.stop"), "rpc session.stop: remote error 500: Unknown Session ID 7")
}

func TestInvoke_MalformedBody(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.Handle("module.info", func(_ *rpc.Request) (int, any) {
		return http.StatusOK, []byte("<html>not json</html>")
	})
	session := newSession(t, srv)

	resp := session.Invoke(context.Background(), "module.info", map[string]any{"module": "x"})

	require.True(t, resp.IsError())
	require.Equal(t, rpc.CodeMalformed, resp.Error.Code)
}

func TestInvoke_RejectedTokenTriggersReauthentication(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleRemoteError("session.list", 401, "Invalid Authentication Token")
	session := newSession(t, srv)

	resp := session.Invoke(context.Background(), "session.list", nil)
	require.False(t, resp.IsError())
	require.False(t, session.Authenticated())

	srv.HandleResult("session.list", map[string]any{})

	resp = session.Invoke(context.Background(), "session.list", nil)
	require.False(t, resp.IsError())
	require.True(t, session.Authenticated())
	require.Equal(t, 2, srv.Calls(rpc.MethodLogin))
	require.Equal(t, 2, srv.Calls("session.list"))
}

func TestInvoke_TokenWordingOnlyInvalidatesOnAuthErrors(t *testing.T) {
	tests := []struct {
		name          string
		code          int
		message       string
		authenticated bool
	}{
		{name: "unrelated option error", code: 500, message: "Invalid option TOKEN_FILE", authenticated: true},
		{name: "invalid token wording", code: 500, message: "Invalid Authentication Token", authenticated: false},
		{name: "auth code", code: 401, message: "Login Failed", authenticated: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := rpctest.NewServer(t)
			srv.HandleRemoteError("module.execute", tt.code, tt.message)
			session := newSession(t, srv)

			resp := session.Invoke(context.Background(), "module.execute", nil)
			require.False(t, resp.IsError())
			require.Equal(t, tt.authenticated, session.Authenticated())
		})
	}
}

func TestInvoke_HTTPUnauthorizedClearsToken(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleStatus("module.check", http.StatusUnauthorized)
	session := newSession(t, srv)

	resp := session.Invoke(context.Background(), "module.check", nil)

	require.True(t, resp.IsError())
	require.Equal(t, "HTTP 401", resp.Error.Message)
	require.False(t, session.Authenticated())
}

func TestInvoke_ConcurrentCallsShareSession(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleResult("module.exploits", []any{"exploit/windows/smb/ms17_010_eternalblue"})
	session := newSession(t, srv)

	const callers = 8

	var wg sync.WaitGroup
	responses := make([]*rpc.Response, callers)

	for i := range callers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			responses[i] = session.Invoke(context.Background(), "module.exploits", nil)
		}()
	}

	wg.Wait()

	for _, resp := range responses {
		require.False(t, resp.IsError())
	}

	logins := srv.Calls(rpc.MethodLogin)
	require.GreaterOrEqual(t, logins, 1)
	require.LessOrEqual(t, logins, callers)
	require.Equal(t, callers, srv.Calls("module.exploits"))
	require.Equal(t, rpctest.Token, session.Token())
}

func TestInvoke_UsesInjectedHTTPClient(t *testing.T) {
	srv := rpctest.NewServer(t)
	srv.HandleResult("module.info", map[string]any{"name": "x"})

	var mu sync.Mutex
	seen := 0
	opts := srv.Options()
	opts.HTTPClient = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		mu.Lock()
		seen++
		mu.Unlock()

		return http.DefaultTransport.RoundTrip(req)
	})}

	session := rpc.NewSession(nopLogger(), opts, nil)
	resp := session.Invoke(context.Background(), "module.info", nil)

	require.False(t, resp.IsError())
	require.Equal(t, 2, seen)
	require.Equal(t, srv.URL+"/api", session.Endpoint())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestNewRequest(t *testing.T) {
	a := rpc.NewRequest("module.info", nil)
	b := rpc.NewRequest("module.info", map[string]any{"module": "exploit/multi/handler"})

	require.Equal(t, rpc.Version, a.JSONRPC)
	require.Equal(t, map[string]any{}, a.Params)
	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)

	encoded, err := json.Marshal(a)
	require.NoError(t, err)
	require.NotContains(t, string(encoded), "token")
}

func TestResponse_Accessors(t *testing.T) {
	t.Run("result without remote error", func(t *testing.T) {
		resp := rpc.NewResult(map[string]any{"result": map[string]any{"status": "exploitable"}})

		result, ok := resp.RemoteResult()
		require.True(t, ok)
		require.Equal(t, map[string]any{"status": "exploitable"}, result)

		_, hasErr := resp.RemoteError()
		require.False(t, hasErr)
		require.NoError(t, resp.Err("module.check"))
	})

	t.Run("string remote error", func(t *testing.T) {
		resp := rpc.NewResult(map[string]any{"error": "boom"})

		remote, ok := resp.RemoteError()
		require.True(t, ok)
		require.Equal(t, "boom", remote.Message)
	})

	t.Run("remote error message from data", func(t *testing.T) {
		resp := rpc.NewResult(map[string]any{"error": map[string]any{
			"code": float64(-32000),
			"data": map[string]any{"error_message": "Invalid Module"},
		}})

		remote, ok := resp.RemoteError()
		require.True(t, ok)
		require.Equal(t, -32000, remote.Code)
		require.Equal(t, "Invalid Module", remote.Message)
	})

	t.Run("non-object body", func(t *testing.T) {
		resp := rpc.NewResult([]any{"a"})

		require.Nil(t, resp.Body())

		_, ok := resp.RemoteResult()
		require.False(t, ok)
	})

	t.Run("error response", func(t *testing.T) {
		resp := rpc.NewError(rpc.CodeTransport, "dial tcp: connection refused")

		require.True(t, resp.IsError())
		require.Nil(t, resp.Body())
		require.EqualError(t, resp.Err("login"), "rpc login: dial tcp: connection refused")
	})
}

func TestResponse_MarshalJSON(t *testing.T) {
	ok, err := json.Marshal(rpc.NewResult(map[string]any{"result": []any{"a"}}))
	require.NoError(t, err)
	require.JSONEq(t, `{"result": ["a"]}`, string(ok))

	failed, err := json.Marshal(rpc.NewError(502, "HTTP 502"))
	require.NoError(t, err)
	require.JSONEq(t, `{"error": {"code": 502, "message": "HTTP 502"}}`, string(failed))
}

func TestNewSession_DefaultsEndpoint(t *testing.T) {
	opts := &config.Options{Password: "x"}
	opts.ApplyDefaults()

	session := rpc.NewSession(nopLogger(), opts, nil)

	require.Equal(t, config.DefaultRPCURL+"/api", session.Endpoint())
	require.False(t, session.Authenticated())
}
