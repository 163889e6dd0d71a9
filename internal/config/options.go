package config

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
)

const (
	// DefaultRPCURL is the msfrpcd JSON-RPC base URL used when none is configured.
	DefaultRPCURL = "http://127.0.0.1:55553"

	// DefaultPayloadDir is where generated payloads are written when none is configured.
	DefaultPayloadDir = "./payloads"

	// DefaultListLimit caps the number of module names returned by list tools.
	DefaultListLimit = 50

	// DefaultLPORT is the reverse-connection port used when the caller sets none.
	DefaultLPORT = 4444
)

// Options configures the Metasploit MCP server.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// RPCURL is the base URL of the msfrpcd JSON-RPC endpoint. Requests are
	// posted to RPCURL + "/api".
	RPCURL string

	// Password is the RPC credential sent with the login call. Required.
	Password string

	// InsecureSkipVerify disables TLS certificate verification for the RPC
	// endpoint. msfrpcd ships with a self-signed certificate, so enabling SSL
	// on the daemon usually requires this.
	InsecureSkipVerify bool

	// PayloadDir is the directory generated payloads are written to.
	PayloadDir string

	// ListLimit caps the number of names returned by list_exploits and
	// list_payloads. The reported count is never truncated.
	ListLimit int

	// HTTPClient overrides the client used for RPC calls.
	// If nil, a client honouring InsecureSkipVerify is created.
	HTTPClient *http.Client `json:"-"`

	// Registerer receives the server's prometheus collectors.
	// If nil, a private registry is used.
	Registerer prometheus.Registerer `json:"-"`

	// Fs is the filesystem payload artifacts are written to.
	// If nil, the OS filesystem is used.
	Fs afero.Fs `json:"-"`
}

// ApplyDefaults fills unset fields with their defaults.
func (o *Options) ApplyDefaults() {
	o.RPCURL = strings.TrimRight(strings.TrimSpace(o.RPCURL), "/")
	if o.RPCURL == "" {
		o.RPCURL = DefaultRPCURL
	}

	if strings.TrimSpace(o.PayloadDir) == "" {
		o.PayloadDir = DefaultPayloadDir
	}

	if o.ListLimit <= 0 {
		o.ListLimit = DefaultListLimit
	}

	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
}

// Validate reports configuration that must stop the server from starting.
func (o *Options) Validate() error {
	if o.Password == "" {
		return errors.ErrMissingPassword
	}

	return nil
}
