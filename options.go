package msfmcp

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/wagiedev/msf-mcp-go/internal/config"
)

// Options configures a Server.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithRPCURL sets the msfrpcd base URL (default http://127.0.0.1:55553).
func WithRPCURL(url string) Option {
	return func(o *Options) {
		o.RPCURL = url
	}
}

// WithPassword sets the msfrpcd password. Required.
func WithPassword(password string) Option {
	return func(o *Options) {
		o.Password = password
	}
}

// WithInsecureSkipVerify disables TLS certificate verification for the RPC
// endpoint.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *Options) {
		o.InsecureSkipVerify = skip
	}
}

// WithPayloadDir sets the directory generated payloads are written to.
func WithPayloadDir(dir string) Option {
	return func(o *Options) {
		o.PayloadDir = dir
	}
}

// WithHTTPClient sets the HTTP client used for RPC calls.
// When set, WithInsecureSkipVerify has no effect.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithRegisterer sets the prometheus registerer for server metrics.
// If it is also a prometheus.Gatherer, the HTTP transports serve it on /metrics.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = reg
	}
}

// WithFs sets the filesystem payload artifacts are written to.
func WithFs(fs afero.Fs) Option {
	return func(o *Options) {
		o.Fs = fs
	}
}

// WithListLimit caps the number of names returned by the list tools.
func WithListLimit(limit int) Option {
	return func(o *Options) {
		o.ListLimit = limit
	}
}
