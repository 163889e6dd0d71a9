// Package telemetry holds the prometheus collectors shared by the RPC
// session and the tool adapter.
package telemetry

import (
	stderrors "errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "msfmcp"

// RPC outcome labels.
const (
	OutcomeSuccess        = "success"
	OutcomeRemoteError    = "remote_error"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeMalformed      = "malformed"
	OutcomeAuthError      = "auth_error"
)

// Metrics records RPC round trips, logins and tool calls.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	rpcRequests *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	logins      *prometheus.CounterVec
	toolCalls   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// If reg is nil, a private registry is used.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "RPC round trips to msfrpcd by method and outcome.",
		}, []string{"method", "outcome"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Latency of RPC round trips to msfrpcd.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "logins_total",
			Help:      "Login attempts against msfrpcd by result.",
		}, []string{"success"}),
		toolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tools",
			Name:      "calls_total",
			Help:      "MCP tool invocations by tool and envelope status.",
		}, []string{"tool", "status"}),
	}

	var err error
	if m.rpcRequests, err = register(reg, m.rpcRequests); err != nil {
		return nil, err
	}

	if m.rpcDuration, err = register(reg, m.rpcDuration); err != nil {
		return nil, err
	}

	if m.logins, err = register(reg, m.logins); err != nil {
		return nil, err
	}

	if m.toolCalls, err = register(reg, m.toolCalls); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg, reusing an identical collector that is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

// ObserveRPC records one RPC round trip.
func (m *Metrics) ObserveRPC(method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.rpcRequests.WithLabelValues(method, outcome).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveLogin records one login attempt.
func (m *Metrics) ObserveLogin(success bool) {
	if m == nil {
		return
	}

	m.logins.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// ObserveTool records one tool invocation and the status of its envelope.
func (m *Metrics) ObserveTool(tool, status string) {
	if m == nil {
		return
	}

	m.toolCalls.WithLabelValues(tool, status).Inc()
}
