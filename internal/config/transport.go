// Package config provides configuration types for the Metasploit MCP server.
package config

// TransportMode selects how the MCP server is exposed to its host.
type TransportMode string

const (
	// TransportStdio serves MCP over stdin/stdout.
	TransportStdio TransportMode = "stdio"
	// TransportHTTP serves MCP over the streamable HTTP transport.
	TransportHTTP TransportMode = "http"
	// TransportSSE serves MCP over the legacy Server-Sent Events transport.
	TransportSSE TransportMode = "sse"
)

// NormalizeTransportMode maps transport aliases to their canonical mode.
//
// Aliases:
//   - "" -> "stdio"
//   - "streamable", "streamable-http" -> "http"
//
// Unknown values are returned unchanged so callers can reject them.
func NormalizeTransportMode(mode string) TransportMode {
	switch mode {
	case "":
		return TransportStdio
	case "streamable", "streamable-http":
		return TransportHTTP
	default:
		return TransportMode(mode)
	}
}

// Valid reports whether m is a supported transport mode.
func (m TransportMode) Valid() bool {
	switch m {
	case TransportStdio, TransportHTTP, TransportSSE:
		return true
	default:
		return false
	}
}
