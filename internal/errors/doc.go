// Package errors defines error types for the Metasploit MCP server.
//
// This package provides structured error types for each failure class the
// server distinguishes: transport, protocol, validation, safety gate and
// artifact failures. All error types support error unwrapping and can be
// checked using errors.Is, errors.As, and errors.AsType.
package errors
