// Package mcp holds the tool registry and the helpers tool handlers share:
// input schemas, argument coercion and result construction.
//
// A Registry collects tools once and can then populate any number of
// go-sdk servers, one per transport session when serving over HTTP.
// It also invokes tools directly, which the CLI and tests use without
// standing up a transport.
package mcp
