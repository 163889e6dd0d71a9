// Package tools exposes the Metasploit command client as MCP tools.
//
// Every tool returns a JSON envelope as text content:
//
//	{"status": "success" | "error" | "check_failed", ...fields, "result" | "message": ...}
//
// The envelope is produced on every path, including invalid arguments and
// recovered panics. Argument errors are reported before any RPC is made.
package tools
