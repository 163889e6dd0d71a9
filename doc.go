// Package msfmcp exposes a Metasploit Framework RPC daemon (msfrpcd) as a
// set of Model Context Protocol tools.
//
// # Basic Usage
//
// Create a server with the RPC credential and serve it over stdio:
//
//	server, err := msfmcp.NewServer(
//	    msfmcp.WithRPCURL("https://127.0.0.1:55553"),
//	    msfmcp.WithPassword(os.Getenv("MSF_RPC_PASSWORD")),
//	    msfmcp.WithInsecureSkipVerify(true),
//	    msfmcp.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := server.Run(ctx, msfmcp.TransportStdio, ""); err != nil {
//	    log.Fatal(err)
//	}
//
// NewServer fails with ErrMissingPassword when no password is configured.
// No RPC traffic happens until the first tool call, which logs in and
// caches the token. A token rejected by the daemon is dropped and the next
// call logs in again.
//
// # Tools
//
//   - list_exploits, list_payloads: module discovery with substring filters
//   - run_exploit: checks the target first and launches only when the check
//     reports "exploitable"
//   - generate_payload: renders a payload and writes it to the payload directory
//   - list_sessions, send_session_command, kill_session: session management
//   - get_module_info: module metadata
//
// Every tool answers with a JSON object carrying a "status" of "success",
// "error" or "check_failed".
//
// # Network Transports
//
// TransportHTTP serves the streamable HTTP transport on /mcp and
// TransportSSE serves the SSE transport on /sse. Both also serve
// prometheus metrics on /metrics:
//
//	err := server.Run(ctx, msfmcp.TransportHTTP, "127.0.0.1:8080")
//
// # Error Handling
//
// Tool failures are reported inside the JSON envelope. The error types
// re-exported here classify them:
//
//	var gate *msfmcp.SafetyGateError
//	if errors.As(err, &gate) {
//	    // the exploit check did not pass
//	}
package msfmcp
