// Package rpc implements the authenticated session against the msfrpcd
// JSON-RPC endpoint.
//
// A Session owns the HTTP client, the RPC credential and the current
// authentication token. Invoke performs exactly one round trip per call and
// classifies the outcome at the transport level only:
//   - network failures become an Error response carrying the transport detail
//   - non-2xx replies become an Error response with message "HTTP <status>"
//   - 2xx replies with a JSON body become a Result response, even when the
//     body itself carries a remote error
//
// Semantic interpretation of remote errors is left to the caller.
//
// The token is obtained lazily: Invoke logs in first when no token is held,
// and clears the token when the remote rejects it so the next call logs in
// again. Authentication is not serialized between concurrent callers; two
// calls that observe a missing token may both log in and the later success
// overwrites the token.
//
// Example usage:
//
//	session := rpc.NewSession(log, opts, metrics)
//	resp := session.Invoke(ctx, "module.exploits", nil)
//	if resp.IsError() {
//	    return resp.Error.Message
//	}
package rpc
