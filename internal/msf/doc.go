// Package msf implements the typed command layer over an msfrpcd session.
//
// Each Client method maps one domain intent onto exactly one RPC method:
//
//	ListExploits         module.exploits
//	ListPayloads         module.payloads
//	ExecuteModule        module.execute
//	GeneratePayload      module.execute (with datastore.Format)
//	CheckExploitability  module.check
//	ModuleInfo           module.info
//	ListSessions         session.list
//	SendSessionCommand   session.shell_write
//	KillSession          session.stop
//
// List-style queries degrade to an empty result when the call fails or the
// reply is malformed, so callers cannot tell "no matches" from "RPC failed"
// at this layer. Action-style operations return the rpc.Response unchanged
// so callers can surface remote errors.
package msf
