package tools

import (
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/msf-mcp-go/internal/config"
	internalmcp "github.com/wagiedev/msf-mcp-go/internal/mcp"
)

// Instructions describes the tool set to MCP clients.
const Instructions = `Tools for driving a Metasploit Framework instance over msfrpcd.

Use list_exploits, list_payloads and get_module_info to discover modules.
run_exploit checks the target first unless run_check is false, and only
launches when the check reports "exploitable". generate_payload writes the
rendered payload into the configured payload directory. list_sessions,
send_session_command and kill_session manage sessions opened by exploits.

Every tool answers with a JSON object whose "status" is "success", "error"
or "check_failed".`

func boolPtr(b bool) *bool {
	return &b
}

func readOnly(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:          title,
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(true),
	}
}

func destructive(title string) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		Title:           title,
		DestructiveHint: boolPtr(true),
		OpenWorldHint:   boolPtr(true),
	}
}

const additionalOptionsDescription = "Additional module options as a JSON object string. Keys override the named parameters."

// Tools returns the tool definitions bound to this adapter.
func (a *Adapter) Tools() []*internalmcp.Tool {
	return []*internalmcp.Tool{
		internalmcp.NewTool(NameListExploits,
			"List available Metasploit exploit modules, optionally filtered by a case-insensitive search term.",
			internalmcp.Object(map[string]*jsonschema.Schema{
				"search_term": internalmcp.StringDefault("Optional search term to filter exploits", ""),
			}),
			a.wrap(NameListExploits, a.listExploits),
			internalmcp.WithAnnotations(readOnly("List exploits")),
		),
		internalmcp.NewTool(NameListPayloads,
			"List available Metasploit payload modules, optionally filtered by platform and architecture.",
			internalmcp.Object(map[string]*jsonschema.Schema{
				"platform": internalmcp.StringDefault("Filter by platform (e.g. windows, linux)", ""),
				"arch":     internalmcp.StringDefault("Filter by architecture (e.g. x86, x64)", ""),
			}),
			a.wrap(NameListPayloads, a.listPayloads),
			internalmcp.WithAnnotations(readOnly("List payloads")),
		),
		internalmcp.NewTool(NameRunExploit,
			"Run a Metasploit exploit against a target. The target is checked first unless run_check is false.",
			internalmcp.Object(map[string]*jsonschema.Schema{
				"exploit_name":       internalmcp.String("Full exploit module name (e.g. exploit/windows/smb/ms17_010_eternalblue)"),
				"rhosts":             internalmcp.String("Target host(s), comma-separated for multiple"),
				"payload":            internalmcp.StringDefault("Payload to use", ""),
				"lhost":              internalmcp.StringDefault("Local host for reverse connections", ""),
				"lport":              internalmcp.Integer("Local port for reverse connections", config.DefaultLPORT),
				"additional_options": internalmcp.StringDefault(additionalOptionsDescription, ""),
				"run_check":          internalmcp.Boolean("Whether to run the exploit check first", true),
			}, "exploit_name", "rhosts"),
			a.wrap(NameRunExploit, a.runExploit),
			internalmcp.WithAnnotations(destructive("Run exploit")),
		),
		internalmcp.NewTool(NameGeneratePayload,
			"Generate a Metasploit payload and save it to the payload directory.",
			internalmcp.Object(map[string]*jsonschema.Schema{
				"payload_name":       internalmcp.String("Full payload name (e.g. windows/meterpreter/reverse_tcp)"),
				"format_type":        internalmcp.String("Output format (e.g. exe, raw, python)"),
				"lhost":              internalmcp.StringDefault("Local host for reverse connections", ""),
				"lport":              internalmcp.Integer("Local port for reverse connections", config.DefaultLPORT),
				"additional_options": internalmcp.StringDefault(additionalOptionsDescription, ""),
			}, "payload_name", "format_type"),
			a.wrap(NameGeneratePayload, a.generatePayload),
			internalmcp.WithAnnotations(destructive("Generate payload")),
		),
		internalmcp.NewTool(NameListSessions,
			"List active Metasploit sessions.",
			nil,
			a.wrap(NameListSessions, a.listSessions),
			internalmcp.WithAnnotations(readOnly("List sessions")),
		),
		internalmcp.NewTool(NameSendSessionCommand,
			"Send a command to an active Metasploit shell session. Output is not read back.",
			internalmcp.Object(map[string]*jsonschema.Schema{
				"session_id": {Type: "integer", Description: "ID of the session to send the command to"},
				"command":    internalmcp.String("Command to execute"),
			}, "session_id", "command"),
			a.wrap(NameSendSessionCommand, a.sendSessionCommand),
			internalmcp.WithAnnotations(destructive("Send session command")),
		),
		internalmcp.NewTool(NameKillSession,
			"Kill an active Metasploit session.",
			internalmcp.Object(map[string]*jsonschema.Schema{
				"session_id": {Type: "integer", Description: "ID of the session to kill"},
			}, "session_id"),
			a.wrap(NameKillSession, a.killSession),
			internalmcp.WithAnnotations(destructive("Kill session")),
		),
		internalmcp.NewTool(NameGetModuleInfo,
			"Get detailed information about a Metasploit module (exploit, payload, auxiliary, etc.).",
			internalmcp.Object(map[string]*jsonschema.Schema{
				"module_name": internalmcp.String("Full module name"),
			}, "module_name"),
			a.wrap(NameGetModuleInfo, a.getModuleInfo),
			internalmcp.WithAnnotations(readOnly("Module info")),
		),
	}
}
