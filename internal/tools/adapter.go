package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/msf-mcp-go/internal/artifact"
	"github.com/wagiedev/msf-mcp-go/internal/config"
	internalmcp "github.com/wagiedev/msf-mcp-go/internal/mcp"
	"github.com/wagiedev/msf-mcp-go/internal/msf"
	"github.com/wagiedev/msf-mcp-go/internal/telemetry"
)

// Tool names.
const (
	NameListExploits       = "list_exploits"
	NameListPayloads       = "list_payloads"
	NameRunExploit         = "run_exploit"
	NameGeneratePayload    = "generate_payload"
	NameListSessions       = "list_sessions"
	NameSendSessionCommand = "send_session_command"
	NameKillSession        = "kill_session"
	NameGetModuleInfo      = "get_module_info"
)

// toolFunc handles one decoded call and returns its envelope.
type toolFunc func(ctx context.Context, args internalmcp.Args) envelope

// Adapter binds the MCP tool surface to a command client.
type Adapter struct {
	log       *slog.Logger
	client    *msf.Client
	store     *artifact.Store
	metrics   *telemetry.Metrics
	listLimit int
}

// New creates an adapter. A non-positive listLimit uses the default.
func New(
	log *slog.Logger,
	client *msf.Client,
	store *artifact.Store,
	metrics *telemetry.Metrics,
	listLimit int,
) *Adapter {
	if listLimit <= 0 {
		listLimit = config.DefaultListLimit
	}

	return &Adapter{
		log:       log.With("component", "tools"),
		client:    client,
		store:     store,
		metrics:   metrics,
		listLimit: listLimit,
	}
}

// Register adds every tool to registry.
func (a *Adapter) Register(registry *internalmcp.Registry) {
	registry.Add(a.Tools()...)
}

// wrap turns a toolFunc into a protocol handler that always yields an
// envelope, recording the outcome.
func (a *Adapter) wrap(name string, fn toolFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		env := a.call(ctx, name, req, fn)
		a.metrics.ObserveTool(name, env.status())

		return env.toResult(), nil
	}
}

func (a *Adapter) call(ctx context.Context, name string, req *mcp.CallToolRequest, fn toolFunc) (env envelope) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Tool handler panicked", "tool", name, "panic", r, "stack", string(debug.Stack()))
			env = failure(fmt.Sprintf("internal error: %v", r))
		}
	}()

	args, err := internalmcp.ParseArguments(req)
	if err != nil {
		return failure(err.Error())
	}

	a.log.Debug("Tool called", "tool", name)

	return fn(ctx, args)
}

func truncate(names []string, limit int) []string {
	if len(names) > limit {
		return names[:limit]
	}

	return names
}

func (a *Adapter) listExploits(ctx context.Context, args internalmcp.Args) envelope {
	search, err := args.String("search_term")
	if err != nil {
		return failure(err.Error())
	}

	exploits := a.client.ListExploits(ctx, search)

	return success(envelope{
		"count":    len(exploits),
		"exploits": truncate(exploits, a.listLimit),
	})
}

func (a *Adapter) listPayloads(ctx context.Context, args internalmcp.Args) envelope {
	platform, err := args.String("platform")
	if err != nil {
		return failure(err.Error())
	}

	arch, err := args.String("arch")
	if err != nil {
		return failure(err.Error())
	}

	payloads := a.client.ListPayloads(ctx, platform, arch)

	return success(envelope{
		"count":    len(payloads),
		"payloads": truncate(payloads, a.listLimit),
	})
}

type runExploitArgs struct {
	exploit    string
	rhosts     string
	payload    string
	lhost      string
	lport      int
	additional string
	runCheck   bool
}

func parseRunExploitArgs(args internalmcp.Args) (runExploitArgs, error) {
	var (
		out runExploitArgs
		err error
	)

	if out.exploit, err = args.RequiredString("exploit_name"); err != nil {
		return out, err
	}

	if out.rhosts, err = args.RequiredString("rhosts"); err != nil {
		return out, err
	}

	if out.payload, err = args.String("payload"); err != nil {
		return out, err
	}

	if out.lhost, err = args.String("lhost"); err != nil {
		return out, err
	}

	if out.lport, err = args.Int("lport", config.DefaultLPORT); err != nil {
		return out, err
	}

	if out.additional, err = args.String("additional_options"); err != nil {
		return out, err
	}

	if out.runCheck, err = args.Bool("run_check", true); err != nil {
		return out, err
	}

	if err := validateHosts("rhosts", out.rhosts); err != nil {
		return out, err
	}

	if err := validateHost("lhost", out.lhost); err != nil {
		return out, err
	}

	return out, validatePort("lport", out.lport)
}

func (a *Adapter) runExploit(ctx context.Context, args internalmcp.Args) envelope {
	in, err := parseRunExploitArgs(args)
	if err != nil {
		return failure(err.Error())
	}

	opts, err := buildOptions(listenerOptions{
		RHosts:  in.rhosts,
		Payload: in.payload,
		LHost:   in.lhost,
		LPort:   in.lport,
	}, in.additional)
	if err != nil {
		return failure(err.Error())
	}

	if in.runCheck {
		if gate := a.checkGate(ctx, in.exploit, opts); gate != nil {
			return gate
		}
	}

	resp := a.client.ExecuteModule(ctx, in.exploit, opts)
	if resp.IsError() {
		return failureWithResult(resp.Err(msf.MethodModuleExecute).Error(), resp)
	}

	a.log.Info("Exploit launched", "exploit", in.exploit, "target", in.rhosts)

	return success(envelope{
		"exploit": in.exploit,
		"target":  in.rhosts,
		"result":  resp,
	})
}

func (a *Adapter) generatePayload(ctx context.Context, args internalmcp.Args) envelope {
	module, err := args.RequiredString("payload_name")
	if err != nil {
		return failure(err.Error())
	}

	format, err := args.RequiredString("format_type")
	if err != nil {
		return failure(err.Error())
	}

	if err := validateFormat("format_type", format); err != nil {
		return failure(err.Error())
	}

	lhost, err := args.String("lhost")
	if err != nil {
		return failure(err.Error())
	}

	lport, err := args.Int("lport", config.DefaultLPORT)
	if err != nil {
		return failure(err.Error())
	}

	additional, err := args.String("additional_options")
	if err != nil {
		return failure(err.Error())
	}

	if err := validateHost("lhost", lhost); err != nil {
		return failure(err.Error())
	}

	if err := validatePort("lport", lport); err != nil {
		return failure(err.Error())
	}

	opts, err := buildOptions(listenerOptions{LHost: lhost, LPort: lport}, additional)
	if err != nil {
		return failure(err.Error())
	}

	resp := a.client.GeneratePayload(ctx, module, format, opts)
	if resp.IsError() {
		return failureWithResult(resp.Err(msf.MethodModuleExecute).Error(), resp)
	}

	result, ok := resp.RemoteResult()
	if !ok {
		return failureWithResult("Payload generation failed", resp)
	}

	path, err := a.store.Save(module, format, result)
	if err != nil {
		a.log.Warn("Payload not saved", "payload", module, "error", err)

		return failureWithResult(err.Error(), resp)
	}

	return success(envelope{
		"payload":  module,
		"format":   format,
		"saved_to": path,
		"result":   resp,
	})
}

func (a *Adapter) listSessions(ctx context.Context, _ internalmcp.Args) envelope {
	sessions := a.client.ListSessions(ctx)

	return success(envelope{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (a *Adapter) sendSessionCommand(ctx context.Context, args internalmcp.Args) envelope {
	id, err := args.RequiredInt("session_id")
	if err != nil {
		return failure(err.Error())
	}

	command, err := args.RequiredString("command")
	if err != nil {
		return failure(err.Error())
	}

	resp := a.client.SendSessionCommand(ctx, id, command)
	if resp.IsError() {
		return failureWithResult(resp.Err(msf.MethodSessionShellWrite).Error(), resp)
	}

	return success(envelope{
		"session_id": id,
		"command":    command,
		"result":     resp,
	})
}

func (a *Adapter) killSession(ctx context.Context, args internalmcp.Args) envelope {
	id, err := args.RequiredInt("session_id")
	if err != nil {
		return failure(err.Error())
	}

	resp := a.client.KillSession(ctx, id)
	if resp.IsError() {
		return failureWithResult(resp.Err(msf.MethodSessionStop).Error(), resp)
	}

	a.log.Info("Session stopped", "session_id", id)

	return success(envelope{
		"session_id": id,
		"result":     resp,
	})
}

func (a *Adapter) getModuleInfo(ctx context.Context, args internalmcp.Args) envelope {
	module, err := args.RequiredString("module_name")
	if err != nil {
		return failure(err.Error())
	}

	resp := a.client.ModuleInfo(ctx, module)
	if resp.IsError() {
		return failureWithResult(resp.Err(msf.MethodModuleInfo).Error(), resp)
	}

	return success(envelope{
		"module": module,
		"info":   resp,
	})
}
