package msf

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/wagiedev/msf-mcp-go/internal/rpc"
)

// RPC methods used by the client.
const (
	MethodModuleExploits    = "module.exploits"
	MethodModulePayloads    = "module.payloads"
	MethodModuleExecute     = "module.execute"
	MethodModuleCheck       = "module.check"
	MethodModuleInfo        = "module.info"
	MethodSessionList       = "session.list"
	MethodSessionShellWrite = "session.shell_write"
	MethodSessionStop       = "session.stop"
)

// Invoker issues one RPC call. *rpc.Session satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, method string, params map[string]any) *rpc.Response
}

// Compile-time verification that the RPC session satisfies Invoker.
var _ Invoker = (*rpc.Session)(nil)

// SessionHandle is a flattened session.list entry: the remote attributes
// plus the session id under "id".
type SessionHandle map[string]any

// ID returns the session id as reported by session.list.
func (h SessionHandle) ID() string {
	id, _ := h["id"].(string)

	return id
}

// Client translates domain intents into RPC calls.
type Client struct {
	log *slog.Logger
	rpc Invoker
}

// New creates a command client over invoker.
func New(log *slog.Logger, invoker Invoker) *Client {
	return &Client{
		log: log.With("component", "msf"),
		rpc: invoker,
	}
}

// ListExploits returns exploit module names, optionally filtered by a
// case-insensitive substring.
func (c *Client) ListExploits(ctx context.Context, search string) []string {
	names := c.listModules(ctx, MethodModuleExploits)

	return filterContains(names, search)
}

// ListPayloads returns payload module names. Platform and arch filters are
// case-insensitive substrings and apply together when both are set.
func (c *Client) ListPayloads(ctx context.Context, platform, arch string) []string {
	names := c.listModules(ctx, MethodModulePayloads)

	return filterContains(filterContains(names, platform), arch)
}

// listModules calls method and extracts a list of module names, accepting
// either a bare list or an object with a "modules" list.
func (c *Client) listModules(ctx context.Context, method string) []string {
	resp := c.rpc.Invoke(ctx, method, nil)

	result, ok := resp.RemoteResult()
	if !ok {
		c.log.Warn("Module listing returned no result", "method", method, "error", resp.Err(method))

		return []string{}
	}

	if wrapped, isMap := result.(map[string]any); isMap {
		result = wrapped["modules"]
	}

	items, ok := result.([]any)
	if !ok {
		c.log.Warn("Module listing result is not a list", "method", method, "type", fmt.Sprintf("%T", result))

		return []string{}
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		if name, ok := item.(string); ok {
			names = append(names, name)
		}
	}

	return names
}

func filterContains(names []string, term string) []string {
	if term == "" {
		return names
	}

	needle := strings.ToLower(term)

	return slices.DeleteFunc(names, func(name string) bool {
		return !strings.Contains(strings.ToLower(name), needle)
	})
}

// ExecuteModule runs module with options.
func (c *Client) ExecuteModule(ctx context.Context, module string, options ModuleOptions) *rpc.Response {
	c.log.Debug("Executing module", "module", module)

	return c.rpc.Invoke(ctx, MethodModuleExecute, map[string]any{
		"module":  module,
		"options": optionsParam(options),
	})
}

// GeneratePayload asks msfrpcd to render payload module in format. It uses
// the same method as ExecuteModule; the Format datastore entry selects
// generation.
func (c *Client) GeneratePayload(ctx context.Context, module, format string, options ModuleOptions) *rpc.Response {
	c.log.Debug("Generating payload", "module", module, "format", format)

	return c.rpc.Invoke(ctx, MethodModuleExecute, map[string]any{
		"module":    module,
		"options":   optionsParam(options),
		"datastore": map[string]any{"Format": format},
	})
}

// CheckExploitability runs the module's check against the configured target.
func (c *Client) CheckExploitability(ctx context.Context, module string, options ModuleOptions) *rpc.Response {
	c.log.Debug("Checking module", "module", module)

	return c.rpc.Invoke(ctx, MethodModuleCheck, map[string]any{
		"module":  module,
		"options": optionsParam(options),
	})
}

// ModuleInfo returns the remote description of module.
func (c *Client) ModuleInfo(ctx context.Context, module string) *rpc.Response {
	return c.rpc.Invoke(ctx, MethodModuleInfo, map[string]any{"module": module})
}

// ListSessions returns the live sessions, each carrying its id under "id".
// An attribute named "id" is overwritten by the session id. Entries are
// ordered by id, numerically where ids are numbers.
func (c *Client) ListSessions(ctx context.Context) []SessionHandle {
	resp := c.rpc.Invoke(ctx, MethodSessionList, nil)

	result, ok := resp.RemoteResult()
	if !ok {
		c.log.Warn("Session listing returned no result", "error", resp.Err(MethodSessionList))

		return []SessionHandle{}
	}

	entries, ok := result.(map[string]any)
	if !ok {
		c.log.Warn("Session listing result is not an object", "type", fmt.Sprintf("%T", result))

		return []SessionHandle{}
	}

	sessions := make([]SessionHandle, 0, len(entries))
	for id, raw := range entries {
		handle := SessionHandle{}
		if attrs, ok := raw.(map[string]any); ok {
			for k, v := range attrs {
				handle[k] = v
			}
		}

		handle["id"] = id
		sessions = append(sessions, handle)
	}

	slices.SortFunc(sessions, func(a, b SessionHandle) int {
		return compareIDs(a.ID(), b.ID())
	})

	return sessions
}

// compareIDs orders numeric ids numerically before non-numeric ids.
func compareIDs(a, b string) int {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SendSessionCommand writes command to the session's shell. The command
// output is not read back.
func (c *Client) SendSessionCommand(ctx context.Context, id any, command string) *rpc.Response {
	c.log.Debug("Writing to session", "session_id", id)

	return c.rpc.Invoke(ctx, MethodSessionShellWrite, map[string]any{
		"id":      id,
		"command": command,
	})
}

// KillSession stops the session.
func (c *Client) KillSession(ctx context.Context, id any) *rpc.Response {
	c.log.Debug("Stopping session", "session_id", id)

	return c.rpc.Invoke(ctx, MethodSessionStop, map[string]any{"id": id})
}

// optionsParam keeps a nil options map from being encoded as JSON null.
func optionsParam(options ModuleOptions) map[string]any {
	if options == nil {
		return map[string]any{}
	}

	return options
}
