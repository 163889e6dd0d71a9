package tools

import (
	"context"

	"github.com/wagiedev/msf-mcp-go/internal/errors"
	"github.com/wagiedev/msf-mcp-go/internal/msf"
	"github.com/wagiedev/msf-mcp-go/internal/rpc"
)

// statusExploitable is the only check status that lets an exploit run.
const statusExploitable = "exploitable"

// checkGate runs the module check and returns a check_failed envelope
// unless the nested result status is exactly "exploitable". A nil return
// means the exploit may proceed.
func (a *Adapter) checkGate(ctx context.Context, module string, opts msf.ModuleOptions) envelope {
	resp := a.client.CheckExploitability(ctx, module, opts)

	status := checkStatus(resp)
	if status == statusExploitable {
		return nil
	}

	gate := &errors.SafetyGateError{Module: module, Status: status}
	a.log.Warn("Exploit check did not pass", "exploit", module, "check_status", status, "error", resp.Err(msf.MethodModuleCheck))

	return envelope{
		"status":       StatusCheckFailed,
		"message":      gate.Error(),
		"check_result": resp,
	}
}

// checkStatus extracts result.status from a module.check reply, or "" when
// the reply has no such string field.
func checkStatus(resp *rpc.Response) string {
	result, ok := resp.RemoteResult()
	if !ok {
		return ""
	}

	fields, ok := result.(map[string]any)
	if !ok {
		return ""
	}

	status, _ := fields["status"].(string)

	return status
}
