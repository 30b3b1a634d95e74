// Package policy validates planned tool calls against the workspace manifest
// before the broker executes them. Violations never abort the pipeline: the
// offending call is dropped and an advisory is recorded, the rest of the plan
// proceeds.
package policy

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
)

// Advisory kinds recorded in telemetry.
const (
	AdvisoryUnknownTool = "unknown_tool"
	AdvisoryMissingArgs = "missing_args"
	AdvisoryRateLimited = "rate_limited"
)

// ApprovedCall is a planned call that passed policy, carrying its manifest
// entry (for the broker's timeout and execution mode) and, for write tools,
// the idempotency key.
type ApprovedCall struct {
	models.PlannedCall
	Entry          manifest.Entry
	IdempotencyKey string
}

// Engine applies per-workspace policy to plans. One engine serves the whole
// process; its limiter table is shared across requests.
type Engine struct {
	limits *limiterTable
}

func New() *Engine {
	return &Engine{limits: newLimiterTable()}
}

// Apply sanitises a plan for execution. For each call, in order:
// unknown tools are rejected, missing required args are backfilled from the
// conversation slots (workspace-bound args from workspaceID), rate limits are
// checked per (workspace, tool), and write calls get an idempotency key.
// The approved plan preserves the original order and is never longer than
// the input.
func (e *Engine) Apply(workspaceID, conversationID string, plan models.Plan, slots map[string]string, m manifest.Manifest) ([]ApprovedCall, []string) {
	approved := make([]ApprovedCall, 0, len(plan.Calls))
	advisories := []string{}

	for _, call := range plan.Calls {
		entry, ok := m.Lookup(call.Tool)
		if !ok {
			advisories = append(advisories, advisory(AdvisoryUnknownTool, call.Tool, nil))
			continue
		}

		args := cloneArgs(call.Args)
		var missing []string
		for _, spec := range entry.Args {
			if _, present := args[spec.Name]; present {
				continue
			}
			slot := spec.Slot
			if slot == "" {
				slot = spec.Name
			}
			if v, found := slots[slot]; found {
				args[spec.Name] = v
			} else if spec.Required {
				missing = append(missing, spec.Name)
			}
		}
		if entry.Policy.RequiresWorkspace {
			args["workspace_id"] = workspaceID
		}
		if len(missing) > 0 {
			advisories = append(advisories, advisory(AdvisoryMissingArgs, call.Tool, missing))
			continue
		}

		if !e.limits.allow(workspaceID+"/"+call.Tool, entry.Policy.MaxRPSPerWorkspace) {
			slog.Warn("Tool call rate limited",
				"workspace_id", workspaceID, "tool", call.Tool,
				"max_rps", entry.Policy.MaxRPSPerWorkspace)
			advisories = append(advisories, advisory(AdvisoryRateLimited, call.Tool, nil))
			continue
		}

		out := ApprovedCall{
			PlannedCall: models.PlannedCall{Tool: call.Tool, Args: args},
			Entry:       entry,
		}
		if entry.Policy.Write {
			out.IdempotencyKey = IdempotencyKey(workspaceID, conversationID, call.Tool, args)
		}
		approved = append(approved, out)
	}

	return approved, advisories
}

func advisory(kind, tool string, detail []string) string {
	if len(detail) == 0 {
		return fmt.Sprintf("%s:%s", kind, tool)
	}
	return fmt.Sprintf("%s:%s:%s", kind, tool, strings.Join(detail, ","))
}

func cloneArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args)+1)
	for k, v := range args {
		out[k] = v
	}
	return out
}
