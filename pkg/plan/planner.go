// Package plan turns an extraction plus the workspace tool manifest into an
// ordered plan of at most three tool calls. Plans carry structure only;
// the planner never produces natural-language output.
package plan

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/llm"
	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
	"github.com/turnos-ai/orchestrator/pkg/schema"
)

// DefaultBudget is the planner stage budget.
const DefaultBudget = 200 * time.Millisecond

// Planner is the second pipeline stage.
type Planner struct {
	client llm.Client
	budget time.Duration
}

// New creates a planner. budget <= 0 selects DefaultBudget.
func New(client llm.Client, budget time.Duration) *Planner {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Planner{client: client, budget: budget}
}

// Plan builds the tool plan for an extraction. Behaviour:
//   - If the intent's rule sequence is fully satisfied by the known slots,
//     the deterministic plan is used and the model is not consulted.
//   - Otherwise the model proposes a plan; tools not in the manifest are
//     dropped, and an emptied plan falls back to the deterministic walk.
//   - MissingSlots is always computed from the manifest argument shapes,
//     never taken from the model.
//
// The result honours the 3-call bound and never fails: worst case it is the
// deterministic plan, which may be empty.
func (p *Planner) Plan(ctx context.Context, ext models.Extraction, slots map[string]string, m manifest.Manifest) models.Plan {
	det := Deterministic(ext.Intent, slots, m)

	if complete(ext.Intent, slots, m) || ext.Heuristic {
		// Heuristic extractions skip the model on purpose: if the extractor
		// already degraded, a second model call inside the same budget is
		// more likely to burn time than to improve the plan.
		return det
	}

	proposed, ok := p.propose(ctx, ext, slots, m)
	if !ok {
		return det
	}

	kept := make([]models.PlannedCall, 0, models.MaxPlanLength)
	for _, call := range proposed {
		if _, known := m.Lookup(call.Tool); !known {
			slog.Debug("Planner dropped unknown tool", "tool", call.Tool)
			continue
		}
		if call.Args == nil {
			call.Args = map[string]any{}
		}
		kept = append(kept, call)
		if len(kept) == models.MaxPlanLength {
			break
		}
	}
	if len(kept) == 0 {
		return det
	}

	return models.Plan{Calls: kept, MissingSlots: det.MissingSlots}
}

// propose asks the model for a plan. ok is false on any model failure.
func (p *Planner) propose(ctx context.Context, ext models.Extraction, slots map[string]string, m manifest.Manifest) ([]models.PlannedCall, bool) {
	raw, err := p.client.GenerateJSON(ctx, llm.Request{
		System:     plannerSystemPrompt,
		User:       buildPlannerPrompt(ext, slots, m),
		SchemaName: schema.PlannerV1,
		Timeout:    p.budget,
	})
	if err != nil {
		slog.Debug("Planner model call failed, using deterministic plan",
			"kind", llm.KindOf(err), "intent", ext.Intent)
		return nil, false
	}

	var out models.Plan
	if err := json.Unmarshal(raw, &out); err != nil {
		slog.Warn("Planner payload failed decoding after validation", "error", err)
		return nil, false
	}
	return out.Calls, true
}
