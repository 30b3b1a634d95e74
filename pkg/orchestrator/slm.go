// Package orchestrator sequences the decision pipelines and routes inbound
// requests between them.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/broker"
	"github.com/turnos-ai/orchestrator/pkg/extract"
	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
	"github.com/turnos-ai/orchestrator/pkg/nlg"
	"github.com/turnos-ai/orchestrator/pkg/plan"
	"github.com/turnos-ai/orchestrator/pkg/policy"
	"github.com/turnos-ai/orchestrator/pkg/reduce"
)

// DefaultTotalBudget is the soft per-request budget. Exceeding it is flagged
// in telemetry, never aborted: a late reply beats no reply on WhatsApp.
const DefaultTotalBudget = 1500 * time.Millisecond

// SLM is the model-backed pipeline: extractor and planner consult the small
// language model, everything after is deterministic.
type SLM struct {
	extractor *extract.Extractor
	planner   *plan.Planner
	shared    *shared
}

// shared is the deterministic back half (policy, broker, reducer, generator
// plus the manifest cache) used by both routes.
type shared struct {
	manifests   *manifest.Resolver
	engine      *policy.Engine
	broker      *broker.Broker
	totalBudget time.Duration
}

func NewSLM(extractor *extract.Extractor, planner *plan.Planner, manifests *manifest.Resolver, engine *policy.Engine, b *broker.Broker, totalBudget time.Duration) *SLM {
	if totalBudget <= 0 {
		totalBudget = DefaultTotalBudget
	}
	return &SLM{
		extractor: extractor,
		planner:   planner,
		shared: &shared{
			manifests:   manifests,
			engine:      engine,
			broker:      b,
			totalBudget: totalBudget,
		},
	}
}

// Decide runs the six stages in order. Every stage degrades instead of
// failing: a broken extractor falls to heuristics inside C4, a broken
// planner yields the rule plan inside C5, and an empty plan simply reaches
// the generator with nothing to report.
func (s *SLM) Decide(ctx context.Context, snap *models.Snapshot) *models.DecisionResponse {
	start := time.Now()
	resp := models.NewDecisionResponse()
	resp.Telemetry.Route = models.RouteSLM

	stageStart := time.Now()
	ext := s.extractor.Extract(ctx, snap)
	resp.Telemetry.StageMS.Extractor = time.Since(stageStart).Milliseconds()
	resp.Telemetry.Intent = ext.Intent
	resp.Telemetry.Confidence = ext.Confidence

	slots := mergedSlots(snap.State.Slots, ext.Slots)

	m, err := s.shared.manifests.Lookup(ctx, snap.WorkspaceID)
	if err != nil {
		slog.Error("Manifest lookup failed, continuing with empty manifest",
			"workspace_id", snap.WorkspaceID, "error", err)
		m = manifest.Manifest{WorkspaceID: snap.WorkspaceID}
	}

	stageStart = time.Now()
	pl := s.planner.Plan(ctx, ext, slots, m)
	resp.Telemetry.StageMS.Planner = time.Since(stageStart).Milliseconds()

	s.shared.finish(ctx, snap, ext, pl, slots, m, resp)

	resp.Telemetry.TotalMS = time.Since(start).Milliseconds()
	resp.Telemetry.BudgetExceeded = time.Since(start) > s.shared.totalBudget
	return resp
}

// finish runs policy, broker, reducer and generator, filling the response.
func (sh *shared) finish(ctx context.Context, snap *models.Snapshot, ext models.Extraction, pl models.Plan, slots map[string]string, m manifest.Manifest, resp *models.DecisionResponse) {
	stageStart := time.Now()
	approved, advisories := sh.engine.Apply(snap.WorkspaceID, snap.ConversationID, pl, slots, m)
	resp.Telemetry.StageMS.Policy = time.Since(stageStart).Milliseconds()
	resp.Telemetry.Advisories = append(resp.Telemetry.Advisories, advisories...)

	stageStart = time.Now()
	executed := sh.broker.Execute(ctx, snap.WorkspaceID, approved)
	resp.Telemetry.StageMS.Broker = time.Since(stageStart).Milliseconds()
	resp.ToolCalls = executed

	stageStart = time.Now()
	resp.Patch = reduce.Reduce(snap.State.Slots, ext.Slots, executed)
	resp.Telemetry.StageMS.Reducer = time.Since(stageStart).Milliseconds()

	stageStart = time.Now()
	resp.Assistant = nlg.Generate(nlg.Input{
		Intent:       ext.Intent,
		BusinessName: snap.Context.BusinessName,
		MissingSlots: pl.MissingSlots,
		Executed:     executed,
	})
	resp.Telemetry.StageMS.NLG = time.Since(stageStart).Milliseconds()
}

// mergedSlots overlays this turn's extraction on the conversation state.
func mergedSlots(prev, extracted map[string]string) map[string]string {
	out := make(map[string]string, len(prev)+len(extracted))
	for k, v := range prev {
		out[k] = v
	}
	for k, v := range extracted {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
