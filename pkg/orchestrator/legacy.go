package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/extract"
	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
	"github.com/turnos-ai/orchestrator/pkg/plan"
)

// Legacy is the pre-model pipeline: keyword extraction and the fixed rule
// plan, then the same policy, broker, reducer and generator as the SLM
// route. It is the safety net the canary falls back to.
type Legacy struct {
	shared *shared
}

func NewLegacy(slm *SLM) *Legacy {
	return &Legacy{shared: slm.shared}
}

func (l *Legacy) Decide(ctx context.Context, snap *models.Snapshot) *models.DecisionResponse {
	start := time.Now()
	resp := models.NewDecisionResponse()
	resp.Telemetry.Route = models.RouteLegacy

	stageStart := time.Now()
	ext := extract.Heuristic(snap.UserMessage)
	resp.Telemetry.StageMS.Extractor = time.Since(stageStart).Milliseconds()
	resp.Telemetry.Intent = ext.Intent
	resp.Telemetry.Confidence = ext.Confidence

	slots := mergedSlots(snap.State.Slots, ext.Slots)

	m, err := l.shared.manifests.Lookup(ctx, snap.WorkspaceID)
	if err != nil {
		slog.Error("Manifest lookup failed, continuing with empty manifest",
			"workspace_id", snap.WorkspaceID, "error", err)
		m = manifest.Manifest{WorkspaceID: snap.WorkspaceID}
	}

	stageStart = time.Now()
	pl := plan.Deterministic(ext.Intent, slots, m)
	resp.Telemetry.StageMS.Planner = time.Since(stageStart).Milliseconds()

	l.shared.finish(ctx, snap, ext, pl, slots, m, resp)

	resp.Telemetry.TotalMS = time.Since(start).Milliseconds()
	resp.Telemetry.BudgetExceeded = time.Since(start) > l.shared.totalBudget
	return resp
}
