package orchestrator

import (
	"context"
	"hash/fnv"
	"log/slog"
	"runtime/debug"

	"github.com/turnos-ai/orchestrator/pkg/config"
	"github.com/turnos-ai/orchestrator/pkg/metrics"
	"github.com/turnos-ai/orchestrator/pkg/models"
)

// Router is the canary gate in front of the two pipelines. Flags are read
// per request so the kill-switch and percentage take effect without a
// restart, and routing is sticky per conversation: the same conversation_id
// always lands in the same bucket.
type Router struct {
	slm     *SLM
	legacy  *Legacy
	metrics *metrics.Metrics
}

func NewRouter(slm *SLM, legacy *Legacy, m *metrics.Metrics) *Router {
	return &Router{slm: slm, legacy: legacy, metrics: m}
}

// Decide routes one request. A panic anywhere inside the SLM pipeline is
// recovered and the request re-runs on the legacy route with
// telemetry.fallback set; the legacy route itself is not recovered, a crash
// there is a bug worth a 500.
func (r *Router) Decide(ctx context.Context, snap *models.Snapshot) *models.DecisionResponse {
	flags := config.Flags()

	var resp *models.DecisionResponse
	if flags.EnableSLM && bucket(snap.ConversationID) < flags.Percent {
		resp = r.decideSLM(ctx, snap)
	} else {
		resp = r.legacy.Decide(ctx, snap)
	}

	if r.metrics != nil {
		r.metrics.ObserveDecision(resp)
	}
	return resp
}

func (r *Router) decideSLM(ctx context.Context, snap *models.Snapshot) (resp *models.DecisionResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("SLM pipeline panicked, falling back to legacy",
				"workspace_id", snap.WorkspaceID,
				"conversation_id", snap.ConversationID,
				"panic", rec,
				"stack", string(debug.Stack()))
			resp = r.legacy.Decide(ctx, snap)
			resp.Telemetry.Fallback = true
		}
	}()
	return r.slm.Decide(ctx, snap)
}

// bucket maps a conversation to [0, 100).
func bucket(conversationID string) int {
	h := fnv.New64a()
	h.Write([]byte(conversationID))
	return int(h.Sum64() % 100)
}
