// Package extract turns a user utterance plus conversation snapshot into a
// validated {intent, slots, confidence} triple. The language model does the
// classification; a deterministic keyword fallback guarantees the stage
// never fails outright.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/llm"
	"github.com/turnos-ai/orchestrator/pkg/models"
	"github.com/turnos-ai/orchestrator/pkg/schema"
)

// DefaultBudget is the extractor stage budget.
const DefaultBudget = 250 * time.Millisecond

// lowConfidenceThreshold routes model output below it to the heuristic path.
const lowConfidenceThreshold = 0.5

// Extractor is the first pipeline stage.
type Extractor struct {
	client llm.Client
	budget time.Duration
}

// New creates an extractor. budget <= 0 selects DefaultBudget.
func New(client llm.Client, budget time.Duration) *Extractor {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Extractor{client: client, budget: budget}
}

// Extract classifies the utterance. Post-condition: the result is always a
// valid extraction. On any model failure, validation failure after the
// repair retry, or low confidence, the keyword fallback is used instead.
// Extract never returns an error.
func (e *Extractor) Extract(ctx context.Context, snap *models.Snapshot) models.Extraction {
	raw, err := e.client.GenerateJSON(ctx, llm.Request{
		System:     extractorSystemPrompt,
		User:       buildUserPrompt(snap),
		SchemaName: schema.ExtractorV1,
		Timeout:    e.budget,
	})
	if err != nil {
		slog.Debug("Extractor model call failed, using heuristic fallback",
			"kind", llm.KindOf(err), "conversation_id", snap.ConversationID)
		return Heuristic(snap.UserMessage)
	}

	var out models.Extraction
	if err := json.Unmarshal(raw, &out); err != nil {
		// The client already schema-validated the payload; this only fires
		// on a contract drift between schema and struct.
		slog.Warn("Extractor payload failed decoding after validation", "error", err)
		return Heuristic(snap.UserMessage)
	}

	if out.Confidence < lowConfidenceThreshold {
		return Heuristic(snap.UserMessage)
	}

	out.Slots = normalizeSlots(out.Slots, snap.UserMessage)
	return out
}
