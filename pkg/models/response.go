package models

// Route names for telemetry.route.
const (
	RouteSLM    = "slm_pipeline"
	RouteLegacy = "legacy"
)

// MaxAssistantTextLen is the hard cap on assistant.text.
const MaxAssistantTextLen = 600

// MaxSuggestedReplies bounds the quick-reply chips.
const MaxSuggestedReplies = 5

// AssistantMessage is the natural-language part of a decision.
type AssistantMessage struct {
	Text             string   `json:"text"`
	SuggestedReplies []string `json:"suggested_replies"`
}

// StageTimings records per-stage wall-clock milliseconds. Broker fan-out is
// reported as the broker stage total.
type StageTimings struct {
	Extractor int64 `json:"extractor"`
	Planner   int64 `json:"planner"`
	Policy    int64 `json:"policy"`
	Broker    int64 `json:"broker"`
	Reducer   int64 `json:"reducer"`
	NLG       int64 `json:"nlg"`
}

// Telemetry describes how the decision was produced.
type Telemetry struct {
	Route          string       `json:"route"`
	Intent         Intent       `json:"intent"`
	Confidence     float64      `json:"confidence"`
	StageMS        StageTimings `json:"stage_ms"`
	TotalMS        int64        `json:"total_ms"`
	Fallback       bool         `json:"fallback"`
	BudgetExceeded bool         `json:"budget_exceeded"`
	Advisories     []string     `json:"advisories"`
}

// DecisionResponse is the triple returned for every inbound utterance:
// reply, executed tool calls, and the state patch. The workflow engine
// depends on every field being present; constructors keep collections
// non-nil so absence is always an empty collection.
type DecisionResponse struct {
	Assistant AssistantMessage `json:"assistant"`
	ToolCalls []ExecutedCall   `json:"tool_calls"`
	Patch     SlotPatch        `json:"patch"`
	Telemetry Telemetry        `json:"telemetry"`
}

// NewDecisionResponse returns a response with every collection allocated.
func NewDecisionResponse() *DecisionResponse {
	return &DecisionResponse{
		Assistant: AssistantMessage{SuggestedReplies: []string{}},
		ToolCalls: []ExecutedCall{},
		Patch:     NewSlotPatch(),
		Telemetry: Telemetry{Advisories: []string{}},
	}
}
