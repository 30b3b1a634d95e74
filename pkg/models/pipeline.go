package models

// Extraction is the validated extractor output (schema extractor_v1).
type Extraction struct {
	Intent     Intent            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Slots      map[string]string `json:"slots"`
	// Heuristic is set when the keyword fallback produced this extraction
	// instead of the language model.
	Heuristic bool `json:"-"`
}

// PlannedCall is one entry of a plan before policy validation.
type PlannedCall struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Plan is the validated planner output (schema planner_v1).
// Calls is bounded by MaxPlanLength; MissingSlots names the slots still
// required to advance the intent and drives the one-question-per-turn reply.
type Plan struct {
	Calls        []PlannedCall `json:"tool_calls"`
	MissingSlots []string      `json:"missing_slots"`
}

// ErrorKind enumerates tool failure classes carried on observations.
type ErrorKind string

const (
	ErrorKindTransient    ErrorKind = "transient"
	ErrorKindPermanent    ErrorKind = "permanent"
	ErrorKindTimeout      ErrorKind = "timeout"
	ErrorKindCircuitOpen  ErrorKind = "circuit_open"
	ErrorKindPolicyDenied ErrorKind = "policy_denied"
)

// Observation is the structured outcome of one tool call. The broker
// produces exactly one per planned call, success or failure.
type Observation struct {
	Tool      string         `json:"tool"`
	OK        bool           `json:"ok"`
	Result    map[string]any `json:"result"`
	ErrorKind ErrorKind      `json:"error_kind,omitempty"`
	LatencyMS int64          `json:"latency_ms"`
	Attempts  int            `json:"attempts"`
}

// ExecutedCall pairs a planned call with its observation for the response.
type ExecutedCall struct {
	Tool        string         `json:"tool"`
	Args        map[string]any `json:"args"`
	Observation Observation    `json:"observation"`
}

// SlotPatch is the deterministic delta the caller applies to conversation
// slots. All collections are always non-nil so the wire form never omits keys.
type SlotPatch struct {
	Set                   map[string]string `json:"set"`
	Remove                []string          `json:"remove"`
	CacheInvalidationKeys []string          `json:"cache_invalidation_keys"`
}

// NewSlotPatch returns an empty patch with all collections allocated.
func NewSlotPatch() SlotPatch {
	return SlotPatch{
		Set:                   map[string]string{},
		Remove:                []string{},
		CacheInvalidationKeys: []string{},
	}
}
