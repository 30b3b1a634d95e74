// Package models defines the value types passed between pipeline stages:
// conversation snapshots, extractor/planner outputs, tool observations,
// slot patches, and the decision response returned to the workflow engine.
package models

import "time"

// MaxPlanLength bounds every plan: no request executes more than 3 tool calls.
const MaxPlanLength = 3

// MaxObservationHistory bounds state.last_k_observations carried in a snapshot.
const MaxObservationHistory = 8

// Snapshot is the immutable per-request input to the pipeline.
type Snapshot struct {
	WorkspaceID    string
	ConversationID string
	RequestID      string
	UserMessage    UserMessage
	Context        MessageContext
	State          ConversationState
}

// UserMessage is the inbound utterance with transport metadata.
type UserMessage struct {
	Text      string
	MessageID string
	From      string
	To        string
	Locale    string
	Timestamp time.Time
}

// MessageContext carries channel and tenant presentation data.
type MessageContext struct {
	Platform     string
	Channel      string
	Vertical     string
	BusinessName string
}

// ConversationState is the prior conversation state supplied by the caller.
type ConversationState struct {
	FSMState         string
	Slots            map[string]string
	LastObservations []Observation
}

// Slot returns a slot value from state, with presence flag.
func (s ConversationState) Slot(name string) (string, bool) {
	v, ok := s.Slots[name]
	return v, ok
}
