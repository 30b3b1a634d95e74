package api

import (
	"fmt"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// maxMessageBytes caps user_message.text.
const maxMessageBytes = 4096

// decideRequest is the wire shape of POST /orchestrator/decide.
type decideRequest struct {
	UserMessage struct {
		Text         string `json:"text"`
		MessageID    string `json:"message_id"`
		From         string `json:"from"`
		To           string `json:"to"`
		Locale       string `json:"locale"`
		TimestampISO string `json:"timestamp_iso"`
	} `json:"user_message"`
	Context struct {
		Platform     string `json:"platform"`
		Channel      string `json:"channel"`
		BusinessName string `json:"business_name"`
		Vertical     string `json:"vertical"`
	} `json:"context"`
	State struct {
		FSMState         *string              `json:"fsm_state"`
		Slots            map[string]string    `json:"slots"`
		LastObservations []models.Observation `json:"last_k_observations"`
	} `json:"state"`
}

// snapshot validates the request and binds it to the pipeline input.
func (r *decideRequest) snapshot(workspaceID, channel, conversationID, requestID string) (*models.Snapshot, error) {
	if r.UserMessage.Text == "" {
		return nil, fmt.Errorf("user_message.text is required")
	}
	if len(r.UserMessage.Text) > maxMessageBytes {
		return nil, fmt.Errorf("user_message.text exceeds %d bytes", maxMessageBytes)
	}

	ts := time.Now().UTC()
	if r.UserMessage.TimestampISO != "" {
		parsed, err := time.Parse(time.RFC3339, r.UserMessage.TimestampISO)
		if err != nil {
			return nil, fmt.Errorf("user_message.timestamp_iso: %w", err)
		}
		ts = parsed
	}

	slots := r.State.Slots
	if slots == nil {
		slots = map[string]string{}
	}
	observations := r.State.LastObservations
	if len(observations) > models.MaxObservationHistory {
		observations = observations[len(observations)-models.MaxObservationHistory:]
	}
	fsmState := ""
	if r.State.FSMState != nil {
		fsmState = *r.State.FSMState
	}

	return &models.Snapshot{
		WorkspaceID:    workspaceID,
		ConversationID: conversationID,
		RequestID:      requestID,
		UserMessage: models.UserMessage{
			Text:      r.UserMessage.Text,
			MessageID: r.UserMessage.MessageID,
			From:      r.UserMessage.From,
			To:        r.UserMessage.To,
			Locale:    r.UserMessage.Locale,
			Timestamp: ts,
		},
		Context: models.MessageContext{
			Platform:     r.Context.Platform,
			Channel:      channel,
			Vertical:     r.Context.Vertical,
			BusinessName: r.Context.BusinessName,
		},
		State: models.ConversationState{
			FSMState:         fsmState,
			Slots:            slots,
			LastObservations: observations,
		},
	}, nil
}
