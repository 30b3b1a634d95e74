// Package nlg renders the assistant reply from structured pipeline output.
// The default path is template-only: no model call stands between a tool
// observation and the text the user reads, so the reply can never invent
// data the tools did not return.
package nlg

import (
	"fmt"
	"unicode/utf8"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// Input is everything the generator may draw on for one turn.
type Input struct {
	Intent       models.Intent
	BusinessName string
	MissingSlots []string
	Executed     []models.ExecutedCall
}

// fallbackText is the degraded reply: polite, and promising nothing.
const fallbackText = "Uy, estamos teniendo un problema técnico y no pude completar tu consulta. ¿Probamos de nuevo en unos minutos?"

// Generate decides the reply. Precedence: targeted question for a missing
// slot, then a result template over the last successful observation, then
// the degraded fallback when every tool failed, then the intent's static
// template. The text is always non-empty and capped at 600 characters.
func Generate(in Input) models.AssistantMessage {
	msg := models.AssistantMessage{SuggestedReplies: []string{}}

	if question, suggestions, ok := nextQuestion(in.MissingSlots); ok {
		msg.Text = question
		msg.SuggestedReplies = append(msg.SuggestedReplies, suggestions...)
		return bound(msg)
	}

	if len(in.Executed) > 0 {
		if text, suggestions, ok := renderObservations(in); ok {
			msg.Text = text
			msg.SuggestedReplies = append(msg.SuggestedReplies, suggestions...)
			return bound(msg)
		}
		// Tools ran and none succeeded usefully.
		msg.Text = fallbackText
		return bound(msg)
	}

	text, suggestions := staticReply(in)
	msg.Text = text
	msg.SuggestedReplies = append(msg.SuggestedReplies, suggestions...)
	return bound(msg)
}

// renderObservations walks the executed calls from last to first and renders
// the first one that succeeded with usable data.
func renderObservations(in Input) (string, []string, bool) {
	for i := len(in.Executed) - 1; i >= 0; i-- {
		call := in.Executed[i]
		if !call.Observation.OK {
			continue
		}

		var text string
		var suggestions []string
		switch call.Tool {
		case "get_business_hours":
			text = formatHours(call.Observation)
		case "get_service_packages":
			text = formatServices(call.Observation)
			suggestions = []string{"Quiero reservar", "¿Qué horarios tienen?"}
		case "check_service_availability":
			text = formatAvailability(call.Observation)
		case "book_appointment", "reschedule_appointment":
			text = formatBooking(call.Observation)
		case "cancel_appointment":
			text = formatCancellation(call.Observation)
		}
		if text != "" {
			return text, suggestions, true
		}
	}
	return "", nil, false
}

// staticReply covers turns that need no tools.
func staticReply(in Input) (string, []string) {
	switch in.Intent {
	case models.IntentGreeting:
		name := in.BusinessName
		if name == "" {
			return "¡Hola! ¿En qué te puedo ayudar? Puedo contarte sobre nuestros servicios o reservarte un turno.",
				[]string{"Ver servicios", "Reservar un turno", "Horarios"}
		}
		return fmt.Sprintf("¡Hola! Soy el asistente de %s. ¿En qué te puedo ayudar?", name),
			[]string{"Ver servicios", "Reservar un turno", "Horarios"}
	case models.IntentChitchat:
		return "¡Gracias por escribirnos! ¿Querés que te cuente sobre nuestros servicios o te reservo un turno?",
			[]string{"Ver servicios", "Reservar un turno"}
	default:
		return "¿En qué te puedo ayudar? Puedo contarte sobre servicios, precios y horarios, o reservarte un turno.",
			[]string{"Ver servicios", "Horarios"}
	}
}

// bound enforces the length and suggestion bounds.
func bound(msg models.AssistantMessage) models.AssistantMessage {
	if utf8.RuneCountInString(msg.Text) > models.MaxAssistantTextLen {
		runes := []rune(msg.Text)
		msg.Text = string(runes[:models.MaxAssistantTextLen-1]) + "…"
	}
	if len(msg.SuggestedReplies) > models.MaxSuggestedReplies {
		msg.SuggestedReplies = msg.SuggestedReplies[:models.MaxSuggestedReplies]
	}
	return msg
}
