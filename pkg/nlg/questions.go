package nlg

import "github.com/turnos-ai/orchestrator/pkg/models"

// slotQuestions maps each missing slot to its targeted question. One slot is
// asked per turn; slotAskOrder decides which when several are missing.
var slotQuestions = map[string]string{
	models.SlotServiceType:   "¿Qué servicio te gustaría reservar?",
	models.SlotPreferredDate: "¿Para qué día lo querés?",
	models.SlotPreferredTime: "¿A qué hora te queda bien?",
	models.SlotClientName:    "¿A nombre de quién hago la reserva?",
	models.SlotClientEmail:   "¿Me pasás un email para enviarte la confirmación?",
	models.SlotClientPhone:   "¿Me dejás un teléfono de contacto?",
	models.SlotStaffName:     "¿Con quién preferís atenderte?",
	models.SlotBookingID:     "¿Me pasás el código de tu reserva? Lo encontrás en el mensaje de confirmación.",
}

// slotAskOrder fixes the questioning sequence for a booking conversation.
// Contact details come before service_type: with a date in hand the
// availability check already runs, so the reservation only blocks on who to
// book for.
var slotAskOrder = []string{
	models.SlotBookingID,
	models.SlotPreferredDate,
	models.SlotPreferredTime,
	models.SlotClientName,
	models.SlotClientEmail,
	models.SlotServiceType,
	models.SlotClientPhone,
	models.SlotStaffName,
}

// slotSuggestions offers quick replies for slots with a small answer space.
var slotSuggestions = map[string][]string{
	models.SlotPreferredDate: {"Hoy", "Mañana", "El sábado"},
	models.SlotPreferredTime: {"A la mañana", "A la tarde"},
}

// nextQuestion picks the single slot to ask about this turn.
func nextQuestion(missing []string) (string, []string, bool) {
	present := make(map[string]bool, len(missing))
	for _, s := range missing {
		present[s] = true
	}
	for _, slot := range slotAskOrder {
		if present[slot] {
			return slotQuestions[slot], slotSuggestions[slot], true
		}
	}
	// Unknown slot names still get a generic nudge rather than silence.
	if len(missing) > 0 {
		return "¿Me das un poco más de detalle para avanzar con tu consulta?", nil, true
	}
	return "", nil, false
}
