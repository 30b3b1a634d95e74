package nlg

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

func okCall(tool string, result map[string]any) models.ExecutedCall {
	return models.ExecutedCall{
		Tool:        tool,
		Args:        map[string]any{},
		Observation: models.Observation{Tool: tool, OK: true, Result: result},
	}
}

func failedCall(tool string, kind models.ErrorKind) models.ExecutedCall {
	return models.ExecutedCall{
		Tool:        tool,
		Args:        map[string]any{},
		Observation: models.Observation{Tool: tool, OK: false, ErrorKind: kind, Result: map[string]any{}},
	}
}

func TestGenerate_MissingSlotAsksOneQuestion(t *testing.T) {
	msg := Generate(Input{
		Intent:       models.IntentBook,
		MissingSlots: []string{models.SlotClientName, models.SlotPreferredDate, models.SlotServiceType},
	})

	assert.Equal(t, slotQuestions[models.SlotPreferredDate], msg.Text,
		"the date is asked first regardless of list order")
	assert.LessOrEqual(t, strings.Count(msg.Text, "?"), 1)
}

func TestGenerate_ContactAskedBeforeService(t *testing.T) {
	msg := Generate(Input{
		Intent:       models.IntentBook,
		MissingSlots: []string{models.SlotServiceType, models.SlotClientEmail, models.SlotClientName},
	})

	assert.Equal(t, slotQuestions[models.SlotClientName], msg.Text,
		"contact details outrank the service choice once a date is known")
}

func TestGenerate_DateQuestionCarriesSuggestions(t *testing.T) {
	msg := Generate(Input{
		Intent:       models.IntentBook,
		MissingSlots: []string{models.SlotPreferredDate},
	})

	assert.Equal(t, slotQuestions[models.SlotPreferredDate], msg.Text)
	assert.Contains(t, msg.SuggestedReplies, "Mañana")
}

func TestGenerate_HoursReply(t *testing.T) {
	msg := Generate(Input{
		Intent: models.IntentInfoHours,
		Executed: []models.ExecutedCall{okCall("get_business_hours", map[string]any{
			"hours": []any{
				map[string]any{"day": "lunes", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "martes", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "miércoles", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "jueves", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "viernes", "open": "09:00", "close": "20:00"},
			},
		})},
	})

	assert.Contains(t, msg.Text, "Lunes de 09:00 a 19:00")
	assert.NotContains(t, msg.Text, "viernes", "hours are capped at four days")
}

func TestGenerate_PricesCappedAtThree(t *testing.T) {
	msg := Generate(Input{
		Intent: models.IntentInfoPrices,
		Executed: []models.ExecutedCall{okCall("get_service_packages", map[string]any{
			"services": []any{
				map[string]any{"name": "corte", "price": float64(8500), "duration_min": float64(45)},
				map[string]any{"name": "color", "price": float64(22000), "duration_min": float64(120)},
				map[string]any{"name": "brushing", "price": float64(6000), "duration_min": float64(30)},
				map[string]any{"name": "peinado", "price": float64(7000), "duration_min": float64(40)},
			},
		})},
	})

	assert.Contains(t, msg.Text, "Corte $8500 (45 min)")
	assert.NotContains(t, msg.Text, "peinado")
}

func TestGenerate_BookingConfirmation(t *testing.T) {
	msg := Generate(Input{
		Intent: models.IntentBook,
		Executed: []models.ExecutedCall{
			okCall("check_service_availability", map[string]any{"available": true, "slots": []any{"15:00"}}),
			okCall("book_appointment", map[string]any{
				"booking_id": "BK-42", "date": "2026-08-25", "time": "15:00",
			}),
		},
	})

	assert.Contains(t, msg.Text, "BK-42")
	assert.Contains(t, msg.Text, "2026-08-25")
	assert.Contains(t, msg.Text, "15:00")
}

func TestGenerate_AvailabilityOnlyListsSlots(t *testing.T) {
	msg := Generate(Input{
		Intent: models.IntentBook,
		Executed: []models.ExecutedCall{okCall("check_service_availability", map[string]any{
			"available": true,
			"date":      "2026-08-25",
			"slots":     []any{"10:00", "11:30", "15:00"},
		})},
	})

	assert.Contains(t, msg.Text, "10:00")
	assert.Contains(t, msg.Text, "2026-08-25")
}

func TestGenerate_TotalFailureIsPolite(t *testing.T) {
	msg := Generate(Input{
		Intent: models.IntentBook,
		Executed: []models.ExecutedCall{
			failedCall("check_service_availability", models.ErrorKindCircuitOpen),
			failedCall("book_appointment", models.ErrorKindTransient),
		},
	})

	assert.Equal(t, fallbackText, msg.Text)
	assert.NotContains(t, msg.Text, "confirmado", "a degraded reply must not promise outcomes")
}

func TestGenerate_GreetingUsesBusinessName(t *testing.T) {
	msg := Generate(Input{Intent: models.IntentGreeting, BusinessName: "Estudio Luna"})

	assert.Contains(t, msg.Text, "Estudio Luna")
	assert.NotEmpty(t, msg.SuggestedReplies)
	assert.LessOrEqual(t, len(msg.SuggestedReplies), models.MaxSuggestedReplies)
}

func TestGenerate_NeverEmptyAndCapped(t *testing.T) {
	inputs := []Input{
		{},
		{Intent: models.IntentOther},
		{Intent: models.IntentBook, Executed: []models.ExecutedCall{failedCall("book_appointment", models.ErrorKindTimeout)}},
		{Intent: models.IntentBook, MissingSlots: []string{"something_unmapped"}},
	}

	for _, in := range inputs {
		msg := Generate(in)
		assert.NotEmpty(t, msg.Text)
		assert.LessOrEqual(t, utf8.RuneCountInString(msg.Text), models.MaxAssistantTextLen)
		assert.NotNil(t, msg.SuggestedReplies)
	}
}

func TestGenerate_CancellationReply(t *testing.T) {
	msg := Generate(Input{
		Intent:   models.IntentCancel,
		Executed: []models.ExecutedCall{okCall("cancel_appointment", map[string]any{"booking_id": "BK-42", "status": "cancelled"})},
	})

	assert.Contains(t, msg.Text, "cancelada")
	assert.Contains(t, msg.Text, "BK-42")
}
