package reduce

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

func TestReduce_ExtractorSlotsApplied(t *testing.T) {
	patch := Reduce(
		map[string]string{models.SlotServiceType: "corte"},
		map[string]string{
			models.SlotServiceType:   "corte",
			models.SlotPreferredDate: "2026-08-25",
		},
		nil,
	)

	assert.Equal(t, map[string]string{models.SlotPreferredDate: "2026-08-25"}, patch.Set,
		"unchanged slots stay out of the patch")
	assert.Empty(t, patch.Remove)
	assert.Empty(t, patch.CacheInvalidationKeys)
	assert.NotNil(t, patch.Remove)
	assert.NotNil(t, patch.CacheInvalidationKeys)
}

func TestReduce_EmptyExtractorValueIgnored(t *testing.T) {
	patch := Reduce(nil, map[string]string{models.SlotClientName: ""}, nil)
	assert.Empty(t, patch.Set)
}

func TestReduce_BookingSuccess(t *testing.T) {
	executed := []models.ExecutedCall{{
		Tool: "book_appointment",
		Args: map[string]any{"date": "2026-08-25", "time": "15:00"},
		Observation: models.Observation{
			Tool: "book_appointment",
			OK:   true,
			Result: map[string]any{
				"booking_id": "BK-42",
				"date":       "2026-08-25",
			},
		},
	}}

	patch := Reduce(
		map[string]string{
			models.SlotPreferredDate: "2026-08-25",
			models.SlotPreferredTime: "15:00",
		},
		map[string]string{models.SlotPreferredTime: "15:00"},
		executed,
	)

	assert.Equal(t, "BK-42", patch.Set[models.SlotBookingID])
	assert.Equal(t, []string{models.SlotPreferredDate, models.SlotPreferredTime}, patch.Remove)
	assert.Equal(t, []string{"availability:2026-08-25"}, patch.CacheInvalidationKeys)
	assert.NotContains(t, patch.Set, models.SlotPreferredTime,
		"a completed booking clears its date and time")
}

func TestReduce_FailedBookingLeavesSlots(t *testing.T) {
	executed := []models.ExecutedCall{{
		Tool: "book_appointment",
		Args: map[string]any{"date": "2026-08-25"},
		Observation: models.Observation{
			Tool:      "book_appointment",
			OK:        false,
			ErrorKind: models.ErrorKindTransient,
			Result:    map[string]any{},
		},
	}}

	patch := Reduce(nil, map[string]string{models.SlotPreferredDate: "2026-08-25"}, executed)

	assert.Equal(t, "2026-08-25", patch.Set[models.SlotPreferredDate],
		"failed writes must not advance the state")
	assert.Empty(t, patch.Remove)
	assert.Empty(t, patch.CacheInvalidationKeys)
}

func TestReduce_CancellationRemovesBookingID(t *testing.T) {
	executed := []models.ExecutedCall{{
		Tool: "cancel_appointment",
		Args: map[string]any{"booking_id": "BK-42"},
		Observation: models.Observation{
			Tool:   "cancel_appointment",
			OK:     true,
			Result: map[string]any{"booking_id": "BK-42", "status": "cancelled"},
		},
	}}

	patch := Reduce(map[string]string{models.SlotBookingID: "BK-42"}, nil, executed)

	assert.Equal(t, []string{models.SlotBookingID}, patch.Remove)
	assert.Empty(t, patch.Set)
}

func TestReduce_RescheduleBehavesLikeBooking(t *testing.T) {
	executed := []models.ExecutedCall{{
		Tool: "reschedule_appointment",
		Args: map[string]any{"date": "2026-08-26"},
		Observation: models.Observation{
			Tool:   "reschedule_appointment",
			OK:     true,
			Result: map[string]any{"booking_id": "BK-42", "date": "2026-08-26"},
		},
	}}

	patch := Reduce(nil, nil, executed)

	assert.Equal(t, "BK-42", patch.Set[models.SlotBookingID])
	assert.Contains(t, patch.CacheInvalidationKeys, "availability:2026-08-26")
}

func TestReduce_Deterministic(t *testing.T) {
	extractor := map[string]string{
		models.SlotClientName:    "Ana",
		models.SlotServiceType:   "corte",
		models.SlotPreferredDate: "2026-08-25",
	}

	first := Reduce(nil, extractor, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Reduce(nil, extractor, nil))
	}
}
