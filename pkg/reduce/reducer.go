// Package reduce computes the slot patch for a turn. The reducer is a pure
// function of previous slots, extractor slots and tool observations, so the
// orchestrator keeps no conversation state of its own.
package reduce

import (
	"sort"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// Reduce merges the turn's evidence into a patch. Extractor slots apply
// first; observation-derived values overwrite them because tools are
// authoritative. Output keys are sorted so patches are diff-stable.
func Reduce(prevSlots, extractorSlots map[string]string, executed []models.ExecutedCall) models.SlotPatch {
	patch := models.NewSlotPatch()

	for name, value := range extractorSlots {
		if value != "" && prevSlots[name] != value {
			patch.Set[name] = value
		}
	}

	for _, call := range executed {
		if !call.Observation.OK {
			continue
		}
		switch call.Tool {
		case "book_appointment", "reschedule_appointment":
			applyBooking(&patch, call)
		case "cancel_appointment":
			applyCancellation(&patch, prevSlots)
		}
	}

	sort.Strings(patch.Remove)
	sort.Strings(patch.CacheInvalidationKeys)
	return patch
}

// applyBooking records the confirmed booking and closes the booking cycle:
// the date/time slots are cleared so the next "quiero un turno" starts
// fresh, and availability caches for the booked date go stale.
func applyBooking(patch *models.SlotPatch, call models.ExecutedCall) {
	if id := stringResult(call.Observation, "booking_id"); id != "" {
		patch.Set[models.SlotBookingID] = id
	}

	date := stringResult(call.Observation, "date")
	if date == "" {
		date = stringArg(call.Args, "date")
	}
	if date != "" {
		patch.CacheInvalidationKeys = appendUnique(patch.CacheInvalidationKeys, "availability:"+date)
	}

	for _, slot := range []string{models.SlotPreferredDate, models.SlotPreferredTime} {
		delete(patch.Set, slot)
		patch.Remove = appendUnique(patch.Remove, slot)
	}
}

func applyCancellation(patch *models.SlotPatch, prevSlots map[string]string) {
	if _, ok := prevSlots[models.SlotBookingID]; ok {
		patch.Remove = appendUnique(patch.Remove, models.SlotBookingID)
	}
	delete(patch.Set, models.SlotBookingID)
}

func stringResult(obs models.Observation, key string) string {
	if v, ok := obs.Result[key].(string); ok {
		return v
	}
	return ""
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
