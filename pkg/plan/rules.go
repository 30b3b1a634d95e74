package plan

import (
	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
)

// intentRules maps each intent to its target tool sequence, in execution
// order. The deterministic planner (and the whole Legacy pipeline) is a walk
// over this table; the model planner falls back to it whenever its output is
// unusable.
var intentRules = map[models.Intent][]string{
	models.IntentInfoServices: {"get_service_packages"},
	models.IntentInfoPrices:   {"get_service_packages"},
	models.IntentInfoHours:    {"get_business_hours"},
	models.IntentBook:         {"check_service_availability", "book_appointment"},
	models.IntentCancel:       {"cancel_appointment"},
	models.IntentReschedule:   {"check_service_availability", "reschedule_appointment"},
	// greeting, chitchat and other need no tools.
}

// buildCall fills a call's args from slot bindings. ok is false when a
// required argument has no value (the tool is not ready to run).
// workspace-bound args are left to the policy engine.
func buildCall(entry manifest.Entry, slots map[string]string) (models.PlannedCall, []string) {
	call := models.PlannedCall{Tool: entry.Name, Args: map[string]any{}}
	var missing []string

	for _, arg := range entry.Args {
		slot := arg.Slot
		if slot == "" {
			slot = arg.Name
		}
		if v, ok := slots[slot]; ok {
			call.Args[arg.Name] = v
		} else if arg.Required {
			missing = append(missing, slot)
		}
	}
	return call, missing
}

// Deterministic walks the intent's rule sequence and returns every call
// whose required args are satisfied, plus the slots still missing for the
// rest of the sequence. A tool not in the workspace manifest is skipped
// silently; the manifest is authoritative.
func Deterministic(intent models.Intent, slots map[string]string, m manifest.Manifest) models.Plan {
	out := models.Plan{Calls: []models.PlannedCall{}, MissingSlots: []string{}}

	seen := map[string]bool{}
	for _, tool := range intentRules[intent] {
		entry, ok := m.Lookup(tool)
		if !ok {
			continue
		}
		call, missing := buildCall(entry, slots)
		if len(missing) == 0 {
			if len(out.Calls) < models.MaxPlanLength {
				out.Calls = append(out.Calls, call)
			}
			continue
		}
		for _, slot := range missing {
			if !seen[slot] {
				seen[slot] = true
				out.MissingSlots = append(out.MissingSlots, slot)
			}
		}
	}
	return out
}

// complete reports whether every tool of the intent's sequence is ready.
func complete(intent models.Intent, slots map[string]string, m manifest.Manifest) bool {
	sequence := intentRules[intent]
	for _, tool := range sequence {
		entry, ok := m.Lookup(tool)
		if !ok {
			continue
		}
		if _, missing := buildCall(entry, slots); len(missing) > 0 {
			return false
		}
	}
	return true
}
