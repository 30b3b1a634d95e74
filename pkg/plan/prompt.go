package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
)

const plannerSystemPrompt = `Sos el planificador de herramientas de un asistente de reservas.
Dada una intención, los slots conocidos y el catálogo de herramientas, devolvés SOLO un objeto JSON:
{"tool_calls": [{"tool": "<nombre>", "args": {...}}], "missing_slots": [...]}

Reglas:
- Máximo 3 llamadas, en orden de ejecución.
- Usá únicamente herramientas del catálogo y argumentos de su forma declarada.
- NO inventes valores de argumentos: si un dato falta, no incluyas la llamada.
- Nunca escribas texto libre ni explicaciones: solo el objeto JSON.`

// Worked examples for the servicios vertical.
var plannerFewshots = []string{
	`Intención: info_hours | Slots: {}
Salida: {"tool_calls":[{"tool":"get_business_hours","args":{}}],"missing_slots":[]}`,
	`Intención: info_prices | Slots: {"service_type":"corte"}
Salida: {"tool_calls":[{"tool":"get_service_packages","args":{"service_type":"corte"}}],"missing_slots":[]}`,
	`Intención: book | Slots: {"service_type":"corte","preferred_date":"2026-08-25","preferred_time":"15:00","client_name":"Ana","client_email":"ana@mail.com"}
Salida: {"tool_calls":[{"tool":"check_service_availability","args":{"service_type":"corte","date":"2026-08-25","time":"15:00"}},{"tool":"book_appointment","args":{"service_type":"corte","date":"2026-08-25","time":"15:00","client_name":"Ana","client_email":"ana@mail.com"}}],"missing_slots":[]}`,
	`Intención: book | Slots: {"preferred_date":"2026-08-25","preferred_time":"15:00"}
Salida: {"tool_calls":[{"tool":"check_service_availability","args":{"date":"2026-08-25","time":"15:00"}}],"missing_slots":["service_type","client_name","client_email"]}`,
	`Intención: cancel | Slots: {"booking_id":"BK-1021"}
Salida: {"tool_calls":[{"tool":"cancel_appointment","args":{"booking_id":"BK-1021"}}],"missing_slots":[]}`,
	`Intención: other | Slots: {}
Salida: {"tool_calls":[],"missing_slots":[]}`,
}

// buildPlannerPrompt renders the per-request planner input: intent, known
// slots, the workspace's tool catalog (names + argument shapes), and the
// few-shot bank.
func buildPlannerPrompt(ext models.Extraction, slots map[string]string, m manifest.Manifest) string {
	var b strings.Builder

	b.WriteString("Catálogo de herramientas:\n")
	for _, entry := range m.Entries {
		fmt.Fprintf(&b, "- %s(%s)\n", entry.Name, argSignature(entry))
	}

	b.WriteString("\nEjemplos:\n")
	for _, ex := range plannerFewshots {
		b.WriteString(ex)
		b.WriteString("\n")
	}

	known, _ := json.Marshal(slots)
	fmt.Fprintf(&b, "\nIntención: %s | Slots: %s\nSalida:", ext.Intent, known)
	return b.String()
}

func argSignature(entry manifest.Entry) string {
	parts := make([]string, 0, len(entry.Args))
	for _, a := range entry.Args {
		sig := fmt.Sprintf("%s: %s", a.Name, a.Type)
		if a.Required {
			sig += "!"
		}
		parts = append(parts, sig)
	}
	return strings.Join(parts, ", ")
}
