package nlg

import (
	"fmt"
	"strings"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// Formatter caps keep replies chat-sized.
const (
	maxHourDays    = 4
	maxPriceItems  = 3
	maxSlotOptions = 4
)

// formatHours renders a get_business_hours result.
func formatHours(obs models.Observation) string {
	hours, ok := obs.Result["hours"].([]any)
	if !ok || len(hours) == 0 {
		return ""
	}

	var lines []string
	for _, h := range hours {
		day, _ := h.(map[string]any)
		name := str(day, "day")
		open := str(day, "open")
		close := str(day, "close")
		if name == "" || open == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s de %s a %s", title(name), open, close))
		if len(lines) == maxHourDays {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Nuestros horarios: " + strings.Join(lines, ", ") + "."
}

// formatServices renders a get_service_packages result with prices.
func formatServices(obs models.Observation) string {
	services, ok := obs.Result["services"].([]any)
	if !ok || len(services) == 0 {
		return ""
	}

	var lines []string
	for _, s := range services {
		svc, _ := s.(map[string]any)
		name := str(svc, "name")
		if name == "" {
			continue
		}
		line := title(name)
		if price := num(svc, "price"); price > 0 {
			line += fmt.Sprintf(" $%.0f", price)
		}
		if mins := num(svc, "duration_min"); mins > 0 {
			line += fmt.Sprintf(" (%.0f min)", mins)
		}
		lines = append(lines, line)
		if len(lines) == maxPriceItems {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Te cuento lo que ofrecemos: " + strings.Join(lines, ", ") + "."
}

// formatAvailability renders a check_service_availability result.
func formatAvailability(obs models.Observation) string {
	if avail, ok := obs.Result["available"].(bool); ok && !avail {
		date := str(obs.Result, "date")
		if date != "" {
			return fmt.Sprintf("Para el %s no nos quedan lugares. ¿Querés probar con otro día?", date)
		}
		return "No nos quedan lugares para esa fecha. ¿Querés probar con otro día?"
	}

	slots, _ := obs.Result["slots"].([]any)
	var options []string
	for _, s := range slots {
		if v, ok := s.(string); ok && v != "" {
			options = append(options, v)
		}
		if len(options) == maxSlotOptions {
			break
		}
	}
	if len(options) == 0 {
		return ""
	}
	date := str(obs.Result, "date")
	if date != "" {
		return fmt.Sprintf("Para el %s tenemos lugar a las %s. ¿Cuál te queda bien?", date, strings.Join(options, ", "))
	}
	return fmt.Sprintf("Tenemos lugar a las %s. ¿Cuál te queda bien?", strings.Join(options, ", "))
}

// formatBooking renders a confirmed booking: id, date and time.
func formatBooking(obs models.Observation) string {
	id := str(obs.Result, "booking_id")
	date := str(obs.Result, "date")
	hour := str(obs.Result, "time")
	if id == "" {
		return ""
	}
	if date != "" && hour != "" {
		return fmt.Sprintf("¡Listo! Tu turno quedó confirmado para el %s a las %s. Tu código de reserva es %s.", date, hour, id)
	}
	return fmt.Sprintf("¡Listo! Tu turno quedó confirmado. Tu código de reserva es %s.", id)
}

func formatCancellation(obs models.Observation) string {
	id := str(obs.Result, "booking_id")
	if id == "" {
		return "Tu reserva quedó cancelada. ¡Te esperamos cuando quieras!"
	}
	return fmt.Sprintf("Tu reserva %s quedó cancelada. ¡Te esperamos cuando quieras!", id)
}

func str(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
