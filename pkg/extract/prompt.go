package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

const extractorSystemPrompt = `Sos el clasificador de intenciones de un asistente de reservas por WhatsApp.
Leés UN mensaje del cliente y devolvés SOLO un objeto JSON con esta forma:
{"intent": "<una de la lista>", "confidence": <0..1>, "slots": {<solo slots presentes>}}

Intenciones permitidas: greeting, info_services, info_prices, info_hours, book, cancel, reschedule, chitchat, other.
Slots permitidos: service_type, preferred_date, preferred_time, client_name, client_email, client_phone, staff_name, booking_id.
Reglas:
- Incluí un slot SOLO si el mensaje lo menciona. Nunca uses null ni string vacío.
- No vuelvas a pedir datos que ya están en "slots conocidos".
- Copiá fechas y horas tal como las dice el cliente ("mañana", "15hs"); no las conviertas.
- Sin prosa, sin markdown: únicamente el objeto JSON.`

// fewshot is one worked example embedded in the user prompt.
type fewshot struct {
	text string
	out  string
}

// Few-shot bank, several per intent. Kept in Rioplatense register to match
// real traffic in the servicios vertical.
var fewshots = []fewshot{
	{"hola!", `{"intent":"greeting","confidence":0.98,"slots":{}}`},
	{"buenas tardes", `{"intent":"greeting","confidence":0.97,"slots":{}}`},
	{"buen día, cómo andan?", `{"intent":"greeting","confidence":0.95,"slots":{}}`},

	{"qué servicios tienen?", `{"intent":"info_services","confidence":0.96,"slots":{}}`},
	{"hacen coloración?", `{"intent":"info_services","confidence":0.9,"slots":{"service_type":"coloración"}}`},
	{"ofrecen tratamientos de keratina", `{"intent":"info_services","confidence":0.92,"slots":{"service_type":"keratina"}}`},

	{"cuánto cuesta un corte?", `{"intent":"info_prices","confidence":0.96,"slots":{"service_type":"corte"}}`},
	{"precio de la tintura", `{"intent":"info_prices","confidence":0.95,"slots":{"service_type":"tintura"}}`},
	{"cuánto sale?", `{"intent":"info_prices","confidence":0.85,"slots":{}}`},

	{"a qué hora abren los sábados?", `{"intent":"info_hours","confidence":0.96,"slots":{}}`},
	{"qué horario tienen?", `{"intent":"info_hours","confidence":0.97,"slots":{}}`},
	{"atienden los domingos?", `{"intent":"info_hours","confidence":0.93,"slots":{}}`},

	{"quiero un turno para mañana a las 15hs", `{"intent":"book","confidence":0.97,"slots":{"preferred_date":"mañana","preferred_time":"15hs"}}`},
	{"me das turno para corte el viernes?", `{"intent":"book","confidence":0.95,"slots":{"service_type":"corte","preferred_date":"viernes"}}`},
	{"reservar corte mañana 10am, soy Ana, ana@mail.com", `{"intent":"book","confidence":0.96,"slots":{"service_type":"corte","preferred_date":"mañana","preferred_time":"10am","client_name":"Ana","client_email":"ana@mail.com"}}`},
	{"quiero agendar con Caro", `{"intent":"book","confidence":0.9,"slots":{"staff_name":"Caro"}}`},

	{"quiero cancelar mi turno", `{"intent":"cancel","confidence":0.96,"slots":{}}`},
	{"cancelá la reserva BK-1021 por favor", `{"intent":"cancel","confidence":0.97,"slots":{"booking_id":"BK-1021"}}`},

	{"puedo pasar el turno para el jueves?", `{"intent":"reschedule","confidence":0.94,"slots":{"preferred_date":"jueves"}}`},
	{"necesito reprogramar para las 18", `{"intent":"reschedule","confidence":0.93,"slots":{"preferred_time":"18hs"}}`},

	{"jaja genial, gracias!", `{"intent":"chitchat","confidence":0.9,"slots":{}}`},
	{"todo bien por suerte", `{"intent":"chitchat","confidence":0.85,"slots":{}}`},

	{"me llegó mal el pedido de zapatillas", `{"intent":"other","confidence":0.8,"slots":{}}`},
}

// buildUserPrompt assembles the per-request prompt: known slots (so the
// model does not re-extract them), the few-shot bank, and the utterance.
func buildUserPrompt(snap *models.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Negocio: %s (vertical %s, idioma %s)\n",
		snap.Context.BusinessName, snap.Context.Vertical, snap.UserMessage.Locale)

	if len(snap.State.Slots) > 0 {
		// json.Marshal sorts map keys, so the prompt is stable across runs.
		known, _ := json.Marshal(snap.State.Slots)
		fmt.Fprintf(&b, "Slots conocidos: %s\n", known)
	} else {
		b.WriteString("Slots conocidos: {}\n")
	}

	b.WriteString("\nEjemplos:\n")
	for _, ex := range fewshots {
		fmt.Fprintf(&b, "Mensaje: %s\nSalida: %s\n", ex.text, ex.out)
	}

	fmt.Fprintf(&b, "\nMensaje: %s\nSalida:", snap.UserMessage.Text)
	return b.String()
}
