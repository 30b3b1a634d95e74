package extract

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// FallbackConfidence is the fixed confidence assigned to heuristic results.
// It sits exactly at the threshold so downstream treats fallback extractions
// as usable but never high-confidence.
const FallbackConfidence = 0.5

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldASCII strips diacritics so keyword matching survives "mañana" vs
// "manana" and "miércoles" vs "miercoles".
func foldASCII(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// Keyword tables are checked in order; the first hit wins. More specific
// intents come before generic ones so "cuanto cuesta el corte" lands on
// prices, not services.
var keywordIntents = []struct {
	intent   models.Intent
	keywords []string
}{
	{models.IntentCancel, []string{"cancelar", "cancela", "anular", "dar de baja"}},
	{models.IntentReschedule, []string{"reprogramar", "reagendar", "cambiar el turno", "cambiar la cita", "mover el turno"}},
	{models.IntentInfoPrices, []string{"precio", "cuesta", "cuanto sale", "cuanto cuesta", "tarifa", "vale"}},
	{models.IntentInfoHours, []string{"horario", "a que hora abren", "a que hora cierran", "abren", "cierran", "que dias atienden"}},
	{models.IntentBook, []string{"turno", "reservar", "reserva", "agendar", "cita", "quiero ir", "sacar hora"}},
	{models.IntentInfoServices, []string{"servicio", "que hacen", "que ofrecen", "tratamiento"}},
	{models.IntentGreeting, []string{"hola", "buenas", "buen dia", "buenos dias", "buenas tardes", "buenas noches"}},
}

var (
	fbDateRe  = regexp.MustCompile(`(?i)\b(hoy|mañana|manana|pasado\s+ma[ñn]ana|lunes|martes|mi[ée]rcoles|jueves|viernes|s[áa]bado|domingo|\d{1,2}[/-]\d{1,2}(?:[/-]\d{2,4})?|\d{4}-\d{2}-\d{2})\b`)
	fbTimeRe  = regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s*(?:hs|h|hrs|am|pm)|\d{1,2}:\d{2})\b`)
	fbEmailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// Heuristic is the deterministic fallback used when the model is
// unavailable, times out, or returns low-confidence output. Keyword dispatch
// over the closed intent set, slots best-effort via regex, confidence fixed
// at FallbackConfidence.
func Heuristic(msg models.UserMessage) models.Extraction {
	folded := foldASCII(strings.ToLower(msg.Text))

	intent := models.IntentOther
	for _, entry := range keywordIntents {
		for _, kw := range entry.keywords {
			if strings.Contains(folded, kw) {
				intent = entry.intent
				break
			}
		}
		if intent != models.IntentOther {
			break
		}
	}

	slots := map[string]string{}
	if m := fbDateRe.FindString(msg.Text); m != "" {
		slots[models.SlotPreferredDate] = m
	}
	if m := fbTimeRe.FindString(msg.Text); m != "" {
		slots[models.SlotPreferredTime] = m
	}
	if m := fbEmailRe.FindString(msg.Text); m != "" {
		slots[models.SlotClientEmail] = m
	}

	return models.Extraction{
		Intent:     intent,
		Confidence: FallbackConfidence,
		Slots:      normalizeSlots(slots, msg),
		Heuristic:  true,
	}
}
