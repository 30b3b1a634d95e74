package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// localeZones maps message locales to IANA zones for relative-date
// resolution. Unknown locales fall back to UTC.
var localeZones = map[string]string{
	"es-AR": "America/Argentina/Buenos_Aires",
	"es-MX": "America/Mexico_City",
	"es-CL": "America/Santiago",
	"es-CO": "America/Bogota",
	"es-UY": "America/Montevideo",
	"es-ES": "Europe/Madrid",
}

func zoneFor(locale string) *time.Location {
	if name, ok := localeZones[locale]; ok {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.UTC
}

var weekdays = map[string]time.Weekday{
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
	"domingo":   time.Sunday,
}

var (
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dmDateRe     = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})(?:[/-](\d{2,4}))?$`)
	clockRe      = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
	hourSuffixRe = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(hs|h|hrs|horas)?$`)
	ampmRe       = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
)

// normalizeSlots canonicalises slot values in place: dates to ISO-8601,
// times to 24h HH:MM, emails lowercased, phones digits-only. Values that
// cannot be normalised are dropped: a missing slot is recoverable (the
// generator asks again), a malformed one poisons downstream tool calls.
func normalizeSlots(slots map[string]string, msg models.UserMessage) map[string]string {
	if len(slots) == 0 {
		return map[string]string{}
	}
	now := msg.Timestamp.In(zoneFor(msg.Locale))
	out := make(map[string]string, len(slots))

	for name, value := range slots {
		switch name {
		case models.SlotPreferredDate:
			if iso, ok := normalizeDate(value, now); ok {
				out[name] = iso
			}
		case models.SlotPreferredTime:
			if hhmm, ok := normalizeTime(value); ok {
				out[name] = hhmm
			}
		case models.SlotClientEmail:
			email := strings.ToLower(strings.TrimSpace(value))
			if strings.Count(email, "@") == 1 {
				out[name] = email
			}
		case models.SlotClientPhone:
			digits := digitsOnly(value)
			if len(digits) >= 5 {
				out[name] = digits
			}
		default:
			trimmed := strings.TrimSpace(value)
			if trimmed != "" {
				out[name] = trimmed
			}
		}
	}
	return out
}

// normalizeDate resolves "hoy", "mañana", weekday names, d/m forms and ISO
// dates relative to now (caller already shifted to the locale zone).
func normalizeDate(value string, now time.Time) (string, bool) {
	v := foldASCII(strings.ToLower(strings.TrimSpace(value)))

	switch v {
	case "hoy":
		return now.Format("2006-01-02"), true
	case "manana":
		return now.AddDate(0, 0, 1).Format("2006-01-02"), true
	case "pasado manana":
		return now.AddDate(0, 0, 2).Format("2006-01-02"), true
	}

	if wd, ok := weekdays[strings.TrimPrefix(strings.TrimPrefix(v, "el "), "este ")]; ok {
		ahead := (int(wd) - int(now.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7 // same weekday means next week, not today
		}
		return now.AddDate(0, 0, ahead).Format("2006-01-02"), true
	}

	if isoDateRe.MatchString(v) {
		if _, err := time.Parse("2006-01-02", v); err == nil {
			return v, true
		}
		return "", false
	}

	if m := dmDateRe.FindStringSubmatch(v); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		candidate := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		if _, err := time.Parse("2006-01-02", candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

// normalizeTime resolves 24h clock forms, "15hs", "3pm" and day-part phrases
// ("3 de la tarde") to HH:MM.
func normalizeTime(value string) (string, bool) {
	v := foldASCII(strings.ToLower(strings.TrimSpace(value)))
	v = strings.TrimPrefix(v, "a las ")
	v = strings.TrimPrefix(v, "a la ")

	// Day-part phrases shift the hour before parsing the numeric part.
	shift := 0
	switch {
	case strings.HasSuffix(v, " de la tarde"), strings.HasSuffix(v, " de la noche"):
		shift = 12
		v = strings.TrimSuffix(strings.TrimSuffix(v, " de la tarde"), " de la noche")
	case strings.HasSuffix(v, " de la manana"):
		v = strings.TrimSuffix(v, " de la manana")
	}

	if m := clockRe.FindStringSubmatch(v); m != nil {
		h, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%02d:%s", applyShift(h, shift), m[2]), true
	}

	if m := ampmRe.FindStringSubmatch(v); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h > 12 {
			return "", false
		}
		if m[3] == "pm" && h != 12 {
			h += 12
		}
		if m[3] == "am" && h == 12 {
			h = 0
		}
		minutes := m[2]
		if minutes == "" {
			minutes = "00"
		}
		return fmt.Sprintf("%02d:%s", h, minutes), true
	}

	if m := hourSuffixRe.FindStringSubmatch(v); m != nil {
		h, _ := strconv.Atoi(m[1])
		if h > 23 {
			return "", false
		}
		minutes := m[2]
		if minutes == "" {
			minutes = "00"
		}
		return fmt.Sprintf("%02d:%s", applyShift(h, shift), minutes), true
	}

	return "", false
}

func applyShift(h, shift int) int {
	if shift > 0 && h < 12 {
		return h + shift
	}
	return h
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
