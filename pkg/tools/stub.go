package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

// StubCaller serves canned results for the servicios catalog without any
// backend. Used when TOOLS_BASE_URL is unset (local development) and by
// end-to-end tests. Booking ids are derived from the idempotency key so
// retried writes observe the same booking.
type StubCaller struct {
	mu       sync.Mutex
	bookings map[string]string
}

func NewStubCaller() *StubCaller {
	return &StubCaller{bookings: make(map[string]string)}
}

func (s *StubCaller) Call(_ context.Context, tool string, args map[string]any, _ time.Duration, idempotencyKey string) (map[string]any, error) {
	switch tool {
	case "get_business_hours":
		return map[string]any{
			"hours": []any{
				map[string]any{"day": "lunes", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "martes", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "miércoles", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "jueves", "open": "09:00", "close": "19:00"},
				map[string]any{"day": "viernes", "open": "09:00", "close": "20:00"},
				map[string]any{"day": "sábado", "open": "10:00", "close": "14:00"},
			},
		}, nil

	case "get_service_packages":
		return map[string]any{
			"services": []any{
				map[string]any{"name": "corte", "price": 8500, "currency": "ARS", "duration_min": 45},
				map[string]any{"name": "color", "price": 22000, "currency": "ARS", "duration_min": 120},
				map[string]any{"name": "brushing", "price": 6000, "currency": "ARS", "duration_min": 30},
			},
		}, nil

	case "get_staff":
		return map[string]any{
			"staff": []any{
				map[string]any{"name": "Luna", "role": "estilista"},
				map[string]any{"name": "Marcos", "role": "colorista"},
			},
		}, nil

	case "rag_search":
		return map[string]any{"passages": []any{}}, nil

	case "check_service_availability":
		return map[string]any{
			"available": true,
			"date":      stringArg(args, "date"),
			"slots":     []any{"10:00", "11:30", "15:00", "16:30"},
		}, nil

	case "book_appointment":
		return map[string]any{
			"booking_id": s.bookingID(idempotencyKey),
			"date":       stringArg(args, "date"),
			"time":       stringArg(args, "time"),
			"status":     "confirmed",
		}, nil

	case "cancel_appointment":
		return map[string]any{
			"booking_id": stringArg(args, "booking_id"),
			"status":     "cancelled",
		}, nil

	case "reschedule_appointment":
		return map[string]any{
			"booking_id": stringArg(args, "booking_id"),
			"date":       stringArg(args, "date"),
			"time":       stringArg(args, "time"),
			"status":     "confirmed",
		}, nil
	}

	return nil, &CallError{Kind: models.ErrorKindPermanent, Err: fmt.Errorf("stub has no handler for tool %q", tool)}
}

// bookingID maps an idempotency key to one stable booking id.
func (s *StubCaller) bookingID(idempotencyKey string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.bookings[idempotencyKey]; ok {
		return id
	}
	sum := sha256.Sum256([]byte(idempotencyKey))
	id := "BK-" + hex.EncodeToString(sum[:4])
	s.bookings[idempotencyKey] = id
	return id
}

func stringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}
