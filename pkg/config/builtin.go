package config

import (
	"sync"

	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
)

var (
	builtinTools     []manifest.Entry
	builtinToolsOnce sync.Once
)

// builtinCatalog returns the standard "servicios" tool set. Every workspace
// declared with the servicios vertical starts from these entries; YAML
// overlays adjust timeouts, rate limits, or disable tools per workspace.
//
// Read tools are idempotent and retried freely; write tools get a single
// conditional retry and an idempotency key (broker contract).
func builtinCatalog() []manifest.Entry {
	builtinToolsOnce.Do(initBuiltinCatalog)
	return builtinTools
}

func initBuiltinCatalog() {
	readPolicy := manifest.ToolPolicy{
		MaxRPSPerWorkspace: 5,
		RequiresWorkspace:  true,
		Idempotent:         true,
	}
	writePolicy := manifest.ToolPolicy{
		MaxRPSPerWorkspace: 2,
		RequiresWorkspace:  true,
		Write:              true,
	}

	builtinTools = []manifest.Entry{
		{
			Name: "get_business_hours",
			Args: []manifest.ArgSpec{
				{Name: "day", Type: manifest.ArgString},
			},
			Policy:    readPolicy,
			TimeoutMS: 800,
		},
		{
			Name: "get_service_packages",
			Args: []manifest.ArgSpec{
				{Name: "service_type", Type: manifest.ArgString, Slot: models.SlotServiceType},
			},
			Policy:    readPolicy,
			TimeoutMS: 800,
		},
		{
			Name: "get_staff",
			Args: []manifest.ArgSpec{
				{Name: "service_type", Type: manifest.ArgString, Slot: models.SlotServiceType},
			},
			Policy:    readPolicy,
			TimeoutMS: 800,
		},
		{
			Name: "rag_search",
			Args: []manifest.ArgSpec{
				{Name: "query", Type: manifest.ArgString, Required: true},
				{Name: "top_k", Type: manifest.ArgInteger},
			},
			Policy:    readPolicy,
			TimeoutMS: 1200,
		},
		{
			Name: "check_service_availability",
			Args: []manifest.ArgSpec{
				// Optional: availability can be checked for a whole date before
				// the client has picked a service.
				{Name: "service_type", Type: manifest.ArgString, Slot: models.SlotServiceType},
				{Name: "date", Type: manifest.ArgString, Required: true, Slot: models.SlotPreferredDate},
				{Name: "time", Type: manifest.ArgString, Slot: models.SlotPreferredTime},
				{Name: "staff_name", Type: manifest.ArgString, Slot: models.SlotStaffName},
			},
			Policy:    readPolicy,
			TimeoutMS: 1000,
		},
		{
			Name: "book_appointment",
			Args: []manifest.ArgSpec{
				{Name: "service_type", Type: manifest.ArgString, Required: true, Slot: models.SlotServiceType},
				{Name: "date", Type: manifest.ArgString, Required: true, Slot: models.SlotPreferredDate},
				{Name: "time", Type: manifest.ArgString, Required: true, Slot: models.SlotPreferredTime},
				{Name: "client_name", Type: manifest.ArgString, Required: true, Slot: models.SlotClientName},
				{Name: "client_email", Type: manifest.ArgString, Required: true, Slot: models.SlotClientEmail},
				{Name: "client_phone", Type: manifest.ArgString, Slot: models.SlotClientPhone},
			},
			Policy:    writePolicy,
			TimeoutMS: 2000,
		},
		{
			Name: "cancel_appointment",
			Args: []manifest.ArgSpec{
				{Name: "booking_id", Type: manifest.ArgString, Required: true, Slot: models.SlotBookingID},
			},
			Policy:    writePolicy,
			TimeoutMS: 2000,
		},
		{
			Name: "reschedule_appointment",
			Args: []manifest.ArgSpec{
				{Name: "booking_id", Type: manifest.ArgString, Required: true, Slot: models.SlotBookingID},
				{Name: "date", Type: manifest.ArgString, Required: true, Slot: models.SlotPreferredDate},
				{Name: "time", Type: manifest.ArgString, Required: true, Slot: models.SlotPreferredTime},
			},
			Policy:    writePolicy,
			TimeoutMS: 2000,
		},
	}
}
