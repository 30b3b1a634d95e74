package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnos-ai/orchestrator/pkg/manifest"
	"github.com/turnos-ai/orchestrator/pkg/models"
)

func policyManifest() manifest.Manifest {
	return manifest.Manifest{
		WorkspaceID: "ws-demo",
		Entries: []manifest.Entry{
			{Name: "get_business_hours",
				Policy: manifest.ToolPolicy{MaxRPSPerWorkspace: 2, RequiresWorkspace: true, Idempotent: true}},
			{Name: "book_appointment",
				Args: []manifest.ArgSpec{
					{Name: "service_type", Type: manifest.ArgString, Required: true, Slot: models.SlotServiceType},
					{Name: "date", Type: manifest.ArgString, Required: true, Slot: models.SlotPreferredDate},
					{Name: "client_name", Type: manifest.ArgString, Required: true, Slot: models.SlotClientName},
				},
				Policy: manifest.ToolPolicy{MaxRPSPerWorkspace: 2, RequiresWorkspace: true, Write: true}},
		},
	}
}

func TestApply_UnknownToolDropped(t *testing.T) {
	e := New()
	plan := models.Plan{Calls: []models.PlannedCall{
		{Tool: "summon_unicorn", Args: map[string]any{}},
		{Tool: "get_business_hours", Args: map[string]any{}},
	}}

	approved, advisories := e.Apply("ws-demo", "conv-1", plan, nil, policyManifest())

	require.Len(t, approved, 1)
	assert.Equal(t, "get_business_hours", approved[0].Tool)
	assert.Contains(t, advisories, "unknown_tool:summon_unicorn")
}

func TestApply_SlotInjection(t *testing.T) {
	e := New()
	plan := models.Plan{Calls: []models.PlannedCall{
		{Tool: "book_appointment", Args: map[string]any{"service_type": "corte"}},
	}}
	slots := map[string]string{
		models.SlotPreferredDate: "2026-08-25",
		models.SlotClientName:    "Ana",
	}

	approved, advisories := e.Apply("ws-demo", "conv-1", plan, slots, policyManifest())

	require.Len(t, approved, 1)
	assert.Empty(t, advisories)
	assert.Equal(t, "corte", approved[0].Args["service_type"])
	assert.Equal(t, "2026-08-25", approved[0].Args["date"])
	assert.Equal(t, "Ana", approved[0].Args["client_name"])
	assert.Equal(t, "ws-demo", approved[0].Args["workspace_id"])
}

func TestApply_MissingArgsDropsCallOnly(t *testing.T) {
	e := New()
	plan := models.Plan{Calls: []models.PlannedCall{
		{Tool: "book_appointment", Args: map[string]any{"service_type": "corte"}},
		{Tool: "get_business_hours", Args: map[string]any{}},
	}}

	approved, advisories := e.Apply("ws-demo", "conv-1", plan, nil, policyManifest())

	require.Len(t, approved, 1)
	assert.Equal(t, "get_business_hours", approved[0].Tool)
	require.Len(t, advisories, 1)
	assert.Contains(t, advisories[0], "missing_args:book_appointment")
	assert.Contains(t, advisories[0], "date")
	assert.Contains(t, advisories[0], "client_name")
}

func TestApply_RateLimited(t *testing.T) {
	e := New()
	plan := models.Plan{Calls: []models.PlannedCall{
		{Tool: "get_business_hours", Args: map[string]any{}},
	}}
	m := policyManifest()

	// Bucket capacity is 2: two calls pass, the third is limited.
	for i := 0; i < 2; i++ {
		approved, advisories := e.Apply("ws-demo", "conv-1", plan, nil, m)
		require.Len(t, approved, 1, "call %d", i)
		assert.Empty(t, advisories)
	}
	approved, advisories := e.Apply("ws-demo", "conv-1", plan, nil, m)
	assert.Empty(t, approved)
	assert.Contains(t, advisories, "rate_limited:get_business_hours")

	// Other workspaces keep their own bucket.
	approved, _ = e.Apply("ws-other", "conv-9", plan, nil, m)
	assert.Len(t, approved, 1)
}

func TestApply_WriteGetsIdempotencyKey(t *testing.T) {
	e := New()
	slots := map[string]string{
		models.SlotPreferredDate: "2026-08-25",
		models.SlotClientName:    "Ana",
	}
	plan := models.Plan{Calls: []models.PlannedCall{
		{Tool: "book_appointment", Args: map[string]any{"service_type": "corte"}},
		{Tool: "get_business_hours", Args: map[string]any{}},
	}}

	approved, _ := e.Apply("ws-demo", "conv-1", plan, slots, policyManifest())

	require.Len(t, approved, 2)
	assert.NotEmpty(t, approved[0].IdempotencyKey)
	assert.Empty(t, approved[1].IdempotencyKey, "reads carry no idempotency key")
}

func TestIdempotencyKey_StableAcrossArgOrder(t *testing.T) {
	a := IdempotencyKey("ws", "conv", "book_appointment",
		map[string]any{"date": "2026-08-25", "service_type": "corte"})
	b := IdempotencyKey("ws", "conv", "book_appointment",
		map[string]any{"service_type": "corte", "date": "2026-08-25"})
	c := IdempotencyKey("ws", "conv", "book_appointment",
		map[string]any{"service_type": "corte", "date": "2026-08-26"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestIdempotencyKey_SeparatesTenants(t *testing.T) {
	args := map[string]any{"date": "2026-08-25"}
	assert.NotEqual(t,
		IdempotencyKey("ws-a", "conv", "book_appointment", args),
		IdempotencyKey("ws-b", "conv", "book_appointment", args))
	assert.NotEqual(t,
		IdempotencyKey("ws-a", "conv-1", "book_appointment", args),
		IdempotencyKey("ws-a", "conv-2", "book_appointment", args))
}

func TestApply_DoesNotMutateInputPlan(t *testing.T) {
	e := New()
	original := map[string]any{"service_type": "corte"}
	plan := models.Plan{Calls: []models.PlannedCall{{Tool: "book_appointment", Args: original}}}
	slots := map[string]string{
		models.SlotPreferredDate: "2026-08-25",
		models.SlotClientName:    "Ana",
	}

	e.Apply("ws-demo", "conv-1", plan, slots, policyManifest())

	assert.Len(t, original, 1, "planner output args must stay untouched")
}
