package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CompilesAllSchemas(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	assert.Equal(t, []string{ExtractorV1, PlannerV1, ResponseV1}, r.Names())
	assert.True(t, r.Has(ExtractorV1))
	assert.False(t, r.Has("extractor_v2"))
}

func TestRegistry_UnknownSchema(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	err = r.Validate("nope_v1", map[string]any{})
	assert.ErrorContains(t, err, "unknown schema")
}

func TestRegistry_ExtractorValid(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	doc := map[string]any{
		"intent":     "book",
		"confidence": 0.92,
		"slots": map[string]any{
			"preferred_date": "2026-08-25",
			"preferred_time": "15:00",
		},
	}
	assert.NoError(t, r.Validate(ExtractorV1, doc))
}

func TestRegistry_ExtractorRejections(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  map[string]any
	}{
		{
			name: "unknown intent",
			doc: map[string]any{
				"intent": "order_pizza", "confidence": 0.9,
				"slots": map[string]any{},
			},
		},
		{
			name: "confidence out of range",
			doc: map[string]any{
				"intent": "book", "confidence": 1.4,
				"slots": map[string]any{},
			},
		},
		{
			name: "unknown slot",
			doc: map[string]any{
				"intent": "book", "confidence": 0.9,
				"slots": map[string]any{"favorite_color": "azul"},
			},
		},
		{
			name: "empty slot value",
			doc: map[string]any{
				"intent": "book", "confidence": 0.9,
				"slots": map[string]any{"preferred_date": ""},
			},
		},
		{
			name: "missing slots key",
			doc:  map[string]any{"intent": "book", "confidence": 0.9},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Validate(ExtractorV1, tc.doc)
			require.Error(t, err)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, ExtractorV1, ve.Schema)
			assert.NotEmpty(t, ve.Issues)
		})
	}
}

func TestRegistry_PlannerBounds(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	call := map[string]any{"tool": "get_business_hours", "args": map[string]any{}}

	ok := map[string]any{
		"tool_calls":    []any{call, call, call},
		"missing_slots": []any{"client_name"},
	}
	assert.NoError(t, r.Validate(PlannerV1, ok))

	tooLong := map[string]any{
		"tool_calls":    []any{call, call, call, call},
		"missing_slots": []any{},
	}
	assert.Error(t, r.Validate(PlannerV1, tooLong))

	freeText := map[string]any{
		"tool_calls":    []any{map[string]any{"tool": "x", "args": map[string]any{}, "note": "call this"}},
		"missing_slots": []any{},
	}
	assert.Error(t, r.Validate(PlannerV1, freeText))
}

func TestRegistry_ValidateRaw(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	assert.NoError(t, r.ValidateRaw(PlannerV1, []byte(`{"tool_calls":[],"missing_slots":[]}`)))

	err = r.ValidateRaw(PlannerV1, []byte(`{"tool_calls":`))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Issues[0].Message, "invalid JSON")
}
