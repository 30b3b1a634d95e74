package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnos-ai/orchestrator/pkg/models"
)

func TestHTTPCaller_Success(t *testing.T) {
	var gotPath, gotIdem string
	var gotArgs map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotIdem = r.Header.Get("X-Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotArgs))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"booking_id":"BK-7","status":"confirmed"}`))
	}))
	defer srv.Close()

	c := NewHTTPCaller(srv.URL)
	result, err := c.Call(context.Background(), "book_appointment",
		map[string]any{"date": "2026-08-25"}, time.Second, "idem-1")

	require.NoError(t, err)
	assert.Equal(t, "/tools/book_appointment", gotPath)
	assert.Equal(t, "idem-1", gotIdem)
	assert.Equal(t, "2026-08-25", gotArgs["date"])
	assert.Equal(t, "BK-7", result["booking_id"])
}

func TestHTTPCaller_StatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   models.ErrorKind
	}{
		{http.StatusBadRequest, models.ErrorKindPermanent},
		{http.StatusNotFound, models.ErrorKindPermanent},
		{http.StatusInternalServerError, models.ErrorKindTransient},
		{http.StatusBadGateway, models.ErrorKindTransient},
	}

	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		c := NewHTTPCaller(srv.URL)

		_, err := c.Call(context.Background(), "get_business_hours", nil, time.Second, "")
		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.want, KindOf(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestHTTPCaller_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewHTTPCaller(srv.URL)
	_, err := c.Call(context.Background(), "get_business_hours", nil, 20*time.Millisecond, "")

	require.Error(t, err)
	assert.Equal(t, models.ErrorKindTimeout, KindOf(err))
}

func TestHTTPCaller_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewHTTPCaller(srv.URL)
	_, err := c.Call(context.Background(), "get_business_hours", nil, time.Second, "")

	require.Error(t, err)
	assert.Equal(t, models.ErrorKindPermanent, KindOf(err))
}

func TestStubCaller_StableBookingID(t *testing.T) {
	s := NewStubCaller()

	first, err := s.Call(context.Background(), "book_appointment",
		map[string]any{"date": "2026-08-25", "time": "15:00"}, time.Second, "idem-A")
	require.NoError(t, err)
	second, err := s.Call(context.Background(), "book_appointment",
		map[string]any{"date": "2026-08-25", "time": "15:00"}, time.Second, "idem-A")
	require.NoError(t, err)
	other, err := s.Call(context.Background(), "book_appointment",
		map[string]any{"date": "2026-08-26", "time": "11:00"}, time.Second, "idem-B")
	require.NoError(t, err)

	assert.Equal(t, first["booking_id"], second["booking_id"])
	assert.NotEqual(t, first["booking_id"], other["booking_id"])
}

func TestStubCaller_UnknownTool(t *testing.T) {
	s := NewStubCaller()
	_, err := s.Call(context.Background(), "summon_unicorn", nil, time.Second, "")
	require.Error(t, err)
	assert.Equal(t, models.ErrorKindPermanent, KindOf(err))
}
