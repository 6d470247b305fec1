package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHealthChecker(staleAfter time.Duration) (*HealthChecker, *time.Time) {
	now := time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC)
	h := NewHealthChecker(staleAfter)
	h.startTime = now
	h.now = func() time.Time { return now }
	return h, &now
}

func get(t *testing.T, h *HealthChecker, path string) (int, map[string]any) {
	t.Helper()
	mux := http.NewServeMux()
	h.RegisterHealthEndpoints(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthChecker_Liveness(t *testing.T) {
	h, _ := newTestHealthChecker(time.Minute)
	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthChecker_Readiness(t *testing.T) {
	h, now := newTestHealthChecker(time.Minute)

	code, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not ready", body["status"])

	h.RecordPoll(nil)
	code, body = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	// A failed poll keeps the last success until it goes stale.
	h.RecordPoll(errors.New("boom"))
	code, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	*now = now.Add(2 * time.Minute)
	code, body = get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "stale", body["status"])
}

func TestHealthChecker_Detailed(t *testing.T) {
	h, now := newTestHealthChecker(0)
	h.RecordPoll(nil)
	*now = now.Add(90 * time.Second)
	h.RecordPoll(errors.New("rate limited"))

	code, body := get(t, h, "/healthz/detailed")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "1m30s", body["uptime"])
	assert.Equal(t, "2024-06-09T12:00:00Z", body["last_success"])
	assert.Equal(t, "rate limited", body["last_error"])
}

func TestHealthChecker_LastSuccess(t *testing.T) {
	h, now := newTestHealthChecker(time.Minute)
	assert.True(t, h.LastSuccess().IsZero())

	h.RecordPoll(nil)
	assert.True(t, now.Equal(h.LastSuccess()))
}
