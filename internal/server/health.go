package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status constants for health check responses.
const (
	healthStatusOK       = "ok"
	healthStatusNotReady = "not ready"
	healthStatusStale    = "stale"
)

// HealthChecker reports the health of a polling loop. The loop is ready after
// its first successful poll and becomes stale when no poll has succeeded
// within the staleness window.
type HealthChecker struct {
	startTime   time.Time
	staleAfter  time.Duration
	lastSuccess atomic.Int64 // unix nanoseconds, 0 before the first success
	lastError   atomic.Value // string
	now         func() time.Time
}

// NewHealthChecker creates a HealthChecker that turns stale after staleAfter
// without a successful poll.
func NewHealthChecker(staleAfter time.Duration) *HealthChecker {
	h := &HealthChecker{
		startTime:  time.Now(),
		staleAfter: staleAfter,
		now:        time.Now,
	}
	h.lastError.Store("")
	return h
}

// RecordPoll records the outcome of one poll.
func (h *HealthChecker) RecordPoll(err error) {
	if err != nil {
		h.lastError.Store(err.Error())
		return
	}
	h.lastError.Store("")
	h.lastSuccess.Store(h.now().UnixNano())
}

// LastSuccess returns the time of the last successful poll, or the zero time.
func (h *HealthChecker) LastSuccess() time.Time {
	n := h.lastSuccess.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// status returns the readiness status.
func (h *HealthChecker) status() string {
	last := h.LastSuccess()
	switch {
	case last.IsZero():
		return healthStatusNotReady
	case h.staleAfter > 0 && h.now().Sub(last) > h.staleAfter:
		return healthStatusStale
	default:
		return healthStatusOK
	}
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse provides comprehensive health information.
type DetailedHealthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	LastSuccess string `json:"last_success,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// LivenessHandler returns an HTTP handler for the /healthz endpoint.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler returns an HTTP handler for the /readyz endpoint.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		status := h.status()
		code := http.StatusOK
		if status != healthStatusOK {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, HealthResponse{
			Status: status,
			Checks: map[string]string{"poll": status},
		})
	})
}

// DetailedHealthHandler returns an HTTP handler for the /healthz/detailed endpoint.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response := DetailedHealthResponse{
			Status:    h.status(),
			Uptime:    h.now().Sub(h.startTime).Truncate(time.Second).String(),
			LastError: h.lastError.Load().(string),
		}
		if last := h.LastSuccess(); !last.IsZero() {
			response.LastSuccess = last.UTC().Format(time.RFC3339)
		}

		code := http.StatusOK
		if response.Status != healthStatusOK {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
