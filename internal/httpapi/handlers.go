package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kubemq-io/mq-bridge/internal/observability"
	"github.com/kubemq-io/mq-bridge/internal/supervisor"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDMiddleware propagates or generates X-Request-ID, grounded on the
// teacher's chi_server requestIDMiddleware.
func requestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if strings.TrimSpace(requestID) == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)
			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type handlers struct {
	sup    *supervisor.Supervisor
	logger observability.Logger
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// health implements GET /health: the supervisor-wide aggregate of
// spec.md §4.1.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	report := h.sup.Health()
	status := http.StatusOK
	if !report.Overall {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// healthByName implements GET /health/{name}: a single binding's health.
// Unknown names return 404, per spec.md §6.
func (h *handlers) healthByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	health, ok := h.sup.BindingHealthByName(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown binding: " + name})
		return
	}
	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// metricsByName implements GET /metrics/{name}: a single binding's
// roll-up, in JSON rather than the Prometheus exposition format.
func (h *handlers) metricsByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	snapshot, ok := h.sup.BindingMetricsByName(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown binding: " + name})
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}
