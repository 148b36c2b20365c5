package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BreakerState reports the circuit state of the SMS notifier.
type BreakerState interface {
	State() string
}

// HealthHandler answers liveness probes and reports the notifier breaker.
type HealthHandler struct {
	breaker BreakerState
}

// NewHealthHandler accepts a nil breaker when none is configured.
func NewHealthHandler(breaker BreakerState) *HealthHandler {
	return &HealthHandler{breaker: breaker}
}

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "notifier":
		h.notifier(w)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

// notifier is 503 while the breaker is open, so probes can take the
// instance out of rotation until SMS delivery recovers.
func (h *HealthHandler) notifier(w http.ResponseWriter) {
	if h.breaker == nil {
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "no breaker"})
		return
	}
	state := h.breaker.State()
	if state == "open" {
		writeJSON(w, http.StatusServiceUnavailable, MessageEnvelope{Message: state})
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: state})
}
