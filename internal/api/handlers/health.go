package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	// FlagStore is checked by Ready. Nil means nothing to check.
	FlagStore Pinger
}

// Live reports that the process is serving requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the flag store answers within two seconds.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if h.FlagStore != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.FlagStore.PingContext(ctx); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "flag_store": err.Error()})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
