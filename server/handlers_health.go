package server

import (
	"net/http"
	"time"
)

// HandleRoot serves the plain-text liveness string at /.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("QParty Match Bot API"))
}

// HandleHealthz responds to liveness probe requests by checking the gateway session.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.gateway != nil && !h.gateway.Connected() {
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleStatus reports uptime, gateway state, and the pending cleanup count.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	connected := h.gateway == nil || h.gateway.Connected()
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds":   int(time.Since(h.started).Seconds()),
		"gateway":          connected,
		"pending_cleanups": h.scheduler.Pending(),
	})
}
