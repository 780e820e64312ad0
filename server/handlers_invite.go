package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/qparty/matchbot/match"
	"github.com/qparty/matchbot/telemetry"
)

// HandleGenerateInvite provisions a private match channel for the submitted
// member ids and returns a time/use-limited invite. The five provisioning
// stages run strictly sequentially; any platform failure after validation
// maps to a 500 and nothing is retried or rolled back.
func (h *Handlers) HandleGenerateInvite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req match.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := h.provisioner.Provision(r.Context(), req)
	if err != nil {
		telemetry.LoggerWithCorr(r.Context()).Error("generate-invite failed", slog.Any("err", err))
		if errors.Is(err, match.ErrGuildNotFound) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Guild not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "internal_error",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
