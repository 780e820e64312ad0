// Package server exposes the HTTP API handlers.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/qparty/matchbot/config"
	"github.com/qparty/matchbot/match"
)

// Gateway reports the chat-platform session state; satisfied by discord.Client.
type Gateway interface {
	Connected() bool
}

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	cfg         *config.Config
	provisioner *match.Provisioner
	scheduler   *match.Scheduler
	gateway     Gateway
	started     time.Time
}

// NewHandlers creates a new Handlers instance with the given dependencies.
func NewHandlers(cfg *config.Config, provisioner *match.Provisioner, scheduler *match.Scheduler, gateway Gateway) *Handlers {
	return &Handlers{
		cfg:         cfg,
		provisioner: provisioner,
		scheduler:   scheduler,
		gateway:     gateway,
		started:     time.Now(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
