package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"terraform-engine/internal/orchestrator"
	"terraform-engine/internal/simstate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin allow-listing happens at the chi/cors layer in front of
		// this handler; the upgrade itself accepts any origin that got
		// past CORS.
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades HTTP connections into delta-stream clients.
type Handler struct {
	hub    *Hub
	runner *orchestrator.Runner
}

// NewHandler wires a Handler over hub and runner.
func NewHandler(hub *Hub, runner *orchestrator.Runner) *Handler {
	return &Handler{hub: hub, runner: runner}
}

// ServeHTTP upgrades the request, sends the new client an initial
// snapshot, and starts its read/write pumps.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("delta stream upgrade failed")
		return
	}

	client := NewClient(h.hub, conn)
	h.hub.Register(client)

	var snapshot SnapshotPayload
	h.runner.Snapshot(func(s *simstate.State) {
		snapshot = h.hub.Snapshot(s)
	})
	client.sendMessage(MessageTypeSnapshot, snapshot)

	go client.WritePump()
	go client.ReadPump()

	log.Info().Str("client", client.ID.String()).Msg("delta stream client connected")
}
