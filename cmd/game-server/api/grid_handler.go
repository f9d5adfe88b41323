package api

import (
	"net/http"

	"terraform-engine/internal/orchestrator"
	"terraform-engine/internal/simstate"
)

// GridHandler serves read-only views of the running grid: a summary of
// tick, size, weather and inventory without the grid payload, and the
// message queue a client can poll between ticks. The full grid snapshot
// reaches a client over the WebSocket stream, not through this handler.
//
// Grounded on the sibling tw-backend game-server's WorldHandler: a
// single-dependency struct with one handler per read-only route.
type GridHandler struct {
	runner *orchestrator.Runner
}

// NewGridHandler wires a GridHandler over runner.
func NewGridHandler(runner *orchestrator.Runner) *GridHandler {
	return &GridHandler{runner: runner}
}

type gridSummary struct {
	Tick    int64             `json:"tick"`
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Weather simstate.Weather  `json:"weather"`
	Inventory simstate.Inventory `json:"inventory"`
}

// GetSummary handles GET /api/grid/summary: the cheap, frequently-polled
// view of tick/weather/inventory without the full grid payload.
func (h *GridHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var out gridSummary
	h.runner.Snapshot(func(s *simstate.State) {
		out = gridSummary{
			Tick:      s.Tick,
			Width:     s.Width,
			Height:    s.Height,
			Weather:   s.Weather,
			Inventory: s.Inventory,
		}
	})
	respondJSON(w, out)
}

// GetMessages handles GET /api/grid/messages: the bounded player-facing
// message queue accumulated since the last drain.
func (h *GridHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	var out []string
	h.runner.Snapshot(func(s *simstate.State) {
		out = append(out, s.Messages...)
	})
	respondJSON(w, out)
}
