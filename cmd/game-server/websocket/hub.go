package websocket

import (
	"context"
	"sync"
	"time"

	"terraform-engine/internal/metrics"
	"terraform-engine/internal/orchestrator"
	"terraform-engine/internal/simstate"
)

// Hub fans out one per-tick grid delta to every connected renderer. It
// keeps the previous tick's water grid so it can compute a changed-cell
// list instead of re-sending the whole grid every tick.
//
// Grounded on the sibling mud-platform-backend service's Hub: the
// register/unregister channel pair and RWMutex-guarded client set are
// unchanged, the spatial-index area broadcast is dropped since there is
// only ever one broadcast group here.
type Hub struct {
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	clients map[*Client]struct{}

	prevWater []int32
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
	}
}

// Run processes register/unregister requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
			}
			h.clients = nil
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			metrics.SetActiveConnections(len(h.clients))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			metrics.SetActiveConnections(len(h.clients))
		}
	}
}

// Register enqueues c for the hub's client set.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes c from the hub's client set.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// Snapshot builds the full-grid payload a freshly connected client needs
// before it can start following the delta stream.
func (h *Hub) Snapshot(s *simstate.State) SnapshotPayload {
	water := make([]int32, len(s.WaterGrid))
	copy(water, s.WaterGrid)
	return SnapshotPayload{
		Tick:      s.Tick,
		Width:     s.Width,
		Height:    s.Height,
		WaterGrid: water,
		Weather:   s.Weather,
		Inventory: s.Inventory,
	}
}

// BroadcastTick is registered as an orchestrator.Runner.OnTick callback:
// it diffs s.WaterGrid against the previous tick's copy and fans the
// changed cells out to every connected client.
func (h *Hub) BroadcastTick(s *simstate.State, result orchestrator.StepResult) {
	start := time.Now()
	defer func() { metrics.RecordHubBroadcast(time.Since(start)) }()

	if h.prevWater == nil || len(h.prevWater) != len(s.WaterGrid) {
		h.prevWater = make([]int32, len(s.WaterGrid))
	}

	var changed []CellDelta
	for i, v := range s.WaterGrid {
		if v == h.prevWater[i] {
			continue
		}
		changed = append(changed, CellDelta{X: i % s.Width, Y: i / s.Width, Water: v})
		h.prevWater[i] = v
	}
	if len(changed) == 0 {
		return
	}

	payload := DeltaPayload{Tick: result.Tick, Weather: s.Weather, Changed: changed}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.sendMessage(MessageTypeDelta, payload)
	}
	metrics.RecordMessageProcessed(MessageTypeDelta)
}

// ClientCount reports the number of currently connected renderers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
