package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"terraform-engine/internal/auth"
	"terraform-engine/internal/eventstore"
	"terraform-engine/internal/orchestrator"
	"terraform-engine/internal/pubsub"
	"terraform-engine/internal/simerr"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrainops"
	"terraform-engine/internal/validation"
)

// gridAggregateID is the audit log's aggregate ID: this engine runs
// exactly one grid per process, so every logged command shares it.
const gridAggregateID = "main"

// CommandHandler dispatches terrain-mutating HTTP commands against a
// running orchestrator.Runner: it validates the payload, applies the
// command under the runner's write lock and, once the command succeeds,
// records it in the audit log and publishes it on the broadcast adapter.
// CollectWater is neither audited nor published.
//
// Grounded on the sibling tw-backend game-server's api.WorldHandler/
// EntryHandler shape - a thin struct over one service dependency, one
// exported method per route - generalized from a single dependency to
// the handful a terrain command needs (runner, validator, rate limiter,
// audit log, broadcast adapter).
type CommandHandler struct {
	runner    *orchestrator.Runner
	validator *validation.Validator
	limiter   *auth.RateLimiter
	events    eventstore.EventStore
	broadcast *pubsub.RedisAdapter
	nats      *nats.Conn
}

// NewCommandHandler wires a CommandHandler. events, broadcast, and nc may
// be nil - a nil events store skips auditing, a nil broadcast adapter
// leaves the command effective only on this instance, a nil nc skips
// structure-event publication - so a dev run without Postgres/Redis/NATS
// configured still accepts commands.
func NewCommandHandler(runner *orchestrator.Runner, limiter *auth.RateLimiter, events eventstore.EventStore, broadcast *pubsub.RedisAdapter, nc *nats.Conn) *CommandHandler {
	return &CommandHandler{
		runner:    runner,
		validator: validation.New(),
		limiter:   limiter,
		events:    events,
		broadcast: broadcast,
		nats:      nc,
	}
}

// publishStructureEvent emits a fire-and-forget "structure.event" message
// for other services (e.g. an achievements tracker) subscribed over
// NATS; a nil connection or marshal failure is silently skipped, matching
// the audit/broadcast helpers' dev-without-infra tolerance.
func (h *CommandHandler) publishStructureEvent(kind string, payload any) {
	if h.nats == nil {
		return
	}
	data, err := json.Marshal(map[string]any{"kind": kind, "payload": payload})
	if err != nil {
		return
	}
	if err := h.nats.Publish("structure.event", data); err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("failed to publish structure event")
	}
}

type coordRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type trenchRequest struct {
	PX   int    `json:"px"`
	PY   int    `json:"py"`
	TX   int    `json:"tx"`
	TY   int    `json:"ty"`
	Mode string `json:"mode"`
}

type pourRequest struct {
	X     int   `json:"x"`
	Y     int   `json:"y"`
	Units int32 `json:"units"`
}

type buildRequest struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"`
}

// checkRateLimit returns false and has already written a 429 response if
// the session has exhausted its command budget. A nil limiter (no Redis
// configured) always allows.
func (h *CommandHandler) checkRateLimit(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	sessionID, err := uuid.Parse(sessionIDFromContext(r.Context()))
	if err != nil {
		sessionID = uuid.Nil
	}
	allowed, err := h.limiter.AllowCommand(r.Context(), sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("rate limit check failed, allowing command")
		return true
	}
	if !allowed {
		respondError(w, http.StatusTooManyRequests, "command rate limit exceeded")
		return false
	}
	return true
}

func (h *CommandHandler) audit(ctx context.Context, eventType eventstore.EventType, payload any) {
	if h.events == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	evt := eventstore.Event{
		ID:            uuid.New().String(),
		EventType:     eventType,
		AggregateID:   gridAggregateID,
		AggregateType: eventstore.AggregateGrid,
		Timestamp:     time.Now(),
		Payload:       data,
	}
	if err := h.events.AppendEvent(ctx, evt); err != nil {
		log.Warn().Err(err).Str("event_type", string(eventType)).Msg("failed to append audit event")
	}
}

func (h *CommandHandler) publish(ctx context.Context, msgType string, data any) {
	if h.broadcast == nil {
		return
	}
	if err := h.broadcast.Publish(ctx, "grid.deltas", &pubsub.BroadcastMessage{Type: msgType, Data: data}); err != nil {
		log.Warn().Err(err).Str("type", msgType).Msg("failed to publish grid delta")
	}
}

// LowerGround handles POST /api/commands/lower_ground.
func (h *CommandHandler) LowerGround(w http.ResponseWriter, r *http.Request) {
	if !h.checkRateLimit(w, r) {
		return
	}
	var req coordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var opErr error
	h.runner.Mutate(func(s *simstate.State) {
		if err := h.validator.ValidateCoordinate(req.X, req.Y, s.Width, s.Height); err != nil {
			opErr = simerr.NewRefusal("%v", err)
			return
		}
		opErr = terrainops.LowerGround(s, req.X, req.Y)
	})
	if opErr != nil {
		simerr.RespondWithError(w, opErr)
		return
	}
	h.audit(r.Context(), eventstore.EventLowerGround, req)
	h.publish(r.Context(), "lower_ground", req)
	respondOK(w)
}

// RaiseGround handles POST /api/commands/raise_ground.
func (h *CommandHandler) RaiseGround(w http.ResponseWriter, r *http.Request) {
	if !h.checkRateLimit(w, r) {
		return
	}
	var req coordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var opErr error
	h.runner.Mutate(func(s *simstate.State) {
		if err := h.validator.ValidateCoordinate(req.X, req.Y, s.Width, s.Height); err != nil {
			opErr = simerr.NewRefusal("%v", err)
			return
		}
		opErr = terrainops.RaiseGround(s, req.X, req.Y)
	})
	if opErr != nil {
		simerr.RespondWithError(w, opErr)
		return
	}
	h.audit(r.Context(), eventstore.EventRaiseGround, req)
	h.publish(r.Context(), "raise_ground", req)
	respondOK(w)
}

// DigTrench handles POST /api/commands/dig_trench.
func (h *CommandHandler) DigTrench(w http.ResponseWriter, r *http.Request) {
	if !h.checkRateLimit(w, r) {
		return
	}
	var req trenchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	mode, err := h.validator.ValidateTrenchMode(req.Mode)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var opErr error
	h.runner.Mutate(func(s *simstate.State) {
		if verr := h.validator.ValidateCoordinate(req.PX, req.PY, s.Width, s.Height); verr != nil {
			opErr = simerr.NewRefusal("%v", verr)
			return
		}
		if verr := h.validator.ValidateCoordinate(req.TX, req.TY, s.Width, s.Height); verr != nil {
			opErr = simerr.NewRefusal("%v", verr)
			return
		}
		opErr = terrainops.DigTrench(s, req.PX, req.PY, req.TX, req.TY, mode)
	})
	if opErr != nil {
		simerr.RespondWithError(w, opErr)
		return
	}
	h.audit(r.Context(), eventstore.EventDigTrench, req)
	h.publish(r.Context(), "dig_trench", req)
	respondOK(w)
}

// CollectWater handles POST /api/commands/collect_water.
func (h *CommandHandler) CollectWater(w http.ResponseWriter, r *http.Request) {
	if !h.checkRateLimit(w, r) {
		return
	}
	var req coordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var collected int32
	var opErr error
	h.runner.Mutate(func(s *simstate.State) {
		if err := h.validator.ValidateCoordinate(req.X, req.Y, s.Width, s.Height); err != nil {
			opErr = simerr.NewRefusal("%v", err)
			return
		}
		collected, opErr = s.CollectWater(req.X, req.Y)
	})
	if opErr != nil {
		simerr.RespondWithError(w, opErr)
		return
	}
	respondJSON(w, map[string]int32{"collected": collected})
}

// PourWater handles POST /api/commands/pour_water.
func (h *CommandHandler) PourWater(w http.ResponseWriter, r *http.Request) {
	if !h.checkRateLimit(w, r) {
		return
	}
	var req pourRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validator.ValidateLitres(req.Units); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var poured int32
	var opErr error
	h.runner.Mutate(func(s *simstate.State) {
		if err := h.validator.ValidateCoordinate(req.X, req.Y, s.Width, s.Height); err != nil {
			opErr = simerr.NewRefusal("%v", err)
			return
		}
		poured, opErr = s.PourWater(req.X, req.Y, req.Units)
	})
	if opErr != nil {
		simerr.RespondWithError(w, opErr)
		return
	}
	h.audit(r.Context(), eventstore.EventPourWater, req)
	h.publish(r.Context(), "pour_water", req)
	respondJSON(w, map[string]int32{"poured": poured})
}

// BuildStructure handles POST /api/commands/build_structure.
func (h *CommandHandler) BuildStructure(w http.ResponseWriter, r *http.Request) {
	if !h.checkRateLimit(w, r) {
		return
	}
	var req buildRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, err := h.validator.ValidateStructureKind(req.Kind)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var opErr error
	h.runner.Mutate(func(s *simstate.State) {
		if verr := h.validator.ValidateCoordinate(req.X, req.Y, s.Width, s.Height); verr != nil {
			opErr = simerr.NewRefusal("%v", verr)
			return
		}
		opErr = s.BuildStructure(req.X, req.Y, kind)
	})
	if opErr != nil {
		simerr.RespondWithError(w, opErr)
		return
	}
	h.audit(r.Context(), eventstore.EventBuildStruct, req)
	h.publish(r.Context(), "build_structure", req)
	h.publishStructureEvent("built", req)
	respondOK(w)
}

// Harvest handles POST /api/commands/harvest.
func (h *CommandHandler) Harvest(w http.ResponseWriter, r *http.Request) {
	if !h.checkRateLimit(w, r) {
		return
	}
	var req coordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var harvested bool
	h.runner.Mutate(func(s *simstate.State) {
		harvested = s.Harvest(simstate.Cell{X: req.X, Y: req.Y})
	})
	if !harvested {
		respondError(w, http.StatusUnprocessableEntity, "nothing ready to harvest at that cell")
		return
	}
	h.audit(r.Context(), eventstore.EventHarvest, req)
	h.publish(r.Context(), "harvest", req)
	h.publishStructureEvent("harvested", req)
	respondOK(w)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func respondOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
