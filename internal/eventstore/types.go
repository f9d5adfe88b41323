package eventstore

import (
	"encoding/json"
	"time"
)

// EventType represents the type of an event.
type EventType string

// The terrain-mutating command types the HTTP command API logs. When an
// event store is configured, each successful command of these kinds is
// appended as one of these; collect_water is not logged, and rejected
// commands (failed validation, refused by an invariant) are never logged.
const (
	EventLowerGround   EventType = "lower_ground"
	EventRaiseGround   EventType = "raise_ground"
	EventDigTrench     EventType = "dig_trench"
	EventPourWater     EventType = "pour_water"
	EventBuildStruct   EventType = "build_structure"
	EventHarvest       EventType = "harvest"
)

// AggregateType represents the type of an aggregate.
type AggregateType string

// AggregateGrid is the only aggregate type this engine logs against: one
// grid, one audit stream.
const AggregateGrid AggregateType = "grid"

// Event represents a fact that has happened in the system.
type Event struct {
	ID            string          `json:"id"`
	EventType     EventType       `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	Version       int64           `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
	Metadata      map[string]any  `json:"metadata,omitempty"`
}
