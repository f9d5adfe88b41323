// Package eventstore implements an append-only audit log of accepted
// player terrain commands, distinct from the periodic full-state
// snapshots in internal/snapshot: a snapshot says what the grid looks
// like now, the event log says what commands produced it.
//
// # Core Types
//
//   - Event: one accepted command (dig_trench, lower_ground, raise_ground,
//     pour_water, build_structure, harvest), its target cell, and payload
//   - EventStore: interface for appending and querying events
//   - PostgresEventStore: production implementation using PostgreSQL
//
// # Usage
//
//	store := eventstore.NewPostgresEventStore(pool)
//
//	event := eventstore.Event{
//	    ID:            uuid.New().String(),
//	    EventType:     "dig_trench",
//	    AggregateID:   "main",
//	    AggregateType: "grid",
//	    Timestamp:     time.Now(),
//	    Payload:       json.RawMessage(`{"x": 12, "y": 8, "mode": "slope_down"}`),
//	}
//	store.AppendEvent(ctx, event)
//
//	events, _ := store.GetEventsByAggregate(ctx, "main", 0)
package eventstore
