package eventstore_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"terraform-engine/internal/eventstore"
)

// TestPostgresEventStore_Integration mirrors store_integration_test.go in
// the sibling snapshot package: a throwaway Postgres container instead of
// a mock driver, the same way the teacher's repository_integration_test.go
// and cache_integration_test.go exercise their own Postgres/Redis-backed
// stores.
func TestPostgresEventStore_Integration(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available for integration test: %v", err)
		return
	}
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	store := eventstore.NewPostgresEventStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	payload, err := json.Marshal(map[string]any{"x": 3, "y": 4, "depth": 2})
	require.NoError(t, err)

	evt := eventstore.Event{
		ID:            "evt-1",
		EventType:     eventstore.EventLowerGround,
		AggregateID:   "grid-1",
		AggregateType: eventstore.AggregateGrid,
		Version:       1,
		Timestamp:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Payload:       payload,
	}
	require.NoError(t, store.AppendEvent(ctx, evt))

	events, err := store.GetEventsByAggregate(ctx, "grid-1", 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, eventstore.EventLowerGround, events[0].EventType)

	byType, err := store.GetEventsByType(ctx, eventstore.EventLowerGround,
		evt.Timestamp.Add(-time.Hour), evt.Timestamp.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, byType, 1)

	all, err := store.GetAllEvents(ctx, evt.Timestamp.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
