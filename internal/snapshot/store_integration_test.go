package snapshot_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"terraform-engine/internal/simstate"
	"terraform-engine/internal/snapshot"
)

// TestStore_Integration exercises Save/Load against a real Postgres
// instance, the way the teacher's repository_integration_test.go and
// cache_integration_test.go spin up a throwaway container rather than
// mocking the driver.
func TestStore_Integration(t *testing.T) {
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

	store := snapshot.NewStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	s := simstate.New(3, 2, 1)
	s.Tick = 42
	s.WaterGrid[0] = 7
	s.Pool.EdgeRunoff(100)
	doc := snapshot.ToDocument(s)

	require.NoError(t, store.Save(ctx, "grid-1", doc))

	loaded, ok, err := store.Load(ctx, "grid-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(42), loaded.Tick)
	require.Equal(t, int32(7), loaded.WaterGrid[0])

	restored := simstate.New(3, 2, 1)
	snapshot.Apply(restored, loaded)
	require.Equal(t, int64(42), restored.Tick)
	require.Equal(t, int64(100), restored.Pool.TotalVolume())

	_, ok, err = store.Load(ctx, "missing-grid")
	require.NoError(t, err)
	require.False(t, ok)
}
