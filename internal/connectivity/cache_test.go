package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-engine/internal/terrain"
)

func flatGrid(t *testing.T, w, h int, regolith int32) *terrain.Grid {
	t.Helper()
	g := terrain.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.AddLayerDepth(terrain.Regolith, x, y, regolith)
		}
	}
	return g
}

func TestEnsureValidRebuildsOnlyWhenDirty(t *testing.T) {
	g := flatGrid(t, 3, 3, 10)
	c := New(g)

	c.EnsureValid(1)
	require.Equal(t, int64(1), c.Stats().Rebuilds, "first call always rebuilds")

	c.EnsureValid(2)
	assert.Equal(t, int64(1), c.Stats().Rebuilds, "a clean cache must not rebuild again")

	c.Invalidate()
	c.EnsureValid(3)
	assert.Equal(t, int64(2), c.Stats().Rebuilds)
}

func TestFlatGridRegolithConnectsHorizontally(t *testing.T) {
	g := flatGrid(t, 3, 3, 10)
	c := New(g)
	c.EnsureValid(1)

	assert.True(t, c.CanConnect(terrain.Regolith, terrain.Regolith, 1, 1, 1, 0))
	assert.Greater(t, c.ContactFraction(terrain.Regolith, terrain.Regolith, 1, 1, 1, 0), float32(0))
}

func TestDisconnectedCliffHasZeroContact(t *testing.T) {
	g := terrain.New(3, 3)
	// Tall column at (0,0), nothing at its neighbour (1,0): REGOLITH at
	// (0,0) sits far above anything at (1,0), so the two never overlap.
	g.AddLayerDepth(terrain.Regolith, 0, 0, 100)

	c := New(g)
	c.EnsureValid(1)

	assert.False(t, c.CanConnect(terrain.Regolith, terrain.Regolith, 0, 0, 1, 0))
	assert.Equal(t, float32(0), c.ContactFraction(terrain.Regolith, terrain.Regolith, 0, 0, 1, 0))
}

func TestOutOfBoundsNeighbourCannotConnect(t *testing.T) {
	g := flatGrid(t, 2, 2, 10)
	c := New(g)
	c.EnsureValid(1)

	assert.False(t, c.CanConnect(terrain.Regolith, terrain.Regolith, 1, 1, 1, 0))
}
