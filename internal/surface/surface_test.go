package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrain"
)

func TestFlowMovesWaterDownhill(t *testing.T) {
	s := simstate.New(3, 1, 3)
	s.SetWater(1, 0, 100)
	s.Terrain.BedrockBase[2] = 50 // cell (2,0) sits above (0,0), so it takes the smaller share of the outflow
	s.MarkActive(0, 0)
	s.MarkActive(1, 0)
	s.MarkActive(2, 0)

	Flow(s)

	assert.Greater(t, s.Water(0, 0), int32(0), "water must flow toward the lower neighbour")
	assert.Less(t, s.Water(1, 0), int32(100), "the source cell must lose some water")
}

func TestTrenchedCellFlowsFaster(t *testing.T) {
	plain := simstate.New(3, 1, 11)
	plain.SetWater(1, 0, 100)
	plain.MarkActive(0, 0)
	plain.MarkActive(1, 0)
	plain.MarkActive(2, 0)
	Flow(plain)

	trenched := simstate.New(3, 1, 11)
	trenched.SetWater(1, 0, 100)
	trenched.TrenchGrid[1] = 1
	trenched.MarkActive(0, 0)
	trenched.MarkActive(1, 0)
	trenched.MarkActive(2, 0)
	Flow(trenched)

	plainRemaining := plain.Water(1, 0)
	trenchedRemaining := trenched.Water(1, 0)
	require.LessOrEqual(t, trenchedRemaining, plainRemaining, "a trenched source cell must not retain more water than an untrenched one")
}

func TestSeepToTopsoilCapsAtRemainingCapacity(t *testing.T) {
	s := simstate.New(2, 2, 5)
	s.Terrain.AddLayerDepth(terrain.Topsoil, 0, 0, 1) // very little capacity
	s.SetWater(0, 0, 1000)
	s.MarkActive(0, 0)

	seepToTopsoil(s)

	assert.LessOrEqual(t, s.SubWater(terrain.Topsoil, 0, 0), s.MaxStorage(terrain.Topsoil, 0, 0), "topsoil stock must never exceed its max storage")
}
