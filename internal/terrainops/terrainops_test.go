package terrainops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrain"
)

func TestLowerGroundRemovesFromExposedLayerAndInvalidatesCache(t *testing.T) {
	s := simstate.New(3, 3, 1)
	s.Terrain.AddLayerDepth(terrain.Topsoil, 1, 1, 10)
	s.Cache.EnsureValid(0)
	rebuildsBefore := s.Cache.Stats().Rebuilds

	require.NoError(t, LowerGround(s, 1, 1))
	s.Cache.EnsureValid(1)

	assert.Equal(t, int32(10-simconfig.LowerRaiseStepUnits), s.Terrain.LayerDepth(terrain.Topsoil, 1, 1))
	assert.Greater(t, s.Cache.Stats().Rebuilds, rebuildsBefore, "LowerGround must invalidate the cache so the next EnsureValid rebuilds it")
}

func TestLowerGroundEatsIntoBedrockOnceSoilIsGone(t *testing.T) {
	s := simstate.New(3, 3, 1)
	base := s.Terrain.BedrockBase[1*3+1]

	require.NoError(t, LowerGround(s, 1, 1))

	assert.Less(t, s.Terrain.BedrockBase[1*3+1], base, "with no soil left, lowering must eat into bedrock")
}

func TestLowerGroundRefusesAtBedrockFloor(t *testing.T) {
	s := simstate.New(3, 3, 1)
	s.Terrain.BedrockBase[1*3+1] = simconfig.MinBedrockElevation

	err := LowerGround(s, 1, 1)

	assert.Error(t, err)
	assert.Equal(t, simconfig.MinBedrockElevation, s.Terrain.BedrockBase[1*3+1])
}

func TestRaiseGroundSeedsRegolithWhenBare(t *testing.T) {
	s := simstate.New(3, 3, 1)

	require.NoError(t, RaiseGround(s, 1, 1))

	assert.Equal(t, int32(simconfig.LowerRaiseStepUnits), s.Terrain.LayerDepth(terrain.Regolith, 1, 1))
	assert.NotEmpty(t, s.Terrain.Material(terrain.Regolith, 1, 1))
}

func TestLowerGroundOffGridIsBoundsViolation(t *testing.T) {
	s := simstate.New(3, 3, 1)

	err := LowerGround(s, 99, 99)

	assert.Error(t, err)
}

func TestDigTrenchFlatRedistributesMaterialDownhill(t *testing.T) {
	s := simstate.New(5, 1, 1)
	for x := 0; x < 5; x++ {
		s.Terrain.AddLayerDepth(terrain.Regolith, x, 0, 20)
	}
	s.Cache.EnsureValid(0)

	require.NoError(t, DigTrench(s, 1, 0, 2, 0, Flat))

	assert.Equal(t, uint8(1), s.TrenchGrid[2], "the target cell must be marked trenched")
	targetElev := s.Terrain.Elevation(2, 0)
	backElev := s.Terrain.Elevation(1, 0)
	assert.LessOrEqual(t, targetElev, backElev, "flat trenching lowers the target to at most the backward cell's elevation")
}

func TestDigTrenchSlopeDownOrdersElevations(t *testing.T) {
	s := simstate.New(5, 1, 2)
	for x := 0; x < 5; x++ {
		s.Terrain.AddLayerDepth(terrain.Regolith, x, 0, 40)
	}

	require.NoError(t, DigTrench(s, 1, 0, 2, 0, SlopeDown))

	backElev := s.Terrain.Elevation(1, 0)
	targetElev := s.Terrain.Elevation(2, 0)
	assert.GreaterOrEqual(t, backElev, targetElev, "slope_down must not raise the target above backward")
}

func TestDigTrenchOffGridIsBoundsViolation(t *testing.T) {
	s := simstate.New(3, 3, 1)

	err := DigTrench(s, 0, 0, 99, 99, Flat)

	assert.Error(t, err)
}
