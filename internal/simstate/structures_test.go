package simstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-engine/internal/terrain"
)

func TestDepotHasNoPerTickBehaviour(t *testing.T) {
	s := New(2, 2, 1)
	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Depot}

	s.StepStructures()

	st := s.Structures[Cell{X: 0, Y: 0}]
	assert.Equal(t, Structure{Kind: Depot}, st)
}

func TestCisternDrawsWaterAndLeaksProportionalToHeat(t *testing.T) {
	s := New(2, 2, 1)
	s.SetWater(0, 0, 1000)
	s.Weather.Heat = 100
	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Cistern, Stored: 100}

	s.StepStructures()

	st := s.Structures[Cell{X: 0, Y: 0}]
	assert.Less(t, s.Water(0, 0), int32(1000), "a cistern must draw from standing water")
	assert.LessOrEqual(t, st.Stored, CisternCapacity)
	assert.Equal(t, int32(100-2+250), st.Stored, "leaks 2% of 100 at heat 100, then draws 25% of 1000")

	hot := New(2, 2, 1)
	hot.Weather.Heat = 200
	hot.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Cistern, Stored: 100}

	hot.StepStructures()

	assert.Equal(t, int32(96), hot.Structures[Cell{X: 0, Y: 0}].Stored, "doubling heat doubles the leak")
}

func TestCisternNeverExceedsCapacity(t *testing.T) {
	s := New(2, 2, 1)
	s.SetWater(0, 0, 100000)
	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Cistern}

	for i := 0; i < 1000; i++ {
		s.SetWater(0, 0, 100000)
		s.StepStructures()
	}

	st := s.Structures[Cell{X: 0, Y: 0}]
	assert.LessOrEqual(t, st.Stored, CisternCapacity)
}

func TestCondenserEmitsFromHumidAirOnly(t *testing.T) {
	s := New(2, 2, 1)
	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Condenser}
	s.Pool.Evaporate(1000)
	s.HumidityGrid[0] = 0.8

	s.StepStructures()

	assert.Greater(t, s.Water(0, 0), int32(0), "a condenser in humid air must emit water")
}

func TestCondenserDoesNothingInDryAir(t *testing.T) {
	s := New(2, 2, 1)
	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Condenser}
	s.Pool.Evaporate(1000)
	s.HumidityGrid[0] = 0.2

	s.StepStructures()

	assert.Equal(t, int32(0), s.Water(0, 0))
}

func TestPlanterGrowsAndHarvestsAutomatically(t *testing.T) {
	s := New(2, 2, 1)
	s.SetWater(0, 0, 1000)
	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Planter}

	for i := int32(0); i < PlanterGrowthTarget; i++ {
		s.SetWater(0, 0, 1000)
		s.StepStructures()
	}
	s.SetWater(0, 0, 1000)
	startBiomass := s.Inventory.Biomass
	startOrganics := s.Terrain.LayerDepth(terrain.Organics, 0, 0)

	s.StepStructures()

	st := s.Structures[Cell{X: 0, Y: 0}]
	assert.Equal(t, int32(0), st.Growth, "a completed planter resets growth after harvest")
	assert.Greater(t, s.Inventory.Biomass, startBiomass)
	assert.Greater(t, s.Terrain.LayerDepth(terrain.Organics, 0, 0), startOrganics)
}

func TestManualHarvestOnlySucceedsWhenGrowthComplete(t *testing.T) {
	s := New(2, 2, 1)
	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Planter, Growth: 10}

	ok := s.Harvest(Cell{X: 0, Y: 0})
	require.False(t, ok)

	s.Structures[Cell{X: 0, Y: 0}] = Structure{Kind: Planter, Growth: PlanterGrowthTarget}
	ok = s.Harvest(Cell{X: 0, Y: 0})
	assert.True(t, ok)
}
