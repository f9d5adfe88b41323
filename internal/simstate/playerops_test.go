package simstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simerr"
)

func TestCollectWaterCapsAtConfiguredLimit(t *testing.T) {
	s := New(2, 2, 1)
	s.SetWater(0, 0, simconfig.CollectWaterCap*2)

	got, err := s.CollectWater(0, 0)

	require.NoError(t, err)
	assert.Equal(t, simconfig.CollectWaterCap, got)
	assert.Equal(t, simconfig.CollectWaterCap, s.Inventory.Water)
	assert.Equal(t, simconfig.CollectWaterCap, s.Water(0, 0), "only the capped amount leaves the cell")
}

func TestCollectWaterFromDryCellIsNotAnError(t *testing.T) {
	s := New(2, 2, 1)

	got, err := s.CollectWater(0, 0)

	require.NoError(t, err)
	assert.Equal(t, int32(0), got)
}

func TestCollectWaterOffGridIsBoundsViolation(t *testing.T) {
	s := New(2, 2, 1)

	_, err := s.CollectWater(99, 99)

	assert.ErrorIs(t, err, simerr.ErrBoundsViolation)
}

func TestPourWaterRefusesWithEmptyInventory(t *testing.T) {
	s := New(2, 2, 1)

	got, err := s.PourWater(0, 0, 50)

	assert.Equal(t, int32(0), got)
	require.Error(t, err)
	assert.Equal(t, int32(0), s.Water(0, 0))
}

func TestPourWaterMovesFromInventoryToSurface(t *testing.T) {
	s := New(2, 2, 1)
	s.Inventory.Water = 100

	got, err := s.PourWater(0, 0, 40)

	require.NoError(t, err)
	assert.Equal(t, int32(40), got)
	assert.Equal(t, int32(60), s.Inventory.Water)
	assert.Equal(t, int32(40), s.Water(0, 0))
	assert.True(t, s.IsActive(0, 0), "pouring water eagerly marks the cell active")
}

func TestPourWaterCappedByInventoryAndConfiguredLimit(t *testing.T) {
	s := New(2, 2, 1)
	s.Inventory.Water = 10

	got, err := s.PourWater(0, 0, simconfig.PourWaterCap+500)

	require.NoError(t, err)
	assert.Equal(t, int32(10), got, "cannot pour more than carried")
}

func TestBuildStructureChargesScrapAndRefusesOnOccupiedCell(t *testing.T) {
	s := New(2, 2, 1)
	s.Inventory.Scrap = 100

	require.NoError(t, s.BuildStructure(0, 0, Depot))
	_, ok := s.Structures[Cell{X: 0, Y: 0}]
	assert.True(t, ok)
	assert.Less(t, s.Inventory.Scrap, int32(100))

	err := s.BuildStructure(0, 0, Cistern)
	assert.Error(t, err, "a second structure cannot occupy the same cell")
}

func TestBuildStructureRefusesWithoutEnoughScrap(t *testing.T) {
	s := New(2, 2, 1)
	s.Inventory.Scrap = 1

	err := s.BuildStructure(0, 0, Cistern)

	assert.Error(t, err)
	_, ok := s.Structures[Cell{X: 0, Y: 0}]
	assert.False(t, ok, "a refused build must not place a structure")
}
