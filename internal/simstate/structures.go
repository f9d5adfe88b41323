package simstate

import (
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/terrain"
)

// StructureKind is a closed tagged union of the player-placed structures.
// Behaviour is dispatched by an exhaustive switch on Kind rather than by
// an interface - there are exactly four variants and no plugin surface.
type StructureKind int

const (
	Depot StructureKind = iota
	Cistern
	Condenser
	Planter
)

func (k StructureKind) String() string {
	switch k {
	case Depot:
		return "depot"
	case Cistern:
		return "cistern"
	case Condenser:
		return "condenser"
	case Planter:
		return "planter"
	default:
		return "unknown"
	}
}

// Structure is one placed instance. Only the field relevant to its Kind
// is meaningful: Stored for Cistern, Growth for Planter. Depot and
// Condenser carry no per-instance state beyond their position.
type Structure struct {
	Kind   StructureKind
	Stored int32 // Cistern: buffered water volume
	Growth int32 // Planter: accumulated growth progress
}

const (
	// CisternCapacity bounds how much water a Cistern can buffer.
	CisternCapacity int32 = 5000
	// CondenserYieldPerTick is the water a Condenser pulls from ambient
	// humidity into the grid each eligible tick.
	CondenserYieldPerTick int32 = 2
	// PlanterGrowthTarget is the growth value at which a Planter's crop
	// is ready for harvest.
	PlanterGrowthTarget int32 = 100
	// PlanterGrowthPerTick is how much growth accrues per tick when a
	// Planter sits on wet topsoil.
	PlanterGrowthPerTick int32 = 1
	// PlanterUpkeepWater is the water a Planter consumes from its cell
	// per tick of growth.
	PlanterUpkeepWater int32 = 1
)

// StepStructures runs the one-tick behaviour of every placed structure.
// Called once per tick right after the weather advances, before the
// surface, subsurface and evaporation phases.
func (s *State) StepStructures() {
	for cell, st := range s.Structures {
		switch st.Kind {
		case Depot:
			// No per-tick behaviour: a Depot is a passive inventory anchor.
		case Cistern:
			s.stepCistern(cell, &st)
		case Condenser:
			s.stepCondenser(cell, &st)
		case Planter:
			s.stepPlanter(cell, &st)
		}
		s.Structures[cell] = st
	}
}

func (s *State) stepCistern(cell Cell, st *Structure) {
	if st.Stored > 0 {
		leak := int32(float64(st.Stored) * simconfig.CisternLossRate / 100 * s.Weather.Heat / 100)
		if leak > st.Stored {
			leak = st.Stored
		}
		st.Stored -= leak
	}

	available := s.Water(cell.X, cell.Y)
	if available <= 0 {
		return
	}
	room := CisternCapacity - st.Stored
	if room <= 0 {
		return
	}
	draw := available * simconfig.CisternTransferRate / 100
	if draw > available {
		draw = available
	}
	if draw > room {
		draw = room
	}
	if draw <= 0 {
		return
	}
	s.AddWater(cell.X, cell.Y, -draw)
	st.Stored += draw
}

func (s *State) stepCondenser(cell Cell, st *Structure) {
	i := s.idx2(cell.X, cell.Y)
	humidity := s.HumidityGrid[i]
	if humidity <= 0.5 {
		return
	}
	drawn := s.Pool.Rain(int64(CondenserYieldPerTick))
	if drawn == 0 {
		return
	}
	s.AddWater(cell.X, cell.Y, int32(drawn))
}

func (s *State) stepPlanter(cell Cell, st *Structure) {
	if st.Growth >= PlanterGrowthTarget {
		s.harvest(cell, st)
		return
	}
	available := s.Water(cell.X, cell.Y)
	if available < PlanterUpkeepWater {
		return
	}
	s.AddWater(cell.X, cell.Y, -PlanterUpkeepWater)
	st.Growth += PlanterGrowthPerTick
}

// harvest completes a ready Planter automatically: it banks a unit of
// biomass, deposits an ORGANICS layer unit at the planter's cell, and
// resets growth so the same structure can start its next crop.
func (s *State) harvest(cell Cell, st *Structure) {
	st.Growth = 0
	s.Inventory.Biomass++
	s.Terrain.AddLayerDepth(terrain.Organics, cell.X, cell.Y, 1)
	s.Cache.Invalidate()
}

// Harvest lets a player force an early harvest of a Planter whose growth
// has already reached PlanterGrowthTarget, reporting whether one occurred.
// StepStructures performs the same harvest automatically once growth
// reaches target, so this only matters for a crop a player checks between
// ticks.
func (s *State) Harvest(cell Cell) bool {
	st, ok := s.Structures[cell]
	if !ok || st.Kind != Planter || st.Growth < PlanterGrowthTarget {
		return false
	}
	s.harvest(cell, &st)
	s.Structures[cell] = st
	return true
}
