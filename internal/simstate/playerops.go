package simstate

import (
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simerr"
)

// CollectWater moves up to CollectWaterCap units of standing surface
// water at (x,y) into the player's Inventory, returning the amount
// actually collected. A cell with no standing water collects zero, not
// a refusal - the empty-handed case is legal.
func (s *State) CollectWater(x, y int) (int32, error) {
	if !s.InBounds(x, y) {
		s.PushMessage("collect water: target is off the grid")
		return 0, simerr.ErrBoundsViolation
	}
	available := s.Water(x, y)
	if available <= 0 {
		return 0, nil
	}
	amount := available
	if amount > simconfig.CollectWaterCap {
		amount = simconfig.CollectWaterCap
	}
	s.AddWater(x, y, -amount)
	s.Inventory.Water += amount
	return amount, nil
}

// PourWater moves up to PourWaterCap units of water (and at most
// requested) from the player's Inventory onto the surface at (x,y),
// returning the amount actually poured. Refuses if the player is
// carrying no water at all.
func (s *State) PourWater(x, y int, requested int32) (int32, error) {
	if !s.InBounds(x, y) {
		s.PushMessage("pour water: target is off the grid")
		return 0, simerr.ErrBoundsViolation
	}
	if s.Inventory.Water <= 0 {
		s.PushMessage("pour water: inventory is empty")
		return 0, simerr.NewRefusal("no water to pour")
	}
	amount := requested
	if amount > simconfig.PourWaterCap {
		amount = simconfig.PourWaterCap
	}
	if amount > s.Inventory.Water {
		amount = s.Inventory.Water
	}
	if amount <= 0 {
		return 0, nil
	}
	s.Inventory.Water -= amount
	s.AddWater(x, y, amount)
	return amount, nil
}

// buildCosts maps each structure kind to its Scrap charge. Depot and
// Condenser cost the base rate; Cistern and Planter cost more, reflecting
// the storage/growth machinery they carry.
var buildCosts = map[StructureKind]int32{
	Depot:     simconfig.BuildStructureScrapCost,
	Condenser: simconfig.BuildStructureScrapCost,
	Cistern:   simconfig.BuildStructureScrapCost * 2,
	Planter:   simconfig.BuildStructureScrapCost * 2,
}

// BuildStructure places a structure of the given kind at (x,y), charging
// its Scrap cost against the player's Inventory. Refuses if the cell
// already holds a structure or the player can't afford it.
func (s *State) BuildStructure(x, y int, kind StructureKind) error {
	if !s.InBounds(x, y) {
		s.PushMessage("build structure: target is off the grid")
		return simerr.ErrBoundsViolation
	}
	cell := Cell{X: x, Y: y}
	if _, exists := s.Structures[cell]; exists {
		return simerr.NewRefusal("a structure already occupies (%d,%d)", x, y)
	}
	cost, ok := buildCosts[kind]
	if !ok {
		return simerr.NewRefusal("unknown structure kind %v", kind)
	}
	if s.Inventory.Scrap < cost {
		return simerr.NewRefusal("need %d scrap to build a %s, have %d", cost, kind, s.Inventory.Scrap)
	}
	s.Inventory.Scrap -= cost
	s.Structures[cell] = Structure{Kind: kind}
	return nil
}
