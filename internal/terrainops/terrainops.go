// Package terrainops implements the player-facing terrain mutation
// commands: raising and lowering the exposed soil layer one step at a
// time, and digging a trench between a player cell and a target cell in
// one of three geometric modes.
//
// Grounded on original_source/game_state/terrain_actions.py for the
// trench direction/backward/forward/left/right geometry and the
// fill-priority rules per mode; every mutation here invalidates the
// connectivity cache the way the teacher's world registry invalidates
// derived caches after a topology change.
package terrainops

import (
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simerr"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrain"
)

// LowerGround lowers the exposed soil layer at (x,y) by one step
// (LowerRaiseStepUnits). Once every soil layer is empty, further lowering
// eats into bedrock_base itself, down to MinBedrockElevation, at which
// point the operation refuses.
func LowerGround(s *simstate.State, x, y int) error {
	if !s.InBounds(x, y) {
		s.PushMessage("lower ground: target is off the grid")
		return simerr.ErrBoundsViolation
	}

	layer, ok := s.Terrain.ExposedLayer(x, y)
	if ok {
		removed := s.Terrain.AddLayerDepth(layer, x, y, -simconfig.LowerRaiseStepUnits)
		if removed != 0 {
			s.Cache.Invalidate()
			return nil
		}
	}

	i := y*s.Width + x
	base := s.Terrain.BedrockBase[i]
	if base <= simconfig.MinBedrockElevation {
		s.PushMessage("lower ground: bedrock floor reached")
		return simerr.NewRefusal("cannot lower ground below bedrock floor at (%d,%d)", x, y)
	}
	next := base - simconfig.LowerRaiseStepUnits
	if next < simconfig.MinBedrockElevation {
		next = simconfig.MinBedrockElevation
	}
	s.Terrain.BedrockBase[i] = next
	s.Cache.Invalidate()
	return nil
}

// RaiseGround raises the exposed soil layer at (x,y) by one step. If
// every soil layer is empty (bedrock exposed), it seeds a fresh REGOLITH
// layer with its default material instead of raising bedrock.
func RaiseGround(s *simstate.State, x, y int) error {
	if !s.InBounds(x, y) {
		s.PushMessage("raise ground: target is off the grid")
		return simerr.ErrBoundsViolation
	}

	layer := s.Terrain.ExposedOrDefault(x, y, terrain.Regolith)
	s.Terrain.AddLayerDepth(layer, x, y, simconfig.LowerRaiseStepUnits)
	s.Cache.Invalidate()
	return nil
}

// Mode selects a DigTrench fill pattern.
type Mode int

const (
	Flat Mode = iota
	SlopeDown
	SlopeUp
)

type trenchGeometry struct {
	backward, forward, left, right [2]int
}

func geometry(px, py, tx, ty int) trenchGeometry {
	dx, dy := sign(tx-px), sign(ty-py)
	if dx == 0 && dy == 0 {
		dx = 1
	}
	return trenchGeometry{
		backward: [2]int{tx - dx, ty - dy},
		forward:  [2]int{tx + dx, ty + dy},
		left:     [2]int{tx - dy, ty + dx},
		right:    [2]int{tx + dy, ty - dx},
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// DigTrench carves a trench at (tx,ty) relative to the player at (px,py),
// redistributing removed material per mode.
func DigTrench(s *simstate.State, px, py, tx, ty int, mode Mode) error {
	if !s.InBounds(tx, ty) {
		s.PushMessage("dig trench: target is off the grid")
		return simerr.ErrBoundsViolation
	}
	g := geometry(px, py, tx, ty)

	switch mode {
	case Flat:
		digFlat(s, tx, ty, g)
	case SlopeDown:
		digSlopeDown(s, tx, ty, g)
	case SlopeUp:
		digSlopeUp(s, tx, ty, g)
	default:
		return simerr.NewRefusal("unknown trench mode")
	}

	markTrenched(s, tx, ty)
	if s.InBounds(g.backward[0], g.backward[1]) {
		markTrenched(s, g.backward[0], g.backward[1])
	}
	if s.InBounds(g.forward[0], g.forward[1]) {
		markTrenched(s, g.forward[0], g.forward[1])
	}
	s.Cache.Invalidate()
	return nil
}

func markTrenched(s *simstate.State, x, y int) {
	s.TrenchGrid[y*s.Width+x] = 1
}

// digFlat removes material from target down to backward's elevation,
// then refills forward first, then the lower of left/right, then splits
// any remainder evenly between left and right.
func digFlat(s *simstate.State, tx, ty int, g trenchGeometry) {
	backElev := s.Terrain.Elevation(g.backward[0], g.backward[1])
	removed := removeDownTo(s, tx, ty, backElev)
	if removed <= 0 {
		return
	}

	remaining := removed
	if s.InBounds(g.forward[0], g.forward[1]) {
		fwdElev := s.Terrain.Elevation(g.forward[0], g.forward[1])
		room := backElev - fwdElev
		if room > 0 {
			remaining -= fillUpTo(s, g.forward[0], g.forward[1], room)
		}
	}
	if remaining <= 0 {
		return
	}
	remaining = fillLowerOfPair(s, g.left, g.right, remaining)
	if remaining <= 0 {
		return
	}
	splitEvenly(s, g.left, g.right, remaining)
}

// digSlopeDown pulls material from forward into target, then from
// target into backward, aiming for backward > target > forward separated
// by at least TRENCH_SLOPE_DROP, spilling any leftover to the sides.
func digSlopeDown(s *simstate.State, tx, ty int, g trenchGeometry) {
	targetElev := s.Terrain.Elevation(tx, ty)
	if s.InBounds(g.forward[0], g.forward[1]) {
		fwdElev := s.Terrain.Elevation(g.forward[0], g.forward[1])
		if fwdElev > targetElev {
			moved := removeDownTo(s, g.forward[0], g.forward[1], targetElev)
			leftover := fillUpTo(s, tx, ty, moved)
			spillSides(s, g, moved-leftover)
		}
	}

	backElev := s.Terrain.Elevation(g.backward[0], g.backward[1])
	targetElev = s.Terrain.Elevation(tx, ty)
	floor := backElev - simconfig.TrenchSlopeDrop
	if targetElev > floor {
		removed := removeDownTo(s, tx, ty, floor)
		half := removed / 2
		if half > 0 {
			leftover := fillUpTo(s, g.backward[0], g.backward[1], half)
			spillSides(s, g, half-leftover)
		}
		spillSides(s, g, removed-half)
	}
}

// digSlopeUp removes just enough from target to keep it at least
// TRENCH_SLOPE_DROP above backward, then raises forward to stay
// TRENCH_SLOPE_DROP above the lowered target, aiming for
// backward < target < forward.
func digSlopeUp(s *simstate.State, tx, ty int, g trenchGeometry) {
	backElev := s.Terrain.Elevation(g.backward[0], g.backward[1])
	targetElev := s.Terrain.Elevation(tx, ty)
	ceiling := backElev + simconfig.TrenchSlopeDrop
	var removed int32
	if targetElev > ceiling {
		removed = removeDownTo(s, tx, ty, ceiling)
	}

	targetElev = s.Terrain.Elevation(tx, ty)
	if s.InBounds(g.forward[0], g.forward[1]) {
		fwdTarget := targetElev + simconfig.TrenchSlopeDrop
		fwdElev := s.Terrain.Elevation(g.forward[0], g.forward[1])
		if fwdElev < fwdTarget {
			need := fwdTarget - fwdElev
			if need > removed {
				need = removed
			}
			leftover := fillUpTo(s, g.forward[0], g.forward[1], need)
			spillSides(s, g, removed-need+leftover)
			return
		}
	}
	spillSides(s, g, removed)
}

func spillSides(s *simstate.State, g trenchGeometry, amount int32) {
	if amount <= 0 {
		return
	}
	splitEvenly(s, g.left, g.right, amount)
}

// removeDownTo removes material from (x,y)'s exposed layers until its
// elevation reaches floor or every soil layer is empty, returning the
// total amount removed.
func removeDownTo(s *simstate.State, x, y int, floor int32) int32 {
	if !s.InBounds(x, y) {
		return 0
	}
	var total int32
	for {
		elev := s.Terrain.Elevation(x, y)
		if elev <= floor {
			break
		}
		layer, ok := s.Terrain.ExposedLayer(x, y)
		if !ok {
			break
		}
		step := elev - floor
		depth := s.Terrain.LayerDepth(layer, x, y)
		if step > depth {
			step = depth
		}
		removed := -s.Terrain.AddLayerDepth(layer, x, y, -step)
		if removed <= 0 {
			break
		}
		total += removed
	}
	return total
}

// fillUpTo deposits `amount` of material onto (x,y)'s exposed layer
// (seeding REGOLITH if bare) and returns the amount deposited. There is
// no elevation ceiling; an off-grid cell receives nothing.
func fillUpTo(s *simstate.State, x, y int, amount int32) int32 {
	if !s.InBounds(x, y) || amount <= 0 {
		return 0
	}
	layer := s.Terrain.ExposedOrDefault(x, y, terrain.Regolith)
	return s.Terrain.AddLayerDepth(layer, x, y, amount)
}

func fillLowerOfPair(s *simstate.State, a, b [2]int, amount int32) int32 {
	aIn, bIn := s.InBounds(a[0], a[1]), s.InBounds(b[0], b[1])
	switch {
	case aIn && bIn:
		aElev := s.Terrain.Elevation(a[0], a[1])
		bElev := s.Terrain.Elevation(b[0], b[1])
		if aElev <= bElev {
			diff := bElev - aElev
			if diff > amount {
				diff = amount
			}
			return amount - fillUpTo(s, a[0], a[1], diff)
		}
		diff := aElev - bElev
		if diff > amount {
			diff = amount
		}
		return amount - fillUpTo(s, b[0], b[1], diff)
	case aIn:
		return amount - fillUpTo(s, a[0], a[1], amount)
	case bIn:
		return amount - fillUpTo(s, b[0], b[1], amount)
	default:
		return amount
	}
}

func splitEvenly(s *simstate.State, a, b [2]int, amount int32) {
	if amount <= 0 {
		return
	}
	half := amount / 2
	rest := amount - half
	used := fillUpTo(s, a[0], a[1], half)
	used += fillUpTo(s, b[0], b[1], rest)
	_ = used
}
