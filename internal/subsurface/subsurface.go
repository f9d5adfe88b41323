// Package subsurface implements the below-ground water phase: vertical
// seepage between soil layers, capillary rise, pressure-driven horizontal
// flow along the connectivity cache, overflow redistribution, and surface
// emergence.
//
// Grounded on original_source/simulation/subsurface_vectorized.py: the
// top-down layer-pair seepage loop, the hydraulic-head overflow test
// (`diff > 0`, any positive difference triggers redistribution), and the
// delta-buffer accumulation discipline that prevents a cell from both
// giving and receiving water within the same pass in an order-dependent
// way. Every step here accumulates into a delta buffer and applies it in
// one second pass, never mutating State mid-scan.
package subsurface

import (
	"terraform-engine/internal/gridspace"
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrain"
)

// Step runs one subsurface pass over the active region of s. The caller
// must already have called s.Cache.EnsureValid this tick; Step does not
// call it.
func Step(s *simstate.State) {
	active := buildActiveMask(s)
	injectWellsprings(s, active)
	verticalSeepage(s, active)
	capillaryRise(s, active)
	horizontalFlow(s, active)
	overflowAndEmerge(s, active)
	s.RebuildActiveFromWater()
}

// buildActiveMask computes the set of cells this subsurface tick is
// confined to: every cell holding any subsurface water in any layer or a
// nonzero wellspring rate, dilated by one cell in each cardinal direction.
// Computed once per tick and shared by every sub-pass below - this is
// deliberately distinct from s.Active, which tracks surface water and is
// owned by the surface phase.
func buildActiveMask(s *simstate.State) map[simstate.Cell]struct{} {
	mask := make(map[simstate.Cell]struct{})
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			wet := s.WellspringGrid[y*s.Width+x] > 0
			for layer := terrain.Bedrock; !wet && layer < simconfig.NumLayers; layer++ {
				wet = s.SubWater(layer, x, y) > 0
			}
			if !wet {
				continue
			}
			mask[simstate.Cell{X: x, Y: y}] = struct{}{}
			for _, off := range gridspace.VonNeumann4 {
				nx, ny := x+off[0], y+off[1]
				if s.InBounds(nx, ny) {
					mask[simstate.Cell{X: nx, Y: ny}] = struct{}{}
				}
			}
		}
	}
	return mask
}

func injectWellsprings(s *simstate.State, active map[simstate.Cell]struct{}) {
	for cell := range active {
		rate := s.WellspringGrid[cell.Y*s.Width+cell.X]
		if rate <= 0 {
			continue
		}
		if s.Weather.Raining {
			rate = rate * simconfig.RainWellspringMultiplier / 100
		}
		drawn := s.Pool.WellspringDraw(int64(rate))
		if drawn == 0 {
			continue
		}
		s.AddSubWater(terrain.Regolith, cell.X, cell.Y, int32(drawn))
	}
}

// verticalSeepage moves water down one layer pair at a time, organics to
// regolith (top-down), accumulating into a delta buffer computed purely
// from this tick's pre-pass SubsurfaceWater - never from the in-progress
// delta - so a layer's just-vacated capacity never becomes visible to the
// layer above it within the same pass. Applied in one pass afterward.
func verticalSeepage(s *simstate.State, active map[simstate.Cell]struct{}) {
	n := s.Width * s.Height
	delta := make([]int32, int(simconfig.NumLayers)*n)

	for below := simconfig.NumLayers - 2; below >= terrain.Regolith; below-- {
		above := below + 1
		for cell := range active {
			x, y := cell.X, cell.Y
			i := y*s.Width + x
			lower := s.SubWater(below, x, y)
			upper := s.SubWater(above, x, y)
			if upper <= 0 {
				continue
			}
			capacity := s.MaxStorage(below, x, y) - lower
			if capacity <= 0 {
				continue
			}
			perm := s.PermeabilityVert[i]
			moved := (upper * simconfig.VerticalSeepageRate * perm) / 10000
			if moved > upper {
				moved = upper
			}
			if moved > capacity {
				moved = capacity
			}
			if moved <= 0 {
				continue
			}
			delta[int(below)*n+i] += moved
			delta[int(above)*n+i] -= moved
		}
	}

	for layer := terrain.Bedrock; layer < simconfig.NumLayers; layer++ {
		for cell := range active {
			i := cell.Y*s.Width + cell.X
			d := delta[int(layer)*n+i]
			if d != 0 {
				s.AddSubWater(layer, cell.X, cell.Y, d)
			}
		}
	}
}

// capillaryRise wicks water up into the surface water grid when the
// surface is still dry. Per active cell: only when water_grid is below
// CapillaryRiseTrigger and no rise has landed on this cell yet this tick,
// scan ORGANICS, TOPSOIL, ELUVIATION top-down and let the first layer
// holding any water contribute - never more than one layer per cell per
// tick, so a single source can't drain through a chain of layers in one
// pass.
func capillaryRise(s *simstate.State, active map[simstate.Cell]struct{}) {
	for i := range s.CapillaryRiseGrid {
		s.CapillaryRiseGrid[i] = 0
	}

	scan := simconfig.ExposedScanOrder[:3] // Organics, Topsoil, Eluviation

	for cell := range active {
		x, y := cell.X, cell.Y
		i := y*s.Width + x
		if s.Water(x, y) >= simconfig.CapillaryRiseTrigger {
			continue
		}
		for _, layer := range scan {
			source := s.SubWater(layer, x, y)
			if source <= 0 {
				continue
			}
			perm := s.PermeabilityVert[i]
			rise := source * perm * simconfig.CapillaryRiseRate / 10000
			if rise > 0 {
				applied := s.AddSubWater(layer, x, y, -rise)
				s.CapillaryRiseGrid[i] += -applied
			}
			break
		}
	}
}

// horizontalFlow moves water between adjacent columns along whichever
// (src_layer, tgt_layer) pairs the connectivity cache reports as touching -
// full voxel-like adjacency, since a thin layer can butt up against more
// than one stacked layer in its neighbour column. Driven by hydraulic head
// difference, scaled by each pair's contact fraction, and budget-capped per
// source cell+layer so total outflow never exceeds that cell's stock.
func horizontalFlow(s *simstate.State, active map[simstate.Cell]struct{}) {
	n := s.Width * s.Height
	delta := make([]int32, int(simconfig.NumLayers)*n)

	type target struct {
		nx, ny   int
		tgtLayer terrain.SoilLayer
		flow     int32
	}
	var targets []target

	for srcLayer := terrain.Regolith; srcLayer < simconfig.NumLayers; srcLayer++ {
		for cell := range active {
			x, y := cell.X, cell.Y
			i := y*s.Width + x
			stock := s.SubWater(srcLayer, x, y)
			if stock <= 0 {
				continue
			}
			headHere := head(s, srcLayer, x, y)
			budget := stock

			targets = targets[:0]
			for _, off := range gridspace.VonNeumann4 {
				nx, ny := x+off[0], y+off[1]
				if !s.InBounds(nx, ny) {
					before := delta[int(srcLayer)*n+i]
					edgeRunoff(s, srcLayer, x, y, &delta[int(srcLayer)*n+i])
					budget -= before - delta[int(srcLayer)*n+i]
					continue
				}
				ni := ny*s.Width + nx
				for tgtLayer := terrain.Regolith; tgtLayer < simconfig.NumLayers; tgtLayer++ {
					if !s.Cache.CanConnect(srcLayer, tgtLayer, x, y, off[0], off[1]) {
						continue
					}
					headThere := head(s, tgtLayer, nx, ny)
					diff := headHere - headThere
					if diff <= 0 {
						continue
					}
					fraction := s.Cache.ContactFraction(srcLayer, tgtLayer, x, y, off[0], off[1])
					perm := (s.PermeabilityHoriz[i] + s.PermeabilityHoriz[ni]) / 2
					flow := int32(float64(diff) * float64(fraction) * float64(perm) / 100 * simconfig.SubsurfaceFlowRate / 100)
					if flow < simconfig.SubsurfaceFlowThreshold {
						continue
					}
					targets = append(targets, target{nx, ny, tgtLayer, flow})
				}
			}

			for _, t := range targets {
				flow := t.flow
				if flow > budget {
					flow = budget
				}
				if flow <= 0 {
					continue
				}
				budget -= flow
				ni := t.ny*s.Width + t.nx
				delta[int(srcLayer)*n+i] -= flow
				delta[int(t.tgtLayer)*n+ni] += flow
				if budget <= 0 {
					break
				}
			}
		}
	}

	for layer := terrain.Regolith; layer < simconfig.NumLayers; layer++ {
		for cell := range active {
			i := cell.Y*s.Width + cell.X
			d := delta[int(layer)*n+i]
			if d != 0 {
				s.AddSubWater(layer, cell.X, cell.Y, d)
			}
		}
	}
}

func head(s *simstate.State, layer terrain.SoilLayer, x, y int) int32 {
	bottom := s.Terrain.LayerBottomElevation(layer, x, y)
	top := s.Terrain.LayerTopElevation(layer, x, y)
	thickness := top - bottom
	if thickness <= 0 {
		return bottom
	}
	maxStorage := s.MaxStorage(layer, x, y)
	if maxStorage <= 0 {
		return bottom
	}
	stock := s.SubWater(layer, x, y)
	waterHeight := int32(int64(stock) * int64(thickness) / int64(maxStorage))
	return bottom + waterHeight
}

func edgeRunoff(s *simstate.State, layer terrain.SoilLayer, x, y int, cellDelta *int32) {
	stock := s.SubWater(layer, x, y) + *cellDelta
	amount := stock * simconfig.SubsurfaceFlowRate / 100
	if amount < simconfig.SubsurfaceFlowThreshold {
		return
	}
	*cellDelta -= amount
	s.Pool.EdgeRunoff(int64(amount))
}

// overflowAndEmerge redistributes water that exceeds a layer's max
// storage to same-layer neighbours with a lower head and spare capacity,
// using a plain positive-difference test as the
// original vectorized overflow pass does; water that still has nowhere
// to go emerges onto the surface water grid.
func overflowAndEmerge(s *simstate.State, active map[simstate.Cell]struct{}) {
	n := s.Width * s.Height
	for i := range s.SurfaceOverflowGrid {
		s.SurfaceOverflowGrid[i] = 0
	}
	delta := make([]int32, int(simconfig.NumLayers)*n)

	for layer := terrain.Regolith; layer < simconfig.NumLayers; layer++ {
		for cell := range active {
			x, y := cell.X, cell.Y
			i := y*s.Width + x
			stock := s.SubWater(layer, x, y)
			capacity := s.MaxStorage(layer, x, y)
			excess := stock - capacity
			if excess <= 0 {
				continue
			}

			headHere := head(s, layer, x, y)
			remaining := excess
			for _, off := range gridspace.VonNeumann4 {
				if remaining <= 0 {
					break
				}
				nx, ny := x+off[0], y+off[1]
				if !s.InBounds(nx, ny) || !s.Cache.CanConnect(layer, layer, x, y, off[0], off[1]) {
					continue
				}
				if head(s, layer, nx, ny) >= headHere {
					continue
				}
				ni := ny*s.Width + nx
				room := s.MaxStorage(layer, nx, ny) - s.SubWater(layer, nx, ny)
				if room <= 0 {
					continue
				}
				move := remaining
				if move > room {
					move = room
				}
				delta[int(layer)*n+i] -= move
				delta[int(layer)*n+ni] += move
				remaining -= move
			}
			if remaining > 0 {
				delta[int(layer)*n+i] -= remaining
				s.SurfaceOverflowGrid[i] += remaining
			}
		}
	}

	for layer := terrain.Regolith; layer < simconfig.NumLayers; layer++ {
		for cell := range active {
			i := cell.Y*s.Width + cell.X
			d := delta[int(layer)*n+i]
			if d != 0 {
				s.AddSubWater(layer, cell.X, cell.Y, d)
			}
		}
	}

	for cell := range active {
		i := cell.Y*s.Width + cell.X
		total := s.CapillaryRiseGrid[i] + s.SurfaceOverflowGrid[i]
		if total > 0 {
			s.AddWater(cell.X, cell.Y, total)
		}
	}
}
