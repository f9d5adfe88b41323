// Package surface implements above-ground water movement: an 8-direction
// (Moore neighbourhood) flow kernel with probabilistic rounding so
// fractional flow amounts don't vanish or duplicate volume, a trench
// multiplier that speeds flow along dug channels, an edge sink back into
// the global pool, and seepage from standing surface water into the
// exposed soil layer.
//
// Grounded on original_source/simulation/surface_vectorized.py's
// neighbour-kernel flow pass and the engine's delta-buffer-first
// discipline: every cell's outflow is computed against the water level at
// the start of the pass, then all deltas are applied together.
package surface

import (
	"terraform-engine/internal/gridspace"
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrain"
)

// Flow runs the Moore-neighbourhood surface flow pass plus edge runoff.
// The orchestrator calls this on even turn_in_day ticks.
func Flow(s *simstate.State) {
	flow(s)
}

// SeepAndUpdateMoisture runs surface-to-topsoil seepage and refreshes each
// cell's moisture EMA. The orchestrator calls this on odd turn_in_day ticks,
// the tick's complement to Flow.
func SeepAndUpdateMoisture(s *simstate.State) {
	seepToTopsoil(s)
}

// waterHeight converts a standing surface volume into an elevation
// contribution, one depth unit of apparent rise per depth unit of volume.
func waterHeight(stock int32) int32 {
	return stock
}

func flow(s *simstate.State) {
	n := s.Width * s.Height
	delta := make([]int32, n)

	type target struct {
		nx, ny int
		diff   int32
	}
	var targets []target

	for cell := range s.Active {
		x, y := cell.X, cell.Y
		i := y*s.Width + x
		stock := s.Water(x, y)
		if stock <= 0 {
			continue
		}
		elevHere := s.Terrain.Elevation(x, y) + waterHeight(stock)

		targets = targets[:0]
		var totalDiff int64

		for _, off := range gridspace.Moore8 {
			nx, ny := x+off[0], y+off[1]
			if !s.InBounds(nx, ny) {
				continue
			}
			nStock := s.Water(nx, ny)
			elevThere := s.Terrain.Elevation(nx, ny) + waterHeight(nStock)
			diff := elevHere - elevThere
			if diff <= 0 {
				continue
			}
			targets = append(targets, target{nx, ny, diff})
			totalDiff += int64(diff)
		}
		if len(targets) == 0 {
			continue
		}

		rate := float64(simconfig.SurfaceFlowRate)
		if s.IsTrenched(x, y) {
			rate *= simconfig.TrenchFlowMultiplier
		}
		totalOut := float64(stock) * rate / 100
		if totalOut > float64(stock) {
			totalOut = float64(stock)
		}

		var movedSoFar int32
		for _, t := range targets {
			share := totalOut * (float64(t.diff) / float64(totalDiff))
			whole, frac := splitFraction(share)
			amount := whole
			if s.Rand.Float64() < frac {
				amount++
			}
			if amount < simconfig.SurfaceFlowThreshold {
				continue
			}
			if movedSoFar+amount > stock {
				amount = stock - movedSoFar
			}
			if amount <= 0 {
				continue
			}
			movedSoFar += amount
			ni := t.ny*s.Width + t.nx
			delta[i] -= amount
			delta[ni] += amount
		}
	}

	for cell := range s.Active {
		i := cell.Y*s.Width + cell.X
		if delta[i] != 0 {
			s.AddWater(cell.X, cell.Y, delta[i])
		}
	}

	runoffEdges(s)
}

// runoffEdges drains a small fraction of standing water on border cells
// back into the global pool, modelling water leaving the simulated area.
func runoffEdges(s *simstate.State) {
	for x := 0; x < s.Width; x++ {
		drainColumn(s, x, 0)
		drainColumn(s, x, s.Height-1)
	}
	for y := 0; y < s.Height; y++ {
		drainColumn(s, 0, y)
		drainColumn(s, s.Width-1, y)
	}
}

func drainColumn(s *simstate.State, x, y int) {
	stock := s.Water(x, y)
	if stock <= 0 {
		return
	}
	amount := stock * simconfig.SurfaceFlowRate / 100
	if amount < simconfig.SurfaceFlowThreshold {
		return
	}
	s.AddWater(x, y, -amount)
	s.Pool.EdgeRunoff(int64(amount))
}

// seepToTopsoil moves a fraction of standing surface water, scaled by the
// cell's vertical permeability, into the exposed soil layer, capped by that
// layer's remaining capacity, then updates every cell's moisture EMA.
func seepToTopsoil(s *simstate.State) {
	for cell := range s.Active {
		x, y := cell.X, cell.Y
		i := y*s.Width + x
		stock := s.Water(x, y)
		if stock <= 0 {
			continue
		}
		rate := int32(simconfig.SurfaceSeepageRate)
		if s.IsTrenched(x, y) {
			rate = int32(float64(rate) * simconfig.TrenchFlowMultiplier)
		}
		amount := stock * rate * s.PermeabilityVert[i] / 10000
		if amount < simconfig.SurfaceFlowThreshold {
			continue
		}
		layer, ok := s.Terrain.ExposedLayer(x, y)
		if !ok {
			continue
		}
		if s.PermeabilityVert[i] <= 0 {
			continue
		}
		room := s.MaxStorage(layer, x, y) - s.SubWater(layer, x, y)
		if room <= 0 {
			continue
		}
		if amount > room {
			amount = room
		}
		applied := s.AddSubWater(layer, x, y, amount)
		if applied <= 0 {
			continue
		}
		s.AddWater(x, y, -applied)
	}
	updateMoisture(s)
}

// updateMoisture refreshes every cell's moisture EMA from its current
// surface stock plus the sum of its subsurface stock across every layer,
// independent of whether seepage moved anything this tick.
func updateMoisture(s *simstate.State) {
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			i := y*s.Width + x
			total := s.Water(x, y)
			for layer := terrain.SoilLayer(0); layer < terrain.SoilLayer(simconfig.NumLayers); layer++ {
				total += s.SubWater(layer, x, y)
			}
			s.MoistureGrid[i] = s.MoistureGrid[i]*(1-simconfig.MoistureEMAAlpha) + simconfig.MoistureEMAAlpha*float64(total)
		}
	}
}

func splitFraction(v float64) (int32, float64) {
	whole := int32(v)
	return whole, v - float64(whole)
}
