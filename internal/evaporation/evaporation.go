// Package evaporation computes the per-tick net water loss from every
// wet cell: a biome base rate scaled by heat, then humidity and wind
// modifiers, then trench/cistern/material retention discounts, with the
// result credited to the global pool's atmospheric reserve so the water
// it removes can return later as rain.
//
// Grounded on original_source/simulation/evaporation.py's modifier-chain
// shape (base -> humidity_mod -> wind_mod -> retention_mod) and on
// internal/worldgen/weather/evaporation.go for the teacher's evaporation
// coefficient style.
package evaporation

import (
	"terraform-engine/internal/atmosphere"
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/terrain"
)

// Biome carries the evaporation tuning for one surface biome.
type Biome struct {
	BaseEvap     float64 // per-tick fraction of standing water lost at heat=100
	RetentionPct float64 // percent of evap refunded by retention_mod (§4.7)
}

// Biomes is the fixed biome table. KindGrid entries not found here fall
// back to Temperate.
var Biomes = map[string]Biome{
	"arid":      {BaseEvap: 0.06, RetentionPct: 10},
	"temperate": {BaseEvap: 0.03, RetentionPct: 30},
	"wetland":   {BaseEvap: 0.015, RetentionPct: 60},
	"tundra":    {BaseEvap: 0.01, RetentionPct: 70},
}

func biomeFor(kind string) Biome {
	if b, ok := Biomes[kind]; ok {
		return b
	}
	return Biomes["temperate"]
}

// Step runs evaporation over every wet surface cell every tick
// unconditionally - unlike surface flow and subsurface seepage it is not
// cadence-gated.
func Step(s *simstate.State) {
	heat := s.Weather.Heat

	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			stock := s.Water(x, y)
			if stock <= 0 {
				continue
			}
			i := y*s.Width + x

			biome := biomeFor(s.KindGrid[i])
			baseEvap := biome.BaseEvap * float64(heat) / 100

			// humidity_mod ranges over [0.6, 1.4] given humidity's own
			// [0.1, 0.9] clamp, per §4.7: dry air pulls more water out,
			// humid air suppresses it.
			humidityMod := 1.5 - float64(s.HumidityGrid[i])
			windMod := 1.0 + atmosphere.WindMagnitude(s, x, y)*0.3

			evap := baseEvap * humidityMod * windMod

			if mat, ok := materialMult(s, x, y); ok {
				evap *= mat
			}
			if s.IsTrenched(x, y) {
				evap *= float64(simconfig.TrenchEvapReduction) / 100
			}
			if hasCistern(s, x, y) {
				evap *= float64(simconfig.CisternEvapReduction) / 100
			}

			netLoss := evap - evap*biome.RetentionPct/100

			loss := int32(float64(stock) * netLoss)
			if loss <= 0 {
				continue
			}
			if loss > stock {
				loss = stock
			}
			s.AddWater(x, y, -loss)
			s.Pool.Evaporate(int64(loss))
		}
	}
}

func materialMult(s *simstate.State, x, y int) (float64, bool) {
	layer, ok := s.Terrain.ExposedLayer(x, y)
	if !ok {
		return 0, false
	}
	name := s.Terrain.Material(layer, x, y)
	mat, ok := terrain.Palette[name]
	if !ok {
		return 0, false
	}
	return mat.EvaporationMult, true
}

func hasCistern(s *simstate.State, x, y int) bool {
	st, ok := s.Structures[simstate.Cell{X: x, Y: y}]
	return ok && st.Kind == simstate.Cistern
}
