// Package atmosphere models humidity and wind as two continuous fields
// over the grid: a small random drift each tick, a pull toward the
// current heat, clamping to the engine's valid ranges, and a Gaussian
// blur that spreads local changes into their surroundings instead of
// leaving sharp per-cell artifacts.
//
// Grounded on the original weather model's humidity/wind update and on
// internal/worldgen/weather's climate smoothing; the Gaussian kernel
// itself is computed with gonum.org/v1/gonum/stat/distuv, the one new
// ecosystem dependency this engine adds over its teacher.
package atmosphere

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/simstate"
)

// kernel is the 1D Gaussian kernel used for both blur passes, built once
// at package init since DiffusionSigma is a fixed constant.
var kernel = buildKernel(simconfig.DiffusionSigma)

func buildKernel(sigma float64) []float64 {
	radius := int(math.Ceil(sigma * 2))
	dist := distuv.Normal{Mu: 0, Sigma: sigma}
	weights := make([]float64, 2*radius+1)
	var sum float64
	for i := range weights {
		offset := float64(i - radius)
		weights[i] = dist.Prob(offset)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// Step runs one atmosphere tick: drift, heat coupling, clamp, then
// separable Gaussian blur on humidity and both wind components.
func Step(s *simstate.State) {
	heat := s.Weather.Heat
	driftAndClamp(s, heat)
	blurFloat32(s.HumidityGrid, s.Width, s.Height)
	blurWind(s)
}

func driftAndClamp(s *simstate.State, heat float64) {
	for i := range s.HumidityGrid {
		drift := (s.Rand.Float64()*2 - 1) * simconfig.HumidityDriftRate
		heatPull := (heat - (simconfig.HeatMin+simconfig.HeatMax)/2) * simconfig.HeatHumidityFactor
		h := float64(s.HumidityGrid[i]) + drift - heatPull
		h = clamp(h, simconfig.HumidityMin, simconfig.HumidityMax)
		s.HumidityGrid[i] = float32(h)
	}

	for i := 0; i < len(s.WindGrid); i += 2 {
		for c := 0; c < 2; c++ {
			drift := (s.Rand.Float64()*2 - 1) * simconfig.WindDriftRate
			w := float64(s.WindGrid[i+c]) + drift
			w = clamp(w, simconfig.WindComponentMin, simconfig.WindComponentMax)
			if math.Abs(w) < simconfig.WindNegligible {
				w = 0
			}
			s.WindGrid[i+c] = float32(w)
		}
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// blurFloat32 applies the Gaussian kernel separably (horizontal pass then
// vertical pass) to a W*H field in place, clamping sample coordinates to
// the nearest in-bounds row/column at the boundary.
func blurFloat32(grid []float32, w, h int) {
	radius := (len(kernel) - 1) / 2
	tmp := make([]float32, len(grid))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k, weight := range kernel {
				sx := clampInt(x+k-radius, 0, w-1)
				acc += float64(grid[y*w+sx]) * weight
			}
			tmp[y*w+x] = float32(acc)
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			var acc float64
			for k, weight := range kernel {
				sy := clampInt(y+k-radius, 0, h-1)
				acc += float64(tmp[sy*w+x]) * weight
			}
			grid[y*w+x] = float32(acc)
		}
	}
}

// blurWind blurs each wind component independently by de-interleaving
// into scratch planes, reusing blurFloat32, then writing back.
func blurWind(s *simstate.State) {
	n := s.Width * s.Height
	u := make([]float32, n)
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		u[i] = s.WindGrid[2*i]
		v[i] = s.WindGrid[2*i+1]
	}
	blurFloat32(u, s.Width, s.Height)
	blurFloat32(v, s.Width, s.Height)
	for i := 0; i < n; i++ {
		s.WindGrid[2*i] = u[i]
		s.WindGrid[2*i+1] = v[i]
	}
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// WindMagnitude returns the wind speed at (x,y).
func WindMagnitude(s *simstate.State, x, y int) float64 {
	i := (y*s.Width + x) * 2
	u, v := float64(s.WindGrid[i]), float64(s.WindGrid[i+1])
	return math.Hypot(u, v)
}

// WindAngle returns the wind direction at (x,y) in radians, measured from
// the +X axis, or 0 when the wind speed is below WindNegligible.
func WindAngle(s *simstate.State, x, y int) float64 {
	i := (y*s.Width + x) * 2
	u, v := float64(s.WindGrid[i]), float64(s.WindGrid[i+1])
	if math.Hypot(u, v) < simconfig.WindNegligible {
		return 0
	}
	return math.Atan2(v, u)
}
