// Package simstate defines the State aggregate that every simulation
// phase reads and mutates: the terrain grid, the water and atmosphere
// grids, the global water pool, weather, the active-cell set, structures,
// and the player inventory. Exactly one goroutine - the orchestrator -
// owns State during a tick; everything else reads a snapshot.
package simstate

import (
	"math/rand/v2"

	"terraform-engine/internal/connectivity"
	"terraform-engine/internal/gridspace"
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/terrain"
	"terraform-engine/internal/waterpool"
)

// Cell is a grid coordinate, used as a map key for the active set and the
// structures table.
type Cell struct{ X, Y int }

// Inventory tracks the resources a player spends on terrain and
// structure operations.
type Inventory struct {
	Water   int32
	Scrap   int32
	Seeds   int32
	Biomass int32
}

// State is the full simulation aggregate for one grid.
type State struct {
	Terrain *terrain.Grid
	Cache   *connectivity.Cache
	Pool    *waterpool.Pool

	Width, Height int

	WaterGrid            []int32 // surface-pooled water, W*H
	SubsurfaceWater       []int32 // 6*W*H
	PermeabilityVert      []int32 // W*H, 0-100
	PermeabilityHoriz     []int32 // W*H, 0-100
	Porosity              []int32 // W*H, 0-100
	WellspringGrid        []int32 // W*H
	HumidityGrid          []float32
	WindGrid              []float32 // W*H*2
	TemperatureGrid       []float32
	MoistureGrid          []float64
	KindGrid              []string // biome key
	TrenchGrid            []uint8
	WaterPassageGrid      []uint8
	WindExposureGrid      []float32

	// Per-tick subsurface scratch, recomputed at the start of each
	// subsurface phase; kept here only so it doesn't need reallocating.
	CapillaryRiseGrid   []int32
	SurfaceOverflowGrid []int32

	Active map[Cell]struct{}

	Structures map[Cell]Structure

	Weather   Weather
	Inventory Inventory

	Messages []string

	Tick int64
	Rand *rand.Rand

	// RandomBuffer is pre-allocated W*H scratch for kernels that need one
	// uniform draw per cell per tick, avoiding per-tick heap allocation.
	RandomBuffer []float64
}

// New allocates a State for a width×height grid with an empty terrain
// grid, zeroed physical grids, and a seeded PRNG.
func New(width, height int, seed uint64) *State {
	n := width * height
	s := &State{
		Terrain:           terrain.New(width, height),
		Pool:              waterpool.New(0),
		Width:             width,
		Height:            height,
		WaterGrid:         make([]int32, n),
		SubsurfaceWater:   make([]int32, int(simconfig.NumLayers)*n),
		PermeabilityVert:  make([]int32, n),
		PermeabilityHoriz: make([]int32, n),
		Porosity:          make([]int32, n),
		WellspringGrid:    make([]int32, n),
		HumidityGrid:      make([]float32, n),
		WindGrid:          make([]float32, n*2),
		TemperatureGrid:   make([]float32, n),
		MoistureGrid:      make([]float64, n),
		KindGrid:          make([]string, n),
		TrenchGrid:        make([]uint8, n),
		WaterPassageGrid:  make([]uint8, n),
		WindExposureGrid:  make([]float32, n),

		CapillaryRiseGrid:   make([]int32, n),
		SurfaceOverflowGrid: make([]int32, n),

		Active:     make(map[Cell]struct{}),
		Structures: make(map[Cell]Structure),

		Rand:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		RandomBuffer: make([]float64, n),
	}
	for i := range s.HumidityGrid {
		s.HumidityGrid[i] = 0.5
	}
	for i := range s.Porosity {
		s.Porosity[i] = 45
		s.PermeabilityVert[i] = 50
		s.PermeabilityHoriz[i] = 50
	}
	s.Cache = connectivity.New(s.Terrain)
	s.Weather = NewWeather()
	return s
}

func (s *State) idx2(x, y int) int { return gridspace.Index2D(x, y, s.Width) }

// InBounds reports whether (x,y) lies on the grid.
func (s *State) InBounds(x, y int) bool {
	return gridspace.InBounds(x, y, s.Width, s.Height)
}

// Water returns the surface water volume at (x,y).
func (s *State) Water(x, y int) int32 { return s.WaterGrid[s.idx2(x, y)] }

// SetWater sets the surface water volume at (x,y), floored at zero.
func (s *State) SetWater(x, y int, v int32) {
	if v < 0 {
		v = 0
	}
	s.WaterGrid[s.idx2(x, y)] = v
}

// AddWater adds delta (possibly negative) to the surface water volume at
// (x,y), floored at zero, marking the cell active if it ends up wet.
func (s *State) AddWater(x, y int, delta int32) {
	i := s.idx2(x, y)
	next := s.WaterGrid[i] + delta
	if next < 0 {
		next = 0
	}
	s.WaterGrid[i] = next
	if next > 0 {
		s.MarkActive(x, y)
	}
}

// SubWater returns the stored water of a soil layer at (x,y).
func (s *State) SubWater(layer terrain.SoilLayer, x, y int) int32 {
	return s.SubsurfaceWater[gridspace.Index3D(int(layer), x, y, s.Width, s.Height)]
}

// SetSubWater sets the stored water of a soil layer at (x,y), floored at
// zero.
func (s *State) SetSubWater(layer terrain.SoilLayer, x, y int, v int32) {
	if v < 0 {
		v = 0
	}
	s.SubsurfaceWater[gridspace.Index3D(int(layer), x, y, s.Width, s.Height)] = v
}

// AddSubWater adds delta to the stored water of a soil layer at (x,y),
// floored at zero, and returns the amount actually applied.
func (s *State) AddSubWater(layer terrain.SoilLayer, x, y int, delta int32) int32 {
	i := gridspace.Index3D(int(layer), x, y, s.Width, s.Height)
	current := s.SubsurfaceWater[i]
	next := current + delta
	if next < 0 {
		next = 0
	}
	s.SubsurfaceWater[i] = next
	return next - current
}

// MaxStorage returns the maximum water volume a soil layer at (x,y) can
// hold, from its depth and the cell's porosity.
func (s *State) MaxStorage(layer terrain.SoilLayer, x, y int) int32 {
	return s.Terrain.MaxStorage(layer, x, y, s.Porosity[s.idx2(x, y)])
}

// IsTrenched reports whether (x,y) has been trenched.
func (s *State) IsTrenched(x, y int) bool {
	return s.TrenchGrid[s.idx2(x, y)] != 0
}

// MarkActive inserts (x,y) and its 4-neighbours into the active set -
// the eager insertion pour_water and Condenser output use so newly
// introduced water is swept up by the next surface phase without waiting
// a tick. The subsurface phase builds its own mask and does not read it.
func (s *State) MarkActive(x, y int) {
	s.Active[Cell{x, y}] = struct{}{}
	for _, off := range gridspace.VonNeumann4 {
		nx, ny := x+off[0], y+off[1]
		if s.InBounds(nx, ny) {
			s.Active[Cell{nx, ny}] = struct{}{}
		}
	}
}

// RebuildActiveFromWater replaces the active set with the 4-direction
// dilation of every cell holding positive surface water. Called after
// subsurface emergence so the next surface phase sees an accurate set;
// the subsurface phase itself tracks its own water-bearing active mask
// rather than reading or writing this one.
func (s *State) RebuildActiveFromWater() {
	next := make(map[Cell]struct{})
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.Water(x, y) <= 0 {
				continue
			}
			next[Cell{x, y}] = struct{}{}
			for _, off := range gridspace.VonNeumann4 {
				nx, ny := x+off[0], y+off[1]
				if s.InBounds(nx, ny) {
					next[Cell{nx, ny}] = struct{}{}
				}
			}
		}
	}
	s.Active = next
}

// IsActive reports whether (x,y) is in the active set.
func (s *State) IsActive(x, y int) bool {
	_, ok := s.Active[Cell{x, y}]
	return ok
}

// PushMessage appends a player-facing message, trimming the oldest
// entries once the bounded queue's capacity is exceeded.
func (s *State) PushMessage(msg string) {
	s.Messages = append(s.Messages, msg)
	if len(s.Messages) > simconfig.MessageQueueCapacity {
		s.Messages = s.Messages[len(s.Messages)-simconfig.MessageQueueCapacity:]
	}
}
