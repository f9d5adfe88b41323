// Package connectivity implements the subsurface adjacency cache: for
// every (source layer, cardinal direction, target layer) triple, a
// per-cell boolean "can water cross here" mask and a float32 contact
// fraction used to scale how much of a layer's cross-section actually
// touches its neighbour.
//
// Grounded on the underground package's column-stratum model
// (StrataLayer.ContainsDepth/Thickness) generalized from a single column
// to a full grid, and on the subsurface simulator's own rebuild discipline
// (two modes, published stats) described for this engine.
package connectivity

import (
	"terraform-engine/internal/debug"
	"terraform-engine/internal/gridspace"
	"terraform-engine/internal/metrics"
	"terraform-engine/internal/simconfig"
	"terraform-engine/internal/terrain"
)

// Key identifies one adjacency slice of the cache.
type Key struct {
	SrcLayer terrain.SoilLayer
	TgtLayer terrain.SoilLayer
	Dx, Dy   int
}

type entry struct {
	canConnect      []bool
	contactFraction []float32
}

// Mode selects how the cache decides it needs rebuilding.
type Mode int

const (
	// InvalidateOnly rebuilds lazily, only after a terrain mutation has
	// marked the cache dirty. This is the default for normal play.
	InvalidateOnly Mode = iota
	// PeriodicRebuild additionally forces a full rebuild every N ticks
	// regardless of dirty state. Debug-only: it exists to catch drift
	// between the cache and the terrain it describes, at a performance
	// cost no release build should pay.
	PeriodicRebuild
)

// Stats tracks cache activity for operational visibility.
type Stats struct {
	Rebuilds int64
	Hits     int64
	Misses   int64
}

// Cache is the connectivity cache for one terrain grid.
type Cache struct {
	grid *terrain.Grid

	mode          Mode
	periodicEvery int64

	dirty bool
	data  map[Key]entry
	stats Stats
}

// New creates an invalidate-only cache bound to grid. The cache starts
// dirty: the first EnsureValid call always performs a full build.
func New(grid *terrain.Grid) *Cache {
	return &Cache{
		grid:  grid,
		mode:  InvalidateOnly,
		dirty: true,
		data:  make(map[Key]entry),
	}
}

// SetPeriodicRebuild switches the cache into debug periodic-rebuild mode,
// forcing a full rebuild every n ticks.
func (c *Cache) SetPeriodicRebuild(everyNTicks int64) {
	c.mode = PeriodicRebuild
	c.periodicEvery = everyNTicks
}

// Invalidate marks the cache dirty. Called after the engine's terrain
// mutations (LowerGround, RaiseGround, DigTrench, a Planter harvest, and
// snapshot.Apply); terrain.Grid's own setters do not call it.
func (c *Cache) Invalidate() {
	c.dirty = true
}

// EnsureValid rebuilds the cache if required by the current mode and
// tick count. The orchestrator calls this immediately before the
// subsurface phase, per the fixed tick ordering.
func (c *Cache) EnsureValid(tick int64) {
	needsRebuild := c.dirty
	if c.mode == PeriodicRebuild && c.periodicEvery > 0 && tick%c.periodicEvery == 0 {
		needsRebuild = true
	}
	if !needsRebuild {
		return
	}
	c.rebuild()
	c.dirty = false
	c.stats.Rebuilds++
	debug.Log(debug.Connectivity, "connectivity cache rebuilt at tick %d (rebuild #%d)", tick, c.stats.Rebuilds)
}

// Stats returns a copy of the cache's current activity counters.
func (c *Cache) Stats() Stats { return c.stats }

func (c *Cache) rebuild() {
	c.data = make(map[Key]entry, 100)
	w, h := c.grid.Width, c.grid.Height

	for src := terrain.Regolith; src < simconfig.NumLayers; src++ {
		for tgt := terrain.Regolith; tgt < simconfig.NumLayers; tgt++ {
			for _, off := range gridspace.VonNeumann4 {
				key := Key{SrcLayer: src, TgtLayer: tgt, Dx: off[0], Dy: off[1]}
				c.data[key] = c.computeEntry(src, tgt, off[0], off[1], w, h)
			}
		}
	}
}

func (c *Cache) computeEntry(src, tgt terrain.SoilLayer, dx, dy, w, h int) entry {
	e := entry{
		canConnect:      make([]bool, w*h),
		contactFraction: make([]float32, w*h),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := gridspace.Index2D(x, y, w)
			nx, ny := x+dx, y+dy
			if !gridspace.InBounds(nx, ny, w, h) {
				continue
			}
			srcTop := c.grid.LayerTopElevation(src, x, y)
			srcBottom := c.grid.LayerBottomElevation(src, x, y)
			tgtTop := c.grid.LayerTopElevation(tgt, nx, ny)
			tgtBottom := c.grid.LayerBottomElevation(tgt, nx, ny)

			overlap := min32(srcTop, tgtTop) - max32(srcBottom, tgtBottom)
			if overlap <= 0 {
				continue
			}
			e.canConnect[i] = true
			thickness := srcTop - srcBottom
			if thickness > 0 {
				e.contactFraction[i] = float32(overlap) / float32(thickness)
			}
		}
	}
	return e
}

// CanConnect reports whether water may cross from (src layer, x, y) to
// (tgt layer, x+dx, y+dy). Returns false and counts a miss when the cache
// holds no entry for the key, as before the first EnsureValid call.
func (c *Cache) CanConnect(src, tgt terrain.SoilLayer, x, y, dx, dy int) bool {
	e, ok := c.data[Key{SrcLayer: src, TgtLayer: tgt, Dx: dx, Dy: dy}]
	if !ok {
		c.stats.Misses++
		metrics.RecordCacheMiss()
		return false
	}
	c.stats.Hits++
	metrics.RecordCacheHit()
	return e.canConnect[gridspace.Index2D(x, y, c.grid.Width)]
}

// ContactFraction returns the fraction of src's cross-section that
// overlaps tgt across the given cardinal offset, 0 when disconnected.
func (c *Cache) ContactFraction(src, tgt terrain.SoilLayer, x, y, dx, dy int) float32 {
	e, ok := c.data[Key{SrcLayer: src, TgtLayer: tgt, Dx: dx, Dy: dy}]
	if !ok {
		return 0
	}
	return e.contactFraction[gridspace.Index2D(x, y, c.grid.Width)]
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
