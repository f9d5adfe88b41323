package terrain

import (
	"terraform-engine/internal/gridspace"
	"terraform-engine/internal/simconfig"
)

// Grid holds the dense terrain arrays for the whole map: bedrock
// elevation, per-layer depth, and per-layer material name. Layer 0
// (Bedrock) is reserved and always zero-depth; Layers[1:6] are addressed
// by gridspace.Index3D(layer, x, y, Width, Height).
type Grid struct {
	Width, Height int

	BedrockBase []int32 // [W*H]
	Layers      []int32 // [6*W*H]
	Materials   []string
}

// New allocates a Width×Height terrain grid with every soil layer empty
// and bedrock at elevation 0.
func New(width, height int) *Grid {
	return &Grid{
		Width:       width,
		Height:      height,
		BedrockBase: make([]int32, width*height),
		Layers:      make([]int32, int(simconfig.NumLayers)*width*height),
		Materials:   make([]string, int(simconfig.NumLayers)*width*height),
	}
}

func (g *Grid) idx2(x, y int) int { return gridspace.Index2D(x, y, g.Width) }
func (g *Grid) idx3(layer SoilLayer, x, y int) int {
	return gridspace.Index3D(int(layer), x, y, g.Width, g.Height)
}

// LayerDepth returns the stored depth of a layer at (x,y), in units.
func (g *Grid) LayerDepth(layer SoilLayer, x, y int) int32 {
	return g.Layers[g.idx3(layer, x, y)]
}

// SetLayerDepth sets the depth of a layer at (x,y), clearing the material
// name when the layer becomes empty.
func (g *Grid) SetLayerDepth(layer SoilLayer, x, y int, depth int32) {
	if depth < 0 {
		depth = 0
	}
	i := g.idx3(layer, x, y)
	g.Layers[i] = depth
	if depth == 0 {
		g.Materials[i] = ""
	}
}

// AddLayerDepth adds (or removes, if negative) depth to a layer, floored
// at zero, and returns the amount actually applied.
func (g *Grid) AddLayerDepth(layer SoilLayer, x, y int, delta int32) int32 {
	i := g.idx3(layer, x, y)
	current := g.Layers[i]
	next := current + delta
	if next < 0 {
		next = 0
	}
	applied := next - current
	g.Layers[i] = next
	if next == 0 {
		g.Materials[i] = ""
	} else if g.Materials[i] == "" {
		g.Materials[i] = DefaultMaterialFor(layer)
	}
	return applied
}

// Material returns the material name occupying a layer at (x,y).
func (g *Grid) Material(layer SoilLayer, x, y int) string {
	return g.Materials[g.idx3(layer, x, y)]
}

// SetMaterial overrides the material name of a non-empty layer.
func (g *Grid) SetMaterial(layer SoilLayer, x, y int, name string) {
	g.Materials[g.idx3(layer, x, y)] = name
}

// ExposedLayer returns the topmost non-empty soil layer at (x,y), scanning
// ORGANICS down to REGOLITH, and ok=false if every soil layer is empty
// (bedrock exposed).
func (g *Grid) ExposedLayer(x, y int) (layer SoilLayer, ok bool) {
	for _, l := range simconfig.ExposedScanOrder {
		if g.LayerDepth(l, x, y) > 0 {
			return l, true
		}
	}
	return 0, false
}

// ExposedOrDefault returns the exposed layer, or fallback if bedrock is
// exposed - the "layer to deposit into" a raise operation uses.
func (g *Grid) ExposedOrDefault(x, y int, fallback SoilLayer) SoilLayer {
	if l, ok := g.ExposedLayer(x, y); ok {
		return l
	}
	return fallback
}

// SoilHeight returns the summed depth of every soil layer at (x,y).
func (g *Grid) SoilHeight(x, y int) int32 {
	var total int32
	for l := simconfig.Regolith; l < simconfig.NumLayers; l++ {
		total += g.LayerDepth(l, x, y)
	}
	return total
}

// Elevation returns bedrock_base + the summed soil depth at (x,y).
func (g *Grid) Elevation(x, y int) int32 {
	return g.BedrockBase[g.idx2(x, y)] + g.SoilHeight(x, y)
}

// LayerBottomElevation returns the elevation at the bottom face of a
// layer, i.e. the top of everything beneath it.
func (g *Grid) LayerBottomElevation(layer SoilLayer, x, y int) int32 {
	elev := g.BedrockBase[g.idx2(x, y)]
	for l := simconfig.Regolith; l < layer; l++ {
		elev += g.LayerDepth(l, x, y)
	}
	return elev
}

// LayerTopElevation returns the elevation at the top face of a layer.
func (g *Grid) LayerTopElevation(layer SoilLayer, x, y int) int32 {
	return g.LayerBottomElevation(layer, x, y) + g.LayerDepth(layer, x, y)
}

// MaxStorage returns the maximum water volume (in units) a layer at
// (x,y) can hold, derived from its depth and porosity.
func (g *Grid) MaxStorage(layer SoilLayer, x, y int, porosity int32) int32 {
	depth := g.LayerDepth(layer, x, y)
	return depth * porosity / 100
}
