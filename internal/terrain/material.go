// Package terrain implements the dense terrain/material grids (bedrock
// base, per-layer depth, per-layer material) and the operations that read
// or mutate them: exposed-layer lookup, elevation, and the raw lower/raise
// primitives that player actions build on.
package terrain

import "terraform-engine/internal/simconfig"

type SoilLayer = simconfig.SoilLayer

const (
	Bedrock    = simconfig.Bedrock
	Regolith   = simconfig.Regolith
	Subsoil    = simconfig.Subsoil
	Eluviation = simconfig.Eluviation
	Topsoil    = simconfig.Topsoil
	Organics   = simconfig.Organics
)

// Material describes one entry in the terrain material palette. Every
// percentage field is an integer 0-100, matching the scaling convention
// the rest of the engine uses for permeability and porosity.
type Material struct {
	Name            string
	PermeabilityV   int32
	PermeabilityH   int32
	Porosity        int32
	Excavatable     bool
	EvaporationMult float64
	DisplayColor    string
}

// Palette is the fixed material table. Bedrock is listed for completeness
// even though it never occupies a terrain_layers slot (layer 0 is
// reserved and always zero-depth).
var Palette = map[string]Material{
	"bedrock": {Name: "bedrock", PermeabilityV: 0, PermeabilityH: 0, Porosity: 0, Excavatable: false, EvaporationMult: 1.0, DisplayColor: "#4a4a4a"},
	"gravel":  {Name: "gravel", PermeabilityV: 70, PermeabilityH: 60, Porosity: 35, Excavatable: true, EvaporationMult: 1.0, DisplayColor: "#8a8070"},
	"clay":    {Name: "clay", PermeabilityV: 15, PermeabilityH: 10, Porosity: 40, Excavatable: true, EvaporationMult: 0.8, DisplayColor: "#9c6b4f"},
	"sand":    {Name: "sand", PermeabilityV: 90, PermeabilityH: 85, Porosity: 38, Excavatable: true, EvaporationMult: 1.3, DisplayColor: "#d8c08a"},
	"loam":    {Name: "loam", PermeabilityV: 55, PermeabilityH: 50, Porosity: 45, Excavatable: true, EvaporationMult: 1.0, DisplayColor: "#6b4f33"},
	"silt":    {Name: "silt", PermeabilityV: 40, PermeabilityH: 35, Porosity: 42, Excavatable: true, EvaporationMult: 1.1, DisplayColor: "#a89a7a"},
	"topsoil": {Name: "topsoil", PermeabilityV: 45, PermeabilityH: 45, Porosity: 50, Excavatable: true, EvaporationMult: 1.0, DisplayColor: "#4f3b24"},
	"humus":   {Name: "humus", PermeabilityV: 60, PermeabilityH: 55, Porosity: 60, Excavatable: true, EvaporationMult: 0.9, DisplayColor: "#2e2114"},
}

// DefaultMaterialFor returns the material a freshly-deposited layer takes
// on when no material name is already present, keyed by the layer it was
// deposited into.
func DefaultMaterialFor(layer SoilLayer) string {
	switch layer {
	case Regolith:
		return "gravel"
	case Subsoil:
		return "clay"
	case Eluviation:
		return "silt"
	case Topsoil:
		return "topsoil"
	case Organics:
		return "humus"
	default:
		return "gravel"
	}
}
