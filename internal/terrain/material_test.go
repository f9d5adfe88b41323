package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultMaterialForMatchesPaletteEntries(t *testing.T) {
	for _, layer := range []SoilLayer{Regolith, Subsoil, Eluviation, Topsoil, Organics} {
		name := DefaultMaterialFor(layer)
		_, ok := Palette[name]
		assert.True(t, ok, "default material %q for layer %v must exist in the palette", name, layer)
	}
}

func TestDefaultMaterialForBedrockFallsBackToGravel(t *testing.T) {
	assert.Equal(t, "gravel", DefaultMaterialFor(Bedrock))
}
