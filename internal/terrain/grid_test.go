package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLayerDepthAssignsDefaultMaterial(t *testing.T) {
	g := New(2, 2)

	applied := g.AddLayerDepth(Topsoil, 0, 0, 5)

	require.Equal(t, int32(5), applied)
	assert.Equal(t, "topsoil", g.Material(Topsoil, 0, 0))
}

func TestAddLayerDepthClampsAtZero(t *testing.T) {
	g := New(2, 2)
	g.AddLayerDepth(Topsoil, 0, 0, 3)

	applied := g.AddLayerDepth(Topsoil, 0, 0, -10)

	assert.Equal(t, int32(-3), applied)
	assert.Equal(t, int32(0), g.LayerDepth(Topsoil, 0, 0))
	assert.Equal(t, "", g.Material(Topsoil, 0, 0), "material clears once a layer empties")
}

func TestExposedLayerScansTopDown(t *testing.T) {
	g := New(2, 2)
	g.AddLayerDepth(Regolith, 0, 0, 10)

	layer, ok := g.ExposedLayer(0, 0)
	require.True(t, ok)
	assert.Equal(t, Regolith, layer)

	g.AddLayerDepth(Topsoil, 0, 0, 2)
	layer, ok = g.ExposedLayer(0, 0)
	require.True(t, ok)
	assert.Equal(t, Topsoil, layer, "topsoil sits above regolith in scan order")
}

func TestExposedLayerFalseOnBareBedrock(t *testing.T) {
	g := New(2, 2)
	_, ok := g.ExposedLayer(1, 1)
	assert.False(t, ok)
}

func TestElevationSumsBedrockAndSoil(t *testing.T) {
	g := New(2, 2)
	g.BedrockBase[g.idx2(0, 0)] = 100
	g.AddLayerDepth(Regolith, 0, 0, 10)
	g.AddLayerDepth(Subsoil, 0, 0, 5)

	assert.Equal(t, int32(115), g.Elevation(0, 0))
}

func TestLayerElevationsStackInOrder(t *testing.T) {
	g := New(2, 2)
	g.AddLayerDepth(Regolith, 0, 0, 10)
	g.AddLayerDepth(Subsoil, 0, 0, 5)

	assert.Equal(t, int32(0), g.LayerBottomElevation(Regolith, 0, 0))
	assert.Equal(t, int32(10), g.LayerTopElevation(Regolith, 0, 0))
	assert.Equal(t, int32(10), g.LayerBottomElevation(Subsoil, 0, 0))
	assert.Equal(t, int32(15), g.LayerTopElevation(Subsoil, 0, 0))
}

func TestMaxStorageScalesWithPorosity(t *testing.T) {
	g := New(2, 2)
	g.AddLayerDepth(Regolith, 0, 0, 20)

	assert.Equal(t, int32(9), g.MaxStorage(Regolith, 0, 0, 45))
	assert.Equal(t, int32(0), g.MaxStorage(Regolith, 0, 0, 0))
}
