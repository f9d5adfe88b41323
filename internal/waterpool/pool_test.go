package waterpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWellspringDrawClampsToAvailable(t *testing.T) {
	p := New(50)

	got := p.WellspringDraw(80)

	assert.Equal(t, int64(50), got, "draw from a depleted pool must return exactly what remained")
	assert.Equal(t, int64(0), p.TotalVolume())
}

func TestWellspringDrawUnderBudget(t *testing.T) {
	p := New(50)

	got := p.WellspringDraw(20)

	assert.Equal(t, int64(20), got)
	assert.Equal(t, int64(30), p.TotalVolume())
}

func TestEdgeRunoffCreditsAquifer(t *testing.T) {
	p := New(0)

	p.EdgeRunoff(12)

	assert.Equal(t, int64(12), p.TotalVolume())
}

func TestEvaporateAndRainRoundTrip(t *testing.T) {
	p := New(0)

	moved := p.Evaporate(40)
	assert.Equal(t, int64(40), moved)
	assert.Equal(t, int64(40), p.AtmosphericReserve())

	rained := p.Rain(100)
	assert.Equal(t, int64(40), rained, "rain must clamp to the available reserve")
	assert.Equal(t, int64(0), p.AtmosphericReserve())
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	p := New(10)
	p.Evaporate(5)

	snap := p.Snapshot()

	restored := New(0)
	restored.Restore(snap)

	assert.Equal(t, p.TotalVolume(), restored.TotalVolume())
	assert.Equal(t, p.AtmosphericReserve(), restored.AtmosphericReserve())
}

func TestNegativeAmountsAreNoOps(t *testing.T) {
	p := New(10)

	assert.Equal(t, int64(0), p.WellspringDraw(-5))
	assert.Equal(t, int64(10), p.TotalVolume())

	p.EdgeRunoff(-5)
	assert.Equal(t, int64(10), p.TotalVolume())
}
