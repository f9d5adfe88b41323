// Package simconfig centralizes tuning constants for the simulation domain.
//
// Mirrors the split the engine was distilled from: grid geometry and rate
// constants live here, transport/storage configuration lives in the
// individual cmd/ binaries that read it from the environment.
package simconfig

const (
	GridWidth  = 180
	GridHeight = 135

	// DepthUnitMM is the real-world depth represented by one layer unit.
	DepthUnitMM = 100

	SurfaceFlowRate      = 50
	SurfaceFlowThreshold = 1
	SurfaceSeepageRate   = 20

	SubsurfaceFlowRate      = 8
	SubsurfaceFlowThreshold = 1
	VerticalSeepageRate     = 30
	CapillaryRiseRate       = 5

	RainWellspringMultiplier = 200

	TrenchEvapReduction   = 40 // percent of unmodified loss retained
	CisternEvapReduction  = 60
	TrenchFlowMultiplier  = 1.5
	TrenchSlopeDrop       = 4
	MinBedrockElevation   = -200
	LowerRaiseStepUnits   = 2

	DayLength = 1000
	HeatMin   = 60
	HeatMax   = 140

	RainIntervalMin = 900
	RainIntervalMax = 1500
	RainDurationMin = 150
	RainDurationMax = 400

	MoistureEMAAlpha = 0.1

	HumidityDriftRate = 0.01
	WindDriftRate     = 0.025
	DiffusionSigma    = 1.5
	HeatHumidityFactor = 1.0 / 1000.0

	HumidityMin = 0.1
	HumidityMax = 0.9
	WindComponentMin = -0.7
	WindComponentMax = 0.7
	WindNegligible   = 0.01

	MessageQueueCapacity = 100

	// CapillaryRiseTrigger is the water_grid threshold below which capillary
	// rise may still contribute this tick (strict "<", not "<=").
	CapillaryRiseTrigger = 10

	// CisternTransferRate caps how much of a cell's standing water a
	// cistern can draw down in a single tick, as a percent of stock.
	CisternTransferRate = 25
	// CisternLossRate is the percent of stored water a cistern leaks per
	// tick at Heat==100; it scales linearly with heat.
	CisternLossRate = 2

	// CollectWaterCap is the most a single CollectWater command may draw
	// from one cell into a player's Inventory.
	CollectWaterCap int32 = 500
	// PourWaterCap is the most a single PourWater command may deposit
	// onto one cell from a player's Inventory.
	PourWaterCap int32 = 500

	// BuildStructureScrapCost is the Scrap charge for placing a Depot or
	// Condenser; Cistern and Planter cost twice this (see playerops.go's
	// buildCosts table).
	BuildStructureScrapCost int32 = 20
)

// SoilLayer identifies one of the six fixed terrain horizons, bottom to top.
type SoilLayer int

const (
	Bedrock SoilLayer = iota
	Regolith
	Subsoil
	Eluviation
	Topsoil
	Organics
	NumLayers
)

func (l SoilLayer) String() string {
	switch l {
	case Bedrock:
		return "bedrock"
	case Regolith:
		return "regolith"
	case Subsoil:
		return "subsoil"
	case Eluviation:
		return "eluviation"
	case Topsoil:
		return "topsoil"
	case Organics:
		return "organics"
	default:
		return "unknown"
	}
}

// ExposedScanOrder lists soil layers top-down, the order every "find the
// exposed layer" scan in the engine uses. Bedrock is deliberately excluded:
// it is never "exposed" in the sense these scans care about.
var ExposedScanOrder = [...]SoilLayer{Organics, Topsoil, Eluviation, Subsoil, Regolith}

// UnitsToMeters converts a layer-depth/elevation unit count to meters.
func UnitsToMeters(units int32) float64 {
	return float64(units) * DepthUnitMM / 1000.0
}
