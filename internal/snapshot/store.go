// Package snapshot persists a full simstate.State to Postgres and
// restores it, the way the teacher's repository package persists a world's
// relational rows - except here there is exactly one aggregate (the grid),
// so the table holds one row per grid ID rather than one per entity.
//
// Grounded on the sibling repository.PostgresSpatialRepository's
// pgxpool-driven CRUD shape and on waterpool.Pool's own Snapshot/Restore
// split, generalized from one reservoir to the whole simulation aggregate.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"terraform-engine/internal/metrics"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/waterpool"
)

// StructureRecord is a Structure keyed by its cell, flattened for JSON
// encoding since simstate.Cell is not a valid JSON object key.
type StructureRecord struct {
	X      int                   `json:"x"`
	Y      int                   `json:"y"`
	Kind   simstate.StructureKind `json:"kind"`
	Stored int32                 `json:"stored"`
	Growth int32                 `json:"growth"`
}

// Document is the serializable form of a simstate.State, one row's worth
// of payload in the grid_snapshots table.
type Document struct {
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Tick          int64  `json:"tick"`

	BedrockBase []int32  `json:"bedrock_base"`
	Layers      []int32  `json:"layers"`
	Materials   []string `json:"materials"`

	WaterGrid         []int32   `json:"water_grid"`
	SubsurfaceWater   []int32   `json:"subsurface_water"`
	PermeabilityVert  []int32   `json:"permeability_vert"`
	PermeabilityHoriz []int32   `json:"permeability_horiz"`
	Porosity          []int32   `json:"porosity"`
	WellspringGrid    []int32   `json:"wellspring_grid"`
	HumidityGrid      []float32 `json:"humidity_grid"`
	WindGrid          []float32 `json:"wind_grid"`
	TemperatureGrid   []float32 `json:"temperature_grid"`
	MoistureGrid      []float64 `json:"moisture_grid"`
	KindGrid          []string  `json:"kind_grid"`
	TrenchGrid        []uint8   `json:"trench_grid"`
	WaterPassageGrid  []uint8   `json:"water_passage_grid"`
	WindExposureGrid  []float32 `json:"wind_exposure_grid"`

	Pool       waterpool.Snapshot `json:"pool"`
	Weather    simstate.Weather   `json:"weather"`
	Inventory  simstate.Inventory `json:"inventory"`
	Structures []StructureRecord  `json:"structures"`
}

// ToDocument captures s's current state. The active-cell set and the
// per-tick scratch grids (CapillaryRiseGrid, SurfaceOverflowGrid,
// RandomBuffer) are not persisted: Apply rebuilds the active set from the
// water grid, and each scratch grid is recomputed by the phase that uses it.
func ToDocument(s *simstate.State) Document {
	d := Document{
		Width:  s.Width,
		Height: s.Height,
		Tick:   s.Tick,

		BedrockBase: s.Terrain.BedrockBase,
		Layers:      s.Terrain.Layers,
		Materials:   s.Terrain.Materials,

		WaterGrid:         s.WaterGrid,
		SubsurfaceWater:   s.SubsurfaceWater,
		PermeabilityVert:  s.PermeabilityVert,
		PermeabilityHoriz: s.PermeabilityHoriz,
		Porosity:          s.Porosity,
		WellspringGrid:    s.WellspringGrid,
		HumidityGrid:      s.HumidityGrid,
		WindGrid:          s.WindGrid,
		TemperatureGrid:   s.TemperatureGrid,
		MoistureGrid:      s.MoistureGrid,
		KindGrid:          s.KindGrid,
		TrenchGrid:        s.TrenchGrid,
		WaterPassageGrid:  s.WaterPassageGrid,
		WindExposureGrid:  s.WindExposureGrid,

		Pool:      s.Pool.Snapshot(),
		Weather:   s.Weather,
		Inventory: s.Inventory,
	}
	for cell, st := range s.Structures {
		d.Structures = append(d.Structures, StructureRecord{
			X: cell.X, Y: cell.Y,
			Kind: st.Kind, Stored: st.Stored, Growth: st.Growth,
		})
	}
	return d
}

// Apply overwrites s in place with d. s must already be sized Width x
// Height to match d - Apply does not reallocate the aggregate, it only
// replaces grid contents, mirroring waterpool.Pool.Restore's in-place
// style.
func Apply(s *simstate.State, d Document) {
	s.Tick = d.Tick

	copy(s.Terrain.BedrockBase, d.BedrockBase)
	copy(s.Terrain.Layers, d.Layers)
	copy(s.Terrain.Materials, d.Materials)

	copy(s.WaterGrid, d.WaterGrid)
	copy(s.SubsurfaceWater, d.SubsurfaceWater)
	copy(s.PermeabilityVert, d.PermeabilityVert)
	copy(s.PermeabilityHoriz, d.PermeabilityHoriz)
	copy(s.Porosity, d.Porosity)
	copy(s.WellspringGrid, d.WellspringGrid)
	copy(s.HumidityGrid, d.HumidityGrid)
	copy(s.WindGrid, d.WindGrid)
	copy(s.TemperatureGrid, d.TemperatureGrid)
	copy(s.MoistureGrid, d.MoistureGrid)
	copy(s.KindGrid, d.KindGrid)
	copy(s.TrenchGrid, d.TrenchGrid)
	copy(s.WaterPassageGrid, d.WaterPassageGrid)
	copy(s.WindExposureGrid, d.WindExposureGrid)

	s.Pool.Restore(d.Pool)
	s.Weather = d.Weather
	s.Inventory = d.Inventory

	s.Structures = make(map[simstate.Cell]simstate.Structure, len(d.Structures))
	for _, r := range d.Structures {
		s.Structures[simstate.Cell{X: r.X, Y: r.Y}] = simstate.Structure{
			Kind: r.Kind, Stored: r.Stored, Growth: r.Growth,
		}
	}
	s.Cache.Invalidate()
	s.RebuildActiveFromWater()
}

// Store persists and restores grid snapshots in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an already-connected pgxpool.Pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the grid_snapshots table if it does not already
// exist. Called once at startup; the engine has no separate migration
// tool.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS grid_snapshots (
			grid_id    TEXT PRIMARY KEY,
			tick       BIGINT NOT NULL,
			payload    JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}

// Save upserts the current document for gridID.
func (s *Store) Save(ctx context.Context, gridID string, d Document) error {
	start := time.Now()
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal grid snapshot: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO grid_snapshots (grid_id, tick, payload, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (grid_id) DO UPDATE
		SET tick = EXCLUDED.tick, payload = EXCLUDED.payload, updated_at = now()
	`, gridID, d.Tick, payload)
	metrics.RecordDBQuery("upsert", "grid_snapshots", time.Since(start))
	return err
}

// Load fetches the most recently saved document for gridID. ok is false
// if no snapshot has ever been saved for that ID - callers should fall
// back to a freshly generated grid, not treat it as an error.
func (s *Store) Load(ctx context.Context, gridID string) (d Document, ok bool, err error) {
	start := time.Now()
	var payload []byte
	row := s.pool.QueryRow(ctx, `SELECT payload FROM grid_snapshots WHERE grid_id = $1`, gridID)
	err = row.Scan(&payload)
	metrics.RecordDBQuery("select", "grid_snapshots", time.Since(start))
	if err != nil {
		return Document{}, false, nil
	}
	if err := json.Unmarshal(payload, &d); err != nil {
		return Document{}, false, fmt.Errorf("unmarshal grid snapshot: %w", err)
	}
	return d, true, nil
}
