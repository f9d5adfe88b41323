// Package orchestrator runs the fixed per-tick phase order: weather and
// structures advance first, then surface flow or seepage depending on
// cadence, subsurface hydraulics every fourth tick, evaporation every
// tick, atmosphere diffusion every other tick, and wind-exposure every
// tenth tick.
//
// Grounded on ecosystem/simulation's StepConfig/StepResult shape (a
// config struct of cadence/feature toggles, a result struct reporting
// what happened) combined with internal/world/catchup.go's ticker
// goroutine and zerolog logging style.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"terraform-engine/internal/atmosphere"
	"terraform-engine/internal/evaporation"
	"terraform-engine/internal/simstate"
	"terraform-engine/internal/subsurface"
	"terraform-engine/internal/surface"
)

// StepResult reports which sub-phases ran during a tick, for metrics and
// logging.
type StepResult struct {
	Tick             int64
	RanSurfaceFlow   bool
	RanSurfaceSeep   bool
	RanSubsurface    bool
	RanAtmosphere    bool
	RanWindExposure  bool
}

// Step advances the simulation by exactly one tick, following the fixed
// phase order: weather, then structures, then surface (flow or seepage
// depending on cadence), then subsurface/evaporation/atmosphere/wind on
// their own cadences. It does not sleep or gate on wall-clock time; callers
// that want real-time pacing wrap Step in a ticker (see Runner).
func Step(s *simstate.State) StepResult {
	s.Weather.Advance(s.Rand)
	s.StepStructures()

	turn := s.Weather.TurnInDay
	result := StepResult{Tick: s.Tick}

	if turn%2 == 0 {
		surface.Flow(s)
		result.RanSurfaceFlow = true
	} else {
		surface.SeepAndUpdateMoisture(s)
		result.RanSurfaceSeep = true
	}

	if turn%4 == 1 {
		s.Cache.EnsureValid(s.Tick)
		subsurface.Step(s)
		result.RanSubsurface = true
	}

	evaporation.Step(s)

	if turn%2 == 0 {
		atmosphere.Step(s)
		result.RanAtmosphere = true
	}

	if turn%10 == 0 {
		windExposureTick(s)
		result.RanWindExposure = true
	}

	s.Tick++

	return result
}

// windExposureTick updates each cell's wind-exposure accumulator from the
// current wind magnitude; erosion driven by this accumulator is out of
// scope (see the engine's recorded open question on downstream erosion).
func windExposureTick(s *simstate.State) {
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			i := y*s.Width + x
			mag := atmosphere.WindMagnitude(s, x, y)
			s.WindExposureGrid[i] = s.WindExposureGrid[i]*0.9 + float32(mag)*0.1
		}
	}
}

// Runner drives Step on a real-time ticker, the way TickerManager drives
// the teacher's per-world tick loop: a stop channel, a background
// goroutine, and a snapshot mutex so readers never observe a tick
// mid-flight.
type Runner struct {
	state    *simstate.State
	interval time.Duration

	mu      sync.RWMutex
	stopCh  chan struct{}
	stopped chan struct{}

	onTick func(*simstate.State, StepResult)
}

// NewRunner builds a Runner over state, ticking every interval.
func NewRunner(state *simstate.State, interval time.Duration) *Runner {
	return &Runner{
		state:    state,
		interval: interval,
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// OnTick registers fn to run once per tick, immediately after Step and
// still under the runner's write lock. fn must not block - the
// WebSocket hub's subscriber only enqueues a delta onto a channel, it
// never writes to a socket from here.
func (r *Runner) OnTick(fn func(*simstate.State, StepResult)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = fn
}

// Run blocks, stepping the simulation every interval until ctx is
// cancelled or Stop is called.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.stopped)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("orchestrator runner stopping: context cancelled")
			return
		case <-r.stopCh:
			log.Info().Msg("orchestrator runner stopping: stop requested")
			return
		case <-ticker.C:
			r.mu.Lock()
			result := Step(r.state)
			onTick := r.onTick
			if onTick != nil {
				onTick(r.state, result)
			}
			r.mu.Unlock()
			log.Debug().
				Int64("tick", result.Tick).
				Bool("surface_flow", result.RanSurfaceFlow).
				Bool("subsurface", result.RanSubsurface).
				Bool("atmosphere", result.RanAtmosphere).
				Msg("tick complete")
		}
	}
}

// Stop signals Run to return and blocks until it has.
func (r *Runner) Stop() {
	close(r.stopCh)
	<-r.stopped
}

// Snapshot runs fn with a read lock held, the only way outside code may
// safely observe state between ticks.
func (r *Runner) Snapshot(fn func(*simstate.State)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.state)
}

// Mutate runs fn with the write lock held, the only way outside code
// (the HTTP command API) may safely apply a player command between
// ticks without racing Step.
func (r *Runner) Mutate(fn func(*simstate.State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.state)
}
