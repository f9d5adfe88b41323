package simstate

import (
	"math"
	"math/rand/v2"

	"terraform-engine/internal/simconfig"
)

// Weather tracks the day/night cycle and the rain timer. Grounded on
// original_source/world/weather.py's WeatherSystem dataclass: turn_in_day
// freezes the instant night falls (it does not wrap on its own), heat is a
// plain field recomputed only while the sun is up, and the rain timer counts
// down every tick regardless of day or night.
type Weather struct {
	Day       int32
	TurnInDay int32
	IsNight   bool
	Heat      float64

	Raining   bool
	RainTimer int32
}

// NewWeather returns a Weather starting at dawn of day 1 with a fresh rain
// countdown, matching the original model's dataclass defaults.
func NewWeather() Weather {
	return Weather{
		Day:       1,
		Heat:      100,
		RainTimer: 1200,
	}
}

// Advance moves the clock forward one tick. During the day it increments
// turn_in_day and recomputes Heat from the triangular day/night curve; once
// IsNight latches, both freeze until EndDay resets them. The rain timer
// counts down unconditionally, flipping Raining and rerolling itself from
// rng when it expires.
func (w *Weather) Advance(rng *rand.Rand) {
	if !w.IsNight {
		w.TurnInDay++
		var dayFactor float64
		if simconfig.DayLength > 1 {
			dayFactor = 1 - math.Abs((float64(w.TurnInDay)/float64(simconfig.DayLength-1))*2-1)
		} else {
			dayFactor = 1.0
		}
		w.Heat = simconfig.HeatMin + dayFactor*(simconfig.HeatMax-simconfig.HeatMin)
		if w.TurnInDay >= simconfig.DayLength {
			w.IsNight = true
			w.Heat = simconfig.HeatMin
		}
	}

	w.RainTimer--
	if w.Raining {
		if w.RainTimer <= 0 {
			w.Raining = false
			w.RainTimer = randRange(rng, simconfig.RainIntervalMin, simconfig.RainIntervalMax)
		}
		return
	}
	if w.RainTimer <= 0 {
		w.Raining = true
		w.RainTimer = randRange(rng, simconfig.RainDurationMin, simconfig.RainDurationMax)
	}
}

// EndDay resets the clock to dawn of the next day. It refuses (returning
// false) unless it is currently night, matching the original model's "can
// only rest at night" refusal.
func (w *Weather) EndDay() bool {
	if !w.IsNight {
		return false
	}
	w.Day++
	w.TurnInDay = 0
	w.IsNight = false
	w.Heat = 100
	return true
}

func randRange(rng *rand.Rand, min, max int32) int32 {
	if max <= min {
		return min
	}
	return min + rng.Int32N(max-min)
}
