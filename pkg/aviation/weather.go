// pkg/aviation/weather.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "github.com/desponda/tracon-sim/pkg/geo"

// WindLayer is one entry of a WeatherState's wind-aloft table.
type WindLayer struct {
	AltitudeFt float64
	DirectionDeg float64 // true
	SpeedKt    float64
	GustsKt    float64 // 0 if none
}

// WeatherState is the session's current weather, mutated only between
// ticks by an external weather driver or at session start.
type WeatherState struct {
	Winds      []WindLayer
	AltimeterInHg float64
	TemperatureC  float64
	VisibilitySM  float64
	CeilingFtAGL  float64 // 0 means "no ceiling reported"
	HasCeiling    bool
}

// ClampPlayable enforces that weather always admits at least ILS minimums,
// regardless of what a weather generator produced.
func (w *WeatherState) ClampPlayable() {
	const minCeiling = 250
	const minVis = 0.5
	if w.HasCeiling && w.CeilingFtAGL < minCeiling {
		w.CeilingFtAGL = minCeiling
	}
	if w.VisibilitySM < minVis {
		w.VisibilitySM = minVis
	}
}

// WindAt returns the (direction, speed) pair of the wind layer nearest to
// the given altitude; values between layers are not interpolated.
func (w WeatherState) WindAt(altitudeFt float64) (directionDeg, speedKt float64) {
	if len(w.Winds) == 0 {
		return 0, 0
	}
	best := w.Winds[0]
	bestDelta := geo.Abs(altitudeFt - best.AltitudeFt)
	for _, layer := range w.Winds[1:] {
		d := geo.Abs(altitudeFt - layer.AltitudeFt)
		if d < bestDelta {
			best, bestDelta = layer, d
		}
	}
	return best.DirectionDeg, best.SpeedKt
}

// WindModel is the interface the physics and navigation layers use to
// query wind; it is implemented by WeatherState and can also be
// implemented by a test double for deterministic unit tests.
type WindModel interface {
	// GetWindVector returns the wind's velocity vector (nm/s, x=east,
	// y=north) at the given position/altitude.
	GetWindVector(p geo.Point, altitudeFt float64) geo.Vec2
	// AverageWindVector returns a representative wind vector used for
	// crab-angle anticipation in navigation (not position integration).
	AverageWindVector() geo.Vec2
}

type weatherWind struct {
	w *WeatherState
}

func NewWindModel(w *WeatherState) WindModel { return weatherWind{w: w} }

func (ww weatherWind) GetWindVector(p geo.Point, altitudeFt float64) geo.Vec2 {
	dir, spd := ww.w.WindAt(altitudeFt)
	// Wind direction is "from"; the vector the aircraft is pushed along is
	// the reciprocal.
	v := geo.HeadingVector(geo.NormalizeHeading(dir + 180)).Scale(spd / 3600)
	return v
}

func (ww weatherWind) AverageWindVector() geo.Vec2 {
	if len(ww.w.Winds) == 0 {
		return geo.Vec2{}
	}
	dir, spd := ww.w.Winds[0].DirectionDeg, ww.w.Winds[0].SpeedKt
	return geo.HeadingVector(geo.NormalizeHeading(dir + 180)).Scale(spd / 3600)
}
