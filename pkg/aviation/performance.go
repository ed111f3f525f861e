// pkg/aviation/performance.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

// WakeCategory is the ICAO wake-turbulence class, driving in-trail
// separation minima.
type WakeCategory int

const (
	WakeSmall WakeCategory = iota
	WakeLarge
	WakeHeavy
	WakeSuper
)

func (w WakeCategory) String() string {
	switch w {
	case WakeSuper:
		return "SUPER"
	case WakeHeavy:
		return "HEAVY"
	case WakeLarge:
		return "LARGE"
	default:
		return "SMALL"
	}
}

// AircraftPerformance holds the flight-model envelope for one type
// designator (units documented inline).
type AircraftPerformance struct {
	ICAO        string
	WakeClass   WakeCategory
	Rate        struct {
		Climb      float64 // ft/minute, standard climb rate
		Descent    float64 // ft/minute, standard descent rate
		Accelerate float64 // kt/s
		Decelerate float64 // kt/s
	}
	Speed struct {
		Min       float64 // Vmin, kt IAS
		V2        float64
		Vapp      float64
		Vref      float64
		CruiseTAS float64
		MaxTAS    float64 // Vmo
	}
	Turn struct {
		MaxBankAngle float64 // degrees
		MaxBankRate  float64 // degrees/second
	}
}

// PerformanceDB is the process-wide, immutable table of aircraft
// performance envelopes keyed by ICAO type designator. Lookups are
// memoized in a small bounded LRU since the same handful of types are
// queried every tick for every aircraft.
type PerformanceDB struct {
	cache *lookupCache
	types map[string]AircraftPerformance
}

func NewPerformanceDB() *PerformanceDB {
	db := &PerformanceDB{
		cache: newLookupCache(64),
		types: defaultFleetPerformance(),
	}
	return db
}

// Lookup returns the performance envelope for an ICAO type, falling back to
// a generic narrow-body profile for unknown types: a missing-data lookup
// degrades rather than crashing.
func (db *PerformanceDB) Lookup(icao string) AircraftPerformance {
	if v, ok := db.cache.get(icao); ok {
		return v.(AircraftPerformance)
	}
	perf, ok := db.types[icao]
	if !ok {
		perf = db.types["B738"]
	}
	db.cache.put(icao, perf)
	return perf
}

func defaultFleetPerformance() map[string]AircraftPerformance {
	mk := func(wake WakeCategory, climb, descent, accel, decel, min, v2, vapp, vref, cruise, maxTAS, bank, bankRate float64) AircraftPerformance {
		p := AircraftPerformance{WakeClass: wake}
		p.Rate.Climb, p.Rate.Descent = climb, descent
		p.Rate.Accelerate, p.Rate.Decelerate = accel, decel
		p.Speed.Min, p.Speed.V2 = min, v2
		p.Speed.Vapp, p.Speed.Vref = vapp, vref
		p.Speed.CruiseTAS, p.Speed.MaxTAS = cruise, maxTAS
		p.Turn.MaxBankAngle, p.Turn.MaxBankRate = bank, bankRate
		return p
	}

	m := map[string]AircraftPerformance{
		"B738": mk(WakeLarge, 2500, 2000, 2.5, 3.0, 130, 145, 150, 138, 450, 340, 25, 5),
		"A320": mk(WakeLarge, 2400, 1900, 2.4, 3.0, 128, 140, 145, 135, 447, 350, 25, 5),
		"A21N": mk(WakeLarge, 2300, 1900, 2.3, 2.9, 130, 142, 147, 137, 450, 350, 25, 5),
		"B737": mk(WakeLarge, 2500, 2000, 2.5, 3.0, 128, 142, 148, 136, 440, 340, 25, 5),
		"CRJ9": mk(WakeLarge, 2600, 2100, 2.6, 3.2, 120, 130, 138, 128, 447, 330, 25, 6),
		"CRJ7": mk(WakeLarge, 2700, 2100, 2.6, 3.2, 118, 128, 136, 126, 440, 330, 25, 6),
		"CRJ2": mk(WakeLarge, 2800, 2200, 2.7, 3.3, 115, 125, 133, 122, 430, 320, 25, 6),
		"E75L": mk(WakeLarge, 2500, 2000, 2.5, 3.0, 120, 132, 140, 128, 450, 340, 25, 5),
		"E170": mk(WakeLarge, 2500, 2000, 2.5, 3.0, 118, 130, 138, 126, 440, 330, 25, 5),
		"E145": mk(WakeLarge, 2700, 2100, 2.6, 3.1, 115, 126, 134, 122, 430, 320, 25, 6),
		"B752": mk(WakeLarge, 2300, 1900, 2.2, 2.8, 135, 150, 155, 142, 470, 350, 25, 4.5),
		"B763": mk(WakeHeavy, 2000, 1700, 2.0, 2.5, 140, 155, 160, 148, 480, 360, 25, 4),
		"B77W": mk(WakeHeavy, 2000, 1600, 1.9, 2.4, 145, 160, 165, 152, 490, 360, 25, 4),
		"A388": mk(WakeSuper, 1700, 1500, 1.7, 2.2, 150, 165, 170, 158, 490, 340, 25, 3.5),
		"C172": mk(WakeSmall, 700, 600, 1.2, 1.5, 48, 55, 65, 60, 120, 160, 20, 8),
		"C182": mk(WakeSmall, 800, 650, 1.3, 1.6, 52, 58, 68, 62, 140, 165, 20, 8),
		"SR22": mk(WakeSmall, 1000, 800, 1.5, 1.8, 60, 68, 80, 72, 180, 200, 22, 8),
		"C56X": mk(WakeSmall, 3200, 2800, 2.8, 3.3, 95, 110, 120, 108, 380, 270, 25, 6),
		"CL30": mk(WakeLarge, 3500, 3000, 2.9, 3.4, 105, 118, 128, 115, 450, 320, 25, 6),
	}
	return m
}

// WakeSeparationNm returns the minimum in-trail separation in nm required
// when a trailing aircraft of class behind follows a leading aircraft of
// class ahead. A single table backs both the visual-approach follow logic
// and the wake conflict alert.
func WakeSeparationNm(ahead, behind WakeCategory) float64 {
	switch {
	case ahead == WakeHeavy && behind == WakeHeavy:
		return 4
	case ahead == WakeHeavy:
		return 5
	case ahead == WakeSuper:
		return 6
	case ahead == WakeLarge && behind == WakeSmall:
		return 3
	default:
		return 3
	}
}
