// pkg/sim/scenario.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
	"github.com/desponda/tracon-sim/pkg/rand"
)

type Density string

const (
	DensityLight    Density = "light"
	DensityModerate Density = "moderate"
	DensityHeavy    Density = "heavy"
)

type ScenarioType string

const (
	ScenarioArrivals   ScenarioType = "arrivals"
	ScenarioDepartures ScenarioType = "departures"
	ScenarioMixed      ScenarioType = "mixed"
)

// RunwayConfig names the runways currently assigned to arrival and
// departure flows.
type RunwayConfig struct {
	ArrivalRunways   []string
	DepartureRunways []string
}

// ScenarioGenerator pre-spawns a staggered population at session start and
// continues spawning at a density-derived rate.
type ScenarioGenerator struct {
	airport *aviation.AirportData
	perf    *aviation.PerformanceDB
	rng     *rand.Rand
	seen    map[string]bool

	scenarioType ScenarioType
	runways      RunwayConfig

	nextSpawnTick uint64
}

func NewScenarioGenerator(airport *aviation.AirportData, perf *aviation.PerformanceDB, rng *rand.Rand, st ScenarioType, rc RunwayConfig) *ScenarioGenerator {
	return &ScenarioGenerator{
		airport:      airport,
		perf:         perf,
		rng:          rng,
		seen:         make(map[string]bool),
		scenarioType: st,
		runways:      rc,
	}
}

var arrivalTiers = []struct {
	minNm, maxNm     float64
	minAlt, maxAlt   float64
}{
	{40, 50, 10000, 12000},
	{30, 40, 8000, 10000},
	{20, 30, 7000, 9000},
	{10, 18, 4000, 6000},
}

func prespawnCount(d Density) int {
	switch d {
	case DensityModerate:
		return 7
	case DensityHeavy:
		return 14
	default:
		return 4
	}
}

func opsPerHour(d Density) float64 {
	switch d {
	case DensityModerate:
		return 16
	case DensityHeavy:
		return 28
	default:
		return 8
	}
}

// PreSpawn populates the initial staggered traffic population for the
// session.
func (g *ScenarioGenerator) PreSpawn(density Density) []*AircraftState {
	n := prespawnCount(density)
	var out []*AircraftState
	for i := 0; i < n; i++ {
		var ac *AircraftState
		if g.spawnCategoryForIndex(i, n) == CategoryArrival {
			ac = g.spawnArrival()
		} else {
			ac = g.spawnDeparture()
		}
		if ac != nil {
			out = append(out, ac)
		}
	}
	return out
}

func (g *ScenarioGenerator) spawnCategoryForIndex(i, n int) Category {
	switch g.scenarioType {
	case ScenarioDepartures:
		return CategoryDeparture
	case ScenarioArrivals:
		return CategoryArrival
	default:
		if float64(i) < float64(n)*0.6 {
			return CategoryArrival
		}
		return CategoryDeparture
	}
}

// update is called once per tick; it decides whether to spawn a new
// aircraft given the density-derived interval.
func (g *ScenarioGenerator) update(tick uint64, density Density, timeScale float64) *AircraftState {
	if g.nextSpawnTick == 0 {
		g.nextSpawnTick = tick + g.spawnIntervalTicks(density, timeScale)
	}
	if tick < g.nextSpawnTick {
		return nil
	}
	g.nextSpawnTick = tick + g.spawnIntervalTicks(density, timeScale)
	return g.spawnNext()
}

func (g *ScenarioGenerator) spawnIntervalTicks(density Density, timeScale float64) uint64 {
	interval := 3600.0 / opsPerHour(density) / timeScale
	if interval < 1 {
		interval = 1
	}
	return uint64(interval + 0.5)
}

func (g *ScenarioGenerator) spawnNext() *AircraftState {
	switch g.scenarioType {
	case ScenarioArrivals:
		return g.spawnArrival()
	case ScenarioDepartures:
		return g.spawnDeparture()
	default:
		if g.rng.Float64() < 0.6 {
			return g.spawnArrival()
		}
		if g.rng.Float64() < 0.1 {
			return g.spawnVFR()
		}
		return g.spawnDeparture()
	}
}

func (g *ScenarioGenerator) pickArrivalRunway() string {
	if len(g.runways.ArrivalRunways) == 0 {
		return ""
	}
	return rand.SampleSlice(g.rng, g.runways.ArrivalRunways)
}

func (g *ScenarioGenerator) pickDepartureRunway() string {
	if len(g.runways.DepartureRunways) == 0 {
		return ""
	}
	return rand.SampleSlice(g.rng, g.runways.DepartureRunways)
}

// spawnArrival places a new arrival at one of the four distance/altitude
// tiers, pinned to its initial altitude with descendViaSTAR engaged when
// the STAR carries constraints.
func (g *ScenarioGenerator) spawnArrival() *AircraftState {
	rwyID := g.pickArrivalRunway()
	al, typeDesignator := aviation.SampleAirline(g.rng)
	callsign := aviation.GenerateCallsign(g.rng, al, g.seen)

	tier := arrivalTiers[g.rng.Intn(len(arrivalTiers))]
	distNm := g.rng.Float64Range(tier.minNm, tier.maxNm)
	alt := g.rng.Float64Range(tier.minAlt, tier.maxAlt)

	brg := g.rng.Float64Range(0, 360)
	proj := g.airport.Projection
	pos := proj.Destination(g.airport.Reference, brg, distNm)
	hdgToAirport := geo.NormalizeHeading(brg + 180)

	star := g.pickSTAR()

	ac := &AircraftState{
		ID:             NewAircraftID(),
		Callsign:       callsign,
		TypeDesignator: typeDesignator,
		WakeCategory:   g.perf.Lookup(typeDesignator).WakeClass,
		Position:       pos,
		Altitude:       alt,
		Heading:        hdgToAirport,
		Speed:          250,
		TargetAltitude: alt,
		TargetHeading:  hdgToAirport,
		TargetSpeed:    250,
		Category:       CategoryArrival,
		FlightPhase:    PhaseDescent,
		FlightPlan: FlightPlan{
			Arrival: g.airport.ICAO,
			Runway:  rwyID,
			STAR:    star,
			Squawk:  "1200",
		},
	}
	if star != "" {
		if proc, ok := g.airport.STARs[star]; ok && hasConstraints(proc) {
			ac.Clearances.DescendViaSTAR = true
			for _, leg := range proc.Legs {
				ac.FlightPlan.Route = append(ac.FlightPlan.Route, leg.Fix)
			}
		}
	}
	return ac
}

func hasConstraints(p aviation.Procedure) bool {
	for _, leg := range p.Legs {
		if leg.Altitude != nil {
			return true
		}
	}
	return false
}

func (g *ScenarioGenerator) pickSTAR() string {
	keys := make([]string, 0, len(g.airport.STARs))
	for k := range g.airport.STARs {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	return rand.SampleSlice(g.rng, keys)
}

func (g *ScenarioGenerator) pickSID() string {
	keys := make([]string, 0, len(g.airport.SIDs))
	for k := range g.airport.SIDs {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	return rand.SampleSlice(g.rng, keys)
}

// spawnDeparture seeds a climbing departure at a staggered distance on the
// runway heading.
func (g *ScenarioGenerator) spawnDeparture() *AircraftState {
	rwyID := g.pickDepartureRunway()
	al, typeDesignator := aviation.SampleAirline(g.rng)
	callsign := aviation.GenerateCallsign(g.rng, al, g.seen)

	rwy, ok := g.airport.Runways[rwyID]
	var pos geo.Point
	var hdg float64
	if ok {
		hdg = rwy.TrueBearing(g.airport.Projection)
		distNm := g.rng.Float64Range(0, 8)
		pos = g.airport.Projection.Destination(rwy.Threshold, hdg, distNm)
	} else {
		pos = g.airport.Reference
	}

	sid := g.pickSID()
	perf := g.perf.Lookup(typeDesignator)

	ac := &AircraftState{
		ID:             NewAircraftID(),
		Callsign:       callsign,
		TypeDesignator: typeDesignator,
		WakeCategory:   perf.WakeClass,
		Position:       pos,
		Altitude:       g.airport.ElevationFt + g.rng.Float64Range(500, 3000),
		Heading:        hdg,
		Speed:          perf.Speed.V2 + 20,
		TargetAltitude: 10000,
		TargetHeading:  hdg,
		TargetSpeed:    200,
		Category:       CategoryDeparture,
		FlightPhase:    PhaseClimb,
		FlightPlan: FlightPlan{
			Departure:      g.airport.ICAO,
			Runway:         rwyID,
			SID:            sid,
			CruiseAltitude: 35000,
			Squawk:         "1200",
		},
	}
	if sid != "" {
		if proc, ok := g.airport.SIDs[sid]; ok {
			ac.Clearances.ClimbViaSID = true
			for _, leg := range proc.Legs {
				switch leg.Type {
				case aviation.LegVA, aviation.LegVD, aviation.LegVI:
					ac.SIDLegs = append(ac.SIDLegs, leg)
				default:
					ac.FlightPlan.Route = append(ac.FlightPlan.Route, leg.Fix)
				}
			}
		}
	}
	return ac
}

func (g *ScenarioGenerator) spawnVFR() *AircraftState {
	callsign, typeDesignator := aviation.GenerateVFRCallsign(g.rng, g.seen)
	brg := g.rng.Float64Range(0, 360)
	distNm := g.rng.Float64Range(15, 35)
	pos := g.airport.Projection.Destination(g.airport.Reference, brg, distNm)
	hdg := geo.NormalizeHeading(brg + 180 + g.rng.Float64Range(-30, 30))

	perf := g.perf.Lookup(typeDesignator)
	return &AircraftState{
		ID:             NewAircraftID(),
		Callsign:       callsign,
		TypeDesignator: typeDesignator,
		WakeCategory:   perf.WakeClass,
		Position:       pos,
		Altitude:       g.rng.Float64Range(2500, 5500),
		Heading:        hdg,
		Speed:          perf.Speed.CruiseTAS,
		TargetAltitude: g.rng.Float64Range(2500, 5500),
		TargetHeading:  hdg,
		TargetSpeed:    perf.Speed.CruiseTAS,
		Category:       CategoryVFR,
		FlightPhase:    PhaseCruise,
		FlightPlan:     FlightPlan{Squawk: "1200"},
	}
}
