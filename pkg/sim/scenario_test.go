// pkg/sim/scenario_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/rand"
)

func newTestScenario(st ScenarioType) *ScenarioGenerator {
	ap := testAirport()
	rc := RunwayConfig{ArrivalRunways: []string{"16"}, DepartureRunways: []string{"16"}}
	return NewScenarioGenerator(ap, aviation.NewPerformanceDB(), rand.New(1), st, rc)
}

func TestPreSpawnCountsByDensity(t *testing.T) {
	cases := []struct {
		density Density
		want    int
	}{
		{DensityLight, 4},
		{DensityModerate, 7},
		{DensityHeavy, 14},
	}
	for _, c := range cases {
		g := newTestScenario(ScenarioMixed)
		got := g.PreSpawn(c.density)
		if len(got) != c.want {
			t.Errorf("density %s: expected %d pre-spawned aircraft, got %d", c.density, c.want, len(got))
		}
	}
}

func TestPreSpawnArrivalsOnlyScenario(t *testing.T) {
	g := newTestScenario(ScenarioArrivals)
	out := g.PreSpawn(DensityLight)
	for _, ac := range out {
		if ac.Category != CategoryArrival {
			t.Errorf("expected all-arrivals scenario to only spawn arrivals, got %s", ac.Category)
		}
	}
}

func TestPreSpawnDeparturesOnlyScenario(t *testing.T) {
	g := newTestScenario(ScenarioDepartures)
	out := g.PreSpawn(DensityLight)
	for _, ac := range out {
		if ac.Category != CategoryDeparture {
			t.Errorf("expected all-departures scenario to only spawn departures, got %s", ac.Category)
		}
	}
}

func TestSpawnArrivalPlacesWithinTierBands(t *testing.T) {
	g := newTestScenario(ScenarioArrivals)
	ac := g.spawnArrival()
	if ac == nil {
		t.Fatal("expected a non-nil arrival")
	}
	dist := g.airport.Projection.Distance(ac.Position, g.airport.Reference)
	if dist < 10 || dist > 50 {
		t.Errorf("expected arrival distance within the combined tier range [10,50], got %f", dist)
	}
	if ac.Category != CategoryArrival || ac.FlightPhase != PhaseDescent {
		t.Errorf("expected arrival category/phase, got %s/%s", ac.Category, ac.FlightPhase)
	}
}

func TestSpawnDepartureClimbsFromAssignedRunway(t *testing.T) {
	g := newTestScenario(ScenarioDepartures)
	ac := g.spawnDeparture()
	if ac.Category != CategoryDeparture || ac.FlightPhase != PhaseClimb {
		t.Errorf("expected departure category/phase, got %s/%s", ac.Category, ac.FlightPhase)
	}
	if ac.FlightPlan.Runway != "16" {
		t.Errorf("expected runway 16 assigned, got %q", ac.FlightPlan.Runway)
	}
}

func TestUpdateSpawnsAfterInterval(t *testing.T) {
	g := newTestScenario(ScenarioArrivals)
	var spawned *AircraftState
	var tick uint64
	for tick = 0; tick < 2000 && spawned == nil; tick++ {
		spawned = g.update(tick, DensityHeavy, 1)
	}
	if spawned == nil {
		t.Fatalf("expected a spawn within 2000 ticks at heavy density")
	}
}

func TestSpawnIntervalTicksScalesWithTimeScale(t *testing.T) {
	g := newTestScenario(ScenarioMixed)
	slow := g.spawnIntervalTicks(DensityModerate, 1)
	fast := g.spawnIntervalTicks(DensityModerate, 4)
	if fast >= slow {
		t.Errorf("expected higher timeScale to shrink the spawn interval: slow=%d fast=%d", slow, fast)
	}
}
