// pkg/sim/session_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/log"
)

func testSessionConfig() SessionConfig {
	return SessionConfig{
		Airport:      testAirport(),
		Density:      DensityLight,
		ScenarioType: ScenarioArrivals,
		Runways:      RunwayConfig{ArrivalRunways: []string{"16"}, DepartureRunways: []string{"16"}},
		Weather:      aviation.WeatherState{CeilingFtAGL: 5000, HasCeiling: true, VisibilitySM: 10},
		Seed:         42,
	}
}

func TestNewSimulationEngineClampsWeatherPlayable(t *testing.T) {
	cfg := testSessionConfig()
	cfg.Weather = aviation.WeatherState{CeilingFtAGL: 0, HasCeiling: true, VisibilitySM: 0.1}
	e := NewSimulationEngine(cfg, log.NewDiscard())

	if e.weather.CeilingFtAGL < 250 {
		t.Errorf("expected weather clamped to playable minimum ceiling, got %f", e.weather.CeilingFtAGL)
	}
	if e.weather.VisibilitySM < 0.5 {
		t.Errorf("expected weather clamped to playable minimum visibility, got %f", e.weather.VisibilitySM)
	}
}

func TestNewSimulationEnginePreSpawnsPopulation(t *testing.T) {
	cfg := testSessionConfig()
	e := NewSimulationEngine(cfg, log.NewDiscard())
	if e.mgr.Len() != prespawnCount(DensityLight) {
		t.Errorf("expected %d pre-spawned aircraft, got %d", prespawnCount(DensityLight), e.mgr.Len())
	}
}

// TestILSApproachToLanding exercises the ILS-to-landing end-to-end
// scenario: an aircraft 10nm out at 3000ft on centerline, cleared for the
// ILS, flown to touchdown over repeated ticks in calm wind.
func TestILSApproachToLanding(t *testing.T) {
	cfg := testSessionConfig()
	e := NewSimulationEngine(cfg, log.NewDiscard())
	// Drop the pre-spawned population; this test drives one aircraft only.
	for _, ac := range e.mgr.All() {
		e.mgr.MarkForRemoval(ac.ID)
	}
	e.mgr.ApplyRemovals()

	ap := cfg.Airport
	rwy := ap.Runways["16"]
	ac := testAircraft("ils1")
	ac.Callsign = "AAL100"
	ac.Position = ap.Projection.Destination(rwy.Threshold, rwy.ILSCourse+180, 10)
	ac.Heading = rwy.ILSCourse
	ac.TargetHeading = rwy.ILSCourse
	ac.Altitude = rwy.ElevationFt + 3000
	ac.TargetAltitude = rwy.ElevationFt + 3000
	ac.Speed = 180
	ac.TargetSpeed = 180
	ac.Category = CategoryArrival
	ac.FlightPhase = PhaseApproach
	ac.Clearances.Approach = &ApproachClearance{Type: aviation.ApproachILS, Runway: "16"}
	e.mgr.Add(ac)

	landed := false
	for i := 0; i < 1200 && !landed; i++ {
		_, snap := e.Tick(nil, 1)
		for _, a := range snap.Aircraft {
			if a.ID == "ils1" && a.FlightPhase == PhaseLanded {
				landed = true
			}
		}
	}

	if !landed {
		t.Fatalf("expected aircraft to land within 1200 ticks from 10nm/3000ft on centerline")
	}
}

func TestConflictThenClearScenario(t *testing.T) {
	cfg := testSessionConfig()
	e := NewSimulationEngine(cfg, log.NewDiscard())
	for _, ac := range e.mgr.All() {
		e.mgr.MarkForRemoval(ac.ID)
	}
	e.mgr.ApplyRemovals()

	ap := cfg.Airport
	a := testAircraft("a")
	a.Callsign = "AAL1"
	a.Position = ap.Reference
	a.Altitude = 6000
	a.TargetAltitude = 6000
	a.Heading, a.TargetHeading = 90, 90
	a.Speed, a.TargetSpeed = 250, 250
	a.Category = CategoryOverflight
	a.FlightPhase = PhaseCruise

	b := testAircraft("b")
	b.Callsign = "UAL2"
	b.Position = ap.Projection.Destination(ap.Reference, 90, 1)
	b.Altitude = 6100
	b.TargetAltitude = 6100
	b.Heading, b.TargetHeading = 270, 270
	b.Speed, b.TargetSpeed = 250, 250
	b.Category = CategoryOverflight
	b.FlightPhase = PhaseCruise

	e.mgr.Add(a)
	e.mgr.Add(b)

	var sawConflict bool
	for i := 0; i < 5; i++ {
		_, snap := e.Tick(nil, 1)
		for _, al := range snap.Alerts {
			if al.Type == AlertConflict {
				sawConflict = true
			}
		}
	}
	if !sawConflict {
		t.Fatalf("expected a conflict alert while converging head-on within separation minima")
	}

	score := e.scoring.Metrics()
	if score.SeparationViolations == 0 {
		t.Errorf("expected at least one recorded separation violation")
	}

	// Diverge them and confirm the alert clears.
	a.Position = ap.Projection.Destination(ap.Reference, 0, 40)
	b.Position = ap.Projection.Destination(ap.Reference, 180, 40)
	var sawClear bool
	for i := 0; i < 5; i++ {
		_, snap := e.Tick(nil, 1)
		for _, id := range snap.Cleared {
			_ = id
			sawClear = true
		}
	}
	if !sawClear {
		t.Errorf("expected the conflict to clear once aircraft diverge")
	}
}

func TestSessionLifecycleStateMachine(t *testing.T) {
	s := NewSession(testSessionConfig(), log.NewDiscard())
	if s.Status != StatusLobby {
		t.Fatalf("expected initial status lobby, got %s", s.Status)
	}
	if err := s.Pause(); err == nil {
		t.Errorf("expected pause to fail from lobby")
	}

	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error starting session: %v", err)
	}
	if s.Status != StatusRunning {
		t.Fatalf("expected status running after start, got %s", s.Status)
	}

	if err := s.Pause(); err != nil {
		t.Fatalf("unexpected error pausing: %v", err)
	}
	if _, _, err := s.Advance(); err == nil {
		t.Errorf("expected Advance to fail while paused")
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("unexpected error resuming: %v", err)
	}
	if _, _, err := s.Advance(); err != nil {
		t.Errorf("expected Advance to succeed while running: %v", err)
	}

	snap := s.End()
	if s.Status != StatusEnded {
		t.Fatalf("expected status ended, got %s", s.Status)
	}
	_ = snap
}

func TestSessionSetTimeScaleClamped(t *testing.T) {
	s := NewSession(testSessionConfig(), log.NewDiscard())
	s.SetTimeScale(100)
	if s.TimeScale != 8 {
		t.Errorf("expected time scale clamped to 8, got %f", s.TimeScale)
	}
	s.SetTimeScale(0.01)
	if s.TimeScale != 0.5 {
		t.Errorf("expected time scale clamped to 0.5, got %f", s.TimeScale)
	}
}

func TestFaultAircraftDegradesThenRemovesAfterThreeStrikes(t *testing.T) {
	cfg := testSessionConfig()
	e := NewSimulationEngine(cfg, log.NewDiscard())
	for _, ac := range e.mgr.All() {
		e.mgr.MarkForRemoval(ac.ID)
	}
	e.mgr.ApplyRemovals()

	ac := testAircraft("x")
	e.mgr.Add(ac)

	e.faultAircraft(ac, aviation.ErrNonFiniteState)
	if !ac.degraded || ac.faultStreak != 1 {
		t.Fatalf("expected degrade on first fault, got degraded=%v streak=%d", ac.degraded, ac.faultStreak)
	}

	e.faultAircraft(ac, aviation.ErrNonFiniteState)
	e.faultAircraft(ac, aviation.ErrNonFiniteState)
	e.mgr.ApplyRemovals()

	if e.mgr.Get("x") != nil {
		t.Errorf("expected aircraft removed after three consecutive faults")
	}
}

func TestDispatchedCommandAppliesBeforeExecutorRuns(t *testing.T) {
	cfg := testSessionConfig()
	e := NewSimulationEngine(cfg, log.NewDiscard())
	for _, ac := range e.mgr.All() {
		e.mgr.MarkForRemoval(ac.ID)
	}
	e.mgr.ApplyRemovals()

	ac := testAircraft("cmd1")
	ac.Callsign = "AAL1"
	ac.Category = CategoryOverflight
	ac.FlightPhase = PhaseCruise
	e.mgr.Add(ac)

	cmd := ATCCommand{Kind: CmdAltitude, Callsign: "AAL1", Altitude: 9000}
	responses, _ := e.Tick([]ATCCommand{cmd}, 1)

	if len(responses) != 1 || !responses[0].Success {
		t.Fatalf("expected the altitude command to succeed, got %+v", responses)
	}
	if got := e.mgr.Get("cmd1").TargetAltitude; got != 9000 {
		t.Errorf("expected target altitude 9000 applied before the tick's physics step, got %f", got)
	}
}

func TestTickSnapshotAircraftAreIndependentCopies(t *testing.T) {
	cfg := testSessionConfig()
	e := NewSimulationEngine(cfg, log.NewDiscard())
	for _, ac := range e.mgr.All() {
		e.mgr.MarkForRemoval(ac.ID)
	}
	e.mgr.ApplyRemovals()

	ac := testAircraft("snap1")
	e.mgr.Add(ac)

	_, snap := e.Tick(nil, 1)
	if len(snap.Aircraft) != 1 {
		t.Fatalf("expected one aircraft in the snapshot, got %d", len(snap.Aircraft))
	}
	if snap.Aircraft[0] == e.mgr.Get("snap1") {
		t.Fatalf("expected the snapshot to hold a deep copy, not an alias of the live aircraft pointer")
	}

	snap.Aircraft[0].Altitude = 99999
	if e.mgr.Get("snap1").Altitude == 99999 {
		t.Errorf("expected mutating the snapshot copy not to affect live engine state")
	}
}
