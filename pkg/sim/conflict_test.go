// pkg/sim/conflict_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
)

func TestScanDetectsHardSeparationViolation(t *testing.T) {
	ap := testAirport()
	det := NewConflictDetector(ap)

	a := testAircraft("a")
	a.Position = ap.Reference
	a.Altitude = 5000

	b := testAircraft("b")
	b.Position = ap.Projection.Destination(ap.Reference, 90, 1)
	b.Altitude = 5200

	result := det.scan([]*AircraftState{a, b})
	if len(result.New) != 1 || result.New[0].Type != AlertConflict {
		t.Fatalf("expected one conflict alert, got %+v", result.New)
	}
}

func TestScanClearsWhenSeparationRestored(t *testing.T) {
	ap := testAirport()
	det := NewConflictDetector(ap)

	a := testAircraft("a")
	a.Position = ap.Reference
	a.Altitude = 5000
	b := testAircraft("b")
	b.Position = ap.Projection.Destination(ap.Reference, 90, 1)
	b.Altitude = 5000

	det.scan([]*AircraftState{a, b})

	b.Position = ap.Projection.Destination(ap.Reference, 90, 20)
	result := det.scan([]*AircraftState{a, b})

	if len(result.Cleared) != 1 {
		t.Fatalf("expected the conflict to clear, got %+v", result.Cleared)
	}
}

func TestCheckMSAWTriggersBelowFieldElevFloor(t *testing.T) {
	ap := testAirport()
	det := NewConflictDetector(ap)

	a := testAircraft("a")
	a.Position = ap.Projection.Destination(ap.Reference, 270, 15)
	a.Altitude = ap.ElevationFt + 500
	a.VerticalSpeed = -800

	var got *Alert
	det.checkMSAW(a, func(key string, al Alert) { got = &al })

	if got == nil || got.Type != AlertMSAW {
		t.Fatalf("expected an MSAW alert, got %+v", got)
	}
}

func TestCheckMSAWDoesNotTriggerWhileLevel(t *testing.T) {
	ap := testAirport()
	det := NewConflictDetector(ap)

	a := testAircraft("a")
	a.Altitude = ap.ElevationFt + 500
	a.VerticalSpeed = 0

	triggered := false
	det.checkMSAW(a, func(string, Alert) { triggered = true })

	if triggered {
		t.Errorf("expected no MSAW alert for level flight")
	}
}

func TestCheckWakeRequiresHeavyLeadAndFinalPhase(t *testing.T) {
	ap := testAirport()
	det := NewConflictDetector(ap)

	heavy := testAircraft("heavy")
	heavy.WakeCategory = aviation.WakeHeavy
	heavy.FlightPhase = PhaseFinal
	heavy.Position = ap.Reference

	trail := testAircraft("trail")
	trail.WakeCategory = aviation.WakeLarge
	trail.FlightPhase = PhaseFinal
	trail.Position = ap.Projection.Destination(ap.Reference, 337, 2)

	var got *Alert
	det.checkWake(heavy, trail, func(key string, a Alert) { got = &a })

	if got == nil || got.Type != AlertWake {
		t.Fatalf("expected a wake alert, got %+v", got)
	}
}

func TestCheckWakeIgnoresNonFinalPhase(t *testing.T) {
	ap := testAirport()
	det := NewConflictDetector(ap)

	heavy := testAircraft("heavy")
	heavy.WakeCategory = aviation.WakeHeavy
	heavy.FlightPhase = PhaseDescent
	heavy.Position = ap.Reference

	trail := testAircraft("trail")
	trail.WakeCategory = aviation.WakeLarge
	trail.FlightPhase = PhaseDescent
	trail.Position = ap.Projection.Destination(ap.Reference, 337, 2)

	triggered := false
	det.checkWake(heavy, trail, func(string, Alert) { triggered = true })
	if triggered {
		t.Errorf("expected no wake alert outside final approach")
	}
}

func TestCheckRunwayIncursionSharedOccupancy(t *testing.T) {
	ap := testAirport()
	det := NewConflictDetector(ap)

	a := testAircraft("a")
	a.RunwayOccupying = "16"
	b := testAircraft("b")
	b.RunwayOccupying = "16"

	var got *Alert
	det.checkRunwayIncursion([]*AircraftState{a, b}, func(key string, al Alert) { got = &al })

	if got == nil || got.Type != AlertRunwayConflict {
		t.Fatalf("expected a runway-incursion alert for shared occupancy, got %+v", got)
	}
}

func TestPointInPolygonBasicSquare(t *testing.T) {
	square := []geo.Point{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 1},
		{Lat: 1, Lon: 1},
		{Lat: 1, Lon: 0},
	}
	if !pointInPolygon(geo.Point{Lat: 0.5, Lon: 0.5}, square) {
		t.Errorf("expected center point to be inside the square")
	}
	if pointInPolygon(geo.Point{Lat: 2, Lon: 2}, square) {
		t.Errorf("expected far point to be outside the square")
	}
}
