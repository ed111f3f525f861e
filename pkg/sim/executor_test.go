// pkg/sim/executor_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/desponda/tracon-sim/pkg/aviation"
)

func newTestExecutor() (*FlightPlanExecutor, *aviation.AirportData) {
	ap := testAirport()
	return NewFlightPlanExecutor(ap, aviation.NewPerformanceDB()), ap
}

func TestSteerTowardReturnsFalseUntilAnticipationRadius(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	ac.Position = ap.Projection.Destination(ap.Reference, 340, 10)
	ac.Speed = 180

	fix := ap.Fixes["WPT01"].Location
	if e.steerToward(ac, fix) {
		t.Fatalf("expected false while well outside anticipation radius")
	}
	if ac.TargetHeading == 0 {
		t.Errorf("expected target heading to be set toward the fix")
	}
}

func TestSteerTowardReturnsTrueWithinAnticipationRadius(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	fix := ap.Fixes["WPT01"].Location
	ac.Position = ap.Projection.Destination(fix, 160, 0.5)
	ac.Speed = 180 // below flyByFastKt, so slow-anticipation radius (0.8nm) applies

	if !e.steerToward(ac, fix) {
		t.Errorf("expected true within anticipation radius")
	}
}

func TestRunDirectFixClearsOnArrival(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	fix := ap.Fixes["WPT01"].Location
	ac.Position = ap.Projection.Destination(fix, 160, 0.3)
	ac.Speed = 180
	ac.Clearances.DirectFix = "WPT01"

	e.runDirectFix(ac)

	if ac.Clearances.DirectFix != "" {
		t.Errorf("expected direct-fix clearance cleared on arrival, got %q", ac.Clearances.DirectFix)
	}
}

func TestRunDirectFixClearsOnUnknownFix(t *testing.T) {
	e, _ := newTestExecutor()
	ac := testAircraft("a")
	ac.Clearances.DirectFix = "NOPE"

	e.runDirectFix(ac)

	if ac.Clearances.DirectFix != "" {
		t.Errorf("expected unknown direct fix to clear the clearance rather than loop forever")
	}
}

func TestRunRouteNavigationAdvancesFixIndex(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	ac.Category = CategoryOverflight
	ac.FlightPlan.Route = []string{"WPT01", "WPT02"}
	ac.CurrentFixIndex = 0
	fix := ap.Fixes["WPT01"].Location
	ac.Position = ap.Projection.Destination(fix, 160, 0.3)
	ac.Speed = 180

	e.runRouteNavigation(ac)

	if ac.CurrentFixIndex != 1 {
		t.Errorf("expected fix index to advance to 1, got %d", ac.CurrentFixIndex)
	}
}

func TestRunHoldEntersAtFixThenRunsRacetrack(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	fix := ap.Fixes["WPT01"].Location
	ac.Position = ap.Projection.Destination(fix, 160, 0.3)
	ac.Speed = 180
	ac.Clearances.HoldFix = "WPT01"

	e.runHold(ac, 0)
	if ac.HoldingState == nil {
		t.Fatalf("expected holding state entered on arrival at the fix")
	}
	if ac.HoldingState.Phase != HoldTurningOutbound {
		t.Errorf("expected initial phase turning_outbound, got %s", ac.HoldingState.Phase)
	}
}

func TestRunHoldOutboundLegTimesOutAfterHoldLegSeconds(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	fix := ap.Fixes["WPT01"].Location
	ac.Clearances.HoldFix = "WPT01"
	ac.HoldingState = &HoldingState{
		Phase:         HoldOutbound,
		InboundCourse: 160,
		LegStartTick:  0,
		FixPosition:   fix,
	}

	e.runHold(ac, holdLegSeconds)

	if ac.HoldingState.Phase != HoldTurningInbound {
		t.Errorf("expected transition to turning_inbound after %d ticks, got %s", holdLegSeconds, ac.HoldingState.Phase)
	}
}

func TestRunVNAVClimbsToAtOrAboveRestriction(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	ac.Clearances.ClimbViaSID = true
	ac.FlightPlan.SID = "TEST1"
	ac.TypeDesignator = "B738"
	ac.Altitude = 2000
	ac.Groundspeed = 180
	ac.Position = ap.Reference

	ap.SIDs["TEST1"] = aviation.Procedure{
		Name: "TEST1",
		Legs: []aviation.Leg{
			{Type: aviation.LegCF, Fix: "WPT01", Altitude: &aviation.AltitudeRestriction{Kind: aviation.RestrictAtOrAbove, Alt: 5000}},
		},
	}

	e.runVNAV(ac)

	if ac.TargetAltitude != 5000 {
		t.Errorf("expected target altitude raised to 5000, got %f", ac.TargetAltitude)
	}
}

func TestRunVNAVUsesUpcomingRouteFixNotStaleProcLegsIndex(t *testing.T) {
	e, ap := newTestExecutor()
	ap.Fixes["WPT03"] = aviation.Fix{ID: "WPT03", Location: ap.Projection.Destination(ap.Reference, 340, 35)}

	ac := testAircraft("a")
	ac.Clearances.ClimbViaSID = true
	ac.FlightPlan.SID = "MIXED1"
	ac.FlightPlan.Route = []string{"WPT01", "WPT02", "WPT03"}
	ac.CurrentFixIndex = 2 // WPT01 and WPT02 already flown; WPT03 is upcoming
	ac.TypeDesignator = "B738"
	ac.Altitude = 9000
	ac.Groundspeed = 180
	ac.Position = ap.Fixes["WPT02"].Location

	// A vector leg (SIDLegs material, never indexed here) sits between the
	// already-passed WPT02 fix leg and the upcoming WPT03 one, so proc.Legs
	// position 2 (CurrentFixIndex) lands back on WPT02's own restriction
	// rather than WPT03's.
	ap.SIDs["MIXED1"] = aviation.Procedure{
		Name: "MIXED1",
		Legs: []aviation.Leg{
			{Type: aviation.LegTF, Fix: "WPT01", Altitude: &aviation.AltitudeRestriction{Kind: aviation.RestrictAtOrBelow, Alt: 8000}},
			{Type: aviation.LegVA, Heading: 90, Altitude: &aviation.AltitudeRestriction{Kind: aviation.RestrictAtOrAbove, Alt: 2000}},
			{Type: aviation.LegTF, Fix: "WPT02", Altitude: &aviation.AltitudeRestriction{Kind: aviation.RestrictAtOrBelow, Alt: 6000}},
			{Type: aviation.LegTF, Fix: "WPT03", Altitude: &aviation.AltitudeRestriction{Kind: aviation.RestrictAtOrBelow, Alt: 3000}},
		},
	}

	e.runVNAV(ac)

	if ac.TargetAltitude != 3000 {
		t.Errorf("expected the upcoming fix's restriction (3000) to be adopted instead of the already-passed fix's (6000), got %f", ac.TargetAltitude)
	}
}

func TestRunMissedApproachDefaultsToClimbThenDescend(t *testing.T) {
	e, ap := newTestExecutor()
	ac := testAircraft("a")
	ac.Altitude = ap.ElevationFt + 2000
	ac.FlightPhase = PhaseMissed

	e.runMissedApproach(ac)
	if ac.TargetAltitude != ap.ElevationFt+3000 {
		t.Errorf("expected default missed-approach target of fieldElev+3000, got %f", ac.TargetAltitude)
	}

	ac.Altitude = ap.ElevationFt + 3000
	e.runMissedApproach(ac)
	if ac.FlightPhase != PhaseDescent {
		t.Errorf("expected phase to revert to descent once default missed altitude is reached")
	}
}
