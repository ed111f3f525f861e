// pkg/sim/executor.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"math"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
)

// FlightPlanExecutor implements LNAV/VNAV, approach and missed-approach
// logic, holds, and default pilot speed management. It runs before
// PhysicsEngine each tick and writes only targets and clearance flags; it
// never touches kinematic state directly.
type FlightPlanExecutor struct {
	airport *aviation.AirportData
	perf    *aviation.PerformanceDB
	proj    geo.Projection
}

func NewFlightPlanExecutor(airport *aviation.AirportData, perf *aviation.PerformanceDB) *FlightPlanExecutor {
	return &FlightPlanExecutor{airport: airport, perf: perf, proj: airport.Projection}
}

const (
	flyByFastNm    = 1.5
	flyBySlowNm    = 0.8
	flyByFastKt    = 200
	departureAGLFt = 400
	holdLegSeconds = 60
)

// execute advances ac's targets and clearance/phase state for one tick.
// `tick` is the session's monotonic tick counter, needed for hold-leg
// timing. `all` is the full live aircraft slice, needed only for visual
// sequencing; callers pass the slice directly rather than a registry
// lookup.
func (e *FlightPlanExecutor) execute(ac *AircraftState, all []*AircraftState, tick uint64) error {
	if ac.OnGround {
		return nil
	}

	switch {
	case ac.FlightPhase == PhaseMissed:
		e.runMissedApproach(ac)
		return nil
	case ac.Clearances.Approach != nil:
		e.runApproach(ac, all, tick)
		return nil
	case ac.HoldingState != nil || ac.Clearances.HoldFix != "":
		e.runHold(ac, tick)
		return nil
	case ac.Clearances.DirectFix != "":
		e.runDirectFix(ac)
	case len(ac.SIDLegs) > 0 && ac.SIDLegIdx < len(ac.SIDLegs):
		e.runSIDInitialLegs(ac)
	default:
		e.runRouteNavigation(ac)
	}

	e.runVNAV(ac)
	e.runDefaultSpeed(ac)
	return nil
}

func (e *FlightPlanExecutor) fixPosition(id string) (geo.Point, bool) {
	if f, ok := e.airport.Fixes[id]; ok {
		return f.Location, true
	}
	if n, ok := e.airport.Navaids[id]; ok {
		return n.Location, true
	}
	return geo.Point{}, false
}

func (e *FlightPlanExecutor) distToAirport(ac *AircraftState) float64 {
	return e.proj.Distance(ac.Position, e.airport.Reference)
}

func (e *FlightPlanExecutor) bearingToAirport(ac *AircraftState) float64 {
	return e.proj.TrueBearing(ac.Position, e.airport.Reference)
}

// steerToward points targetHeading at the fly-by-anticipated course to fix,
// returning true once the aircraft has crossed the anticipation radius and
// should advance to the next fix.
func (e *FlightPlanExecutor) steerToward(ac *AircraftState, fix geo.Point) bool {
	dist := e.proj.Distance(ac.Position, fix)
	ac.TargetHeading = e.proj.TrueBearing(ac.Position, fix)
	anticipation := flyBySlowNm
	if ac.Speed > flyByFastKt {
		anticipation = flyByFastNm
	}
	return dist <= anticipation
}

func (e *FlightPlanExecutor) runRouteNavigation(ac *AircraftState) {
	if ac.Category == CategoryDeparture && !ac.OnGround && (ac.Altitude-e.fieldElevation()) < departureAGLFt {
		e.trackDepartureCenterline(ac)
		return
	}

	route := ac.FlightPlan.Route
	if ac.CurrentFixIndex >= len(route) {
		return
	}
	fixID := route[ac.CurrentFixIndex]
	fix, ok := e.fixPosition(fixID)
	if !ok {
		ac.CurrentFixIndex++
		return
	}
	if e.steerToward(ac, fix) && ac.CurrentFixIndex < len(route) {
		ac.CurrentFixIndex++
	}
}

func (e *FlightPlanExecutor) trackDepartureCenterline(ac *AircraftState) {
	rwy, ok := e.airport.Runways[ac.FlightPlan.Runway]
	if !ok {
		return
	}
	course := rwy.TrueBearing(e.proj)
	xtk, _ := e.proj.CrossTrack(ac.Position, rwy.Threshold, course)
	correction := geo.Clamp(-xtk*30, -20, 20)
	ac.TargetHeading = geo.NormalizeHeading(course + correction)
}

func (e *FlightPlanExecutor) fieldElevation() float64 { return e.airport.ElevationFt }

// runVNAV scans remaining route fixes for altitude constraints when
// climbViaSID/descendViaSTAR is active. ac.CurrentFixIndex indexes
// ac.FlightPlan.Route, the fix-leg-only projection of proc.Legs (vector
// legs are siphoned into ac.SIDLegs), so the scan is anchored by matching
// the next upcoming route fix back into proc.Legs rather than reusing
// CurrentFixIndex as a direct index into it.
func (e *FlightPlanExecutor) runVNAV(ac *AircraftState) {
	if !ac.Clearances.ClimbViaSID && !ac.Clearances.DescendViaSTAR {
		return
	}
	proc := e.procedureFor(ac)
	if proc == nil {
		return
	}

	start := 0
	if route := ac.FlightPlan.Route; len(route) > 0 {
		if ac.CurrentFixIndex >= len(route) {
			start = len(proc.Legs)
		} else {
			upcoming := route[ac.CurrentFixIndex]
			for i, leg := range proc.Legs {
				if leg.Fix == upcoming {
					start = i
					break
				}
			}
		}
	}

	for i := start; i < len(proc.Legs); i++ {
		leg := proc.Legs[i]
		if leg.Altitude == nil {
			continue
		}
		fix, ok := e.fixPosition(leg.Fix)
		if !ok {
			continue
		}
		distNm := e.proj.Distance(ac.Position, fix)

		switch leg.Altitude.Kind {
		case aviation.RestrictAtOrAbove:
			if ac.TargetAltitude < leg.Altitude.Alt {
				ac.TargetAltitude = leg.Altitude.Alt
			}
			continue
		case aviation.RestrictAt, aviation.RestrictAtOrBelow, aviation.RestrictBetween:
			target := leg.Altitude.TargetAltitude(ac.Altitude)
			requiredVS := (target - ac.Altitude) / math.Max(distNm/(ac.Groundspeed/60), 0.1)
			perf := e.perf.Lookup(ac.TypeDesignator)
			threshold := 0.4 * perf.Rate.Descent
			if geo.Abs(requiredVS) > threshold || distNm < 20 {
				ac.TargetAltitude = target
				return
			}
		}
	}
}

func (e *FlightPlanExecutor) procedureFor(ac *AircraftState) *aviation.Procedure {
	if ac.Clearances.ClimbViaSID {
		if p, ok := e.airport.SIDs[ac.FlightPlan.SID]; ok {
			return &p
		}
	}
	if ac.Clearances.DescendViaSTAR {
		if p, ok := e.airport.STARs[ac.FlightPlan.STAR]; ok {
			return &p
		}
	}
	return nil
}

func (e *FlightPlanExecutor) runDirectFix(ac *AircraftState) {
	fix, ok := e.fixPosition(ac.Clearances.DirectFix)
	if !ok {
		ac.Clearances.DirectFix = ""
		return
	}
	if e.steerToward(ac, fix) {
		ac.Clearances.DirectFix = ""
	}
}

// runSIDInitialLegs handles VA/VD/VI leg cursor logic before falling
// through to route navigation.
func (e *FlightPlanExecutor) runSIDInitialLegs(ac *AircraftState) {
	leg := ac.SIDLegs[ac.SIDLegIdx]
	switch leg.Type {
	case aviation.LegVA, aviation.LegVD:
		ac.TargetHeading = geo.NormalizeHeading(leg.Heading)
		if leg.Altitude != nil && ac.Altitude >= leg.Altitude.Alt {
			ac.SIDLegIdx++
		}
	case aviation.LegVI:
		ac.TargetHeading = geo.NormalizeHeading(leg.Heading)
		route := ac.FlightPlan.Route
		if ac.CurrentFixIndex < len(route) {
			if fix, ok := e.fixPosition(route[ac.CurrentFixIndex]); ok {
				brg := e.proj.TrueBearing(ac.Position, fix)
				if geo.HeadingDifference(ac.Heading, brg) < 60 && e.distToAirport(ac) > 3 {
					ac.SIDLegIdx++
				}
			}
		}
	default:
		ac.SIDLegIdx++
	}
	if ac.SIDLegIdx >= len(ac.SIDLegs) {
		e.runRouteNavigation(ac)
	}
}

// runMissedApproach drives the missed-approach procedure, or the default
// climb-then-descend behavior when none is defined. No synthetic holding
// fix is imposed once all legs are flown.
func (e *FlightPlanExecutor) runMissedApproach(ac *AircraftState) {
	legs := ac.missedApproachLegs
	if len(legs) == 0 {
		defaultAlt := e.fieldElevation() + 3000
		ac.TargetAltitude = defaultAlt
		if ac.Altitude >= defaultAlt-50 {
			ac.FlightPhase = PhaseDescent
		}
		return
	}

	agl := ac.Altitude - e.fieldElevation()
	leg := legs[ac.missedLegIdx]
	switch leg.Type {
	case aviation.LegCA, aviation.LegVA:
		ac.TargetHeading = geo.NormalizeHeading(leg.Course)
		if leg.Altitude != nil && ac.Altitude >= leg.Altitude.Alt {
			e.advanceMissedLeg(ac, legs)
		}
	default:
		if agl < 500 {
			return
		}
		fix, ok := e.fixPosition(leg.Fix)
		if !ok {
			e.advanceMissedLeg(ac, legs)
			return
		}
		if e.steerToward(ac, fix) {
			e.advanceMissedLeg(ac, legs)
		}
	}
}

func (e *FlightPlanExecutor) advanceMissedLeg(ac *AircraftState, legs []aviation.Leg) {
	if ac.missedLegIdx < len(legs)-1 {
		ac.missedLegIdx++
	}
	// Holds at the final leg once all legs are flown.
}

// runHold drives the standard right-hand racetrack state machine.
func (e *FlightPlanExecutor) runHold(ac *AircraftState, tick uint64) {
	hs := ac.HoldingState
	fix, ok := e.fixPosition(ac.Clearances.HoldFix)
	if !ok {
		return
	}
	if hs == nil {
		if e.steerToward(ac, fix) {
			ac.HoldingState = &HoldingState{
				Phase:         HoldTurningOutbound,
				InboundCourse: e.proj.TrueBearing(fix, e.airport.Reference),
				LegStartTick:  tick,
				FixPosition:   fix,
			}
		}
		return
	}

	switch hs.Phase {
	case HoldTurningOutbound:
		outboundCourse := geo.NormalizeHeading(hs.InboundCourse + 180)
		ac.TargetHeading = outboundCourse
		if geo.HeadingDifference(ac.Heading, outboundCourse) < 5 {
			hs.Phase = HoldOutbound
			hs.LegStartTick = tick
		}
	case HoldOutbound:
		ac.TargetHeading = geo.NormalizeHeading(hs.InboundCourse + 180)
		if tick-hs.LegStartTick >= holdLegSeconds {
			hs.Phase = HoldTurningInbound
		}
	case HoldTurningInbound:
		ac.TargetHeading = hs.InboundCourse
		if geo.HeadingDifference(ac.Heading, hs.InboundCourse) < 5 {
			hs.Phase = HoldInbound
			hs.LegStartTick = tick
		}
	case HoldInbound:
		ac.TargetHeading = hs.InboundCourse
		if e.proj.Distance(ac.Position, hs.FixPosition) < 1.5 {
			hs.Phase = HoldTurningOutbound
			hs.LegStartTick = tick
		}
	}
}
