// pkg/sim/approach.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"math"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
)

const (
	locCaptureMaxXtkNm    = 0.3
	locCaptureMaxHdgDelta = 45.0
	locCaptureMaxDistNm   = 35.0
	locCaptureMaxFrontDeg = 120.0
	locUncaptureXtkNm     = 0.5
	locUncaptureDistNm    = 3.0
	gsCaptureToleranceFt  = 300.0
	gsCaptureMaxDistNm    = 20.0
	gsFallbackDistNm      = 5.0
	visualInterceptXtkNm  = 0.15
	visualCaptureXtkNm    = 1.5
	visualCaptureDistNm   = 15.0
)

// runApproach dispatches to the ILS, RNAV, or visual approach-tracking
// logic keyed on clearances.approach.type.
func (e *FlightPlanExecutor) runApproach(ac *AircraftState, all []*AircraftState, tick uint64) {
	clr := ac.Clearances.Approach
	rwy, ok := e.airport.Runways[clr.Runway]
	if !ok {
		ac.Clearances.Approach = nil
		return
	}
	locCourse := rwy.TrueBearing(e.proj)
	dist := e.proj.Distance(ac.Position, rwy.Threshold)
	xtk, _ := e.proj.CrossTrack(ac.Position, rwy.Threshold, locCourse)
	bearingToThreshold := e.proj.TrueBearing(ac.Position, rwy.Threshold)
	frontAngle := geo.HeadingDifference(bearingToThreshold, locCourse)

	ac.SetApproachGeometry(locCourse, rwy.Threshold, rwy.End)
	e.cacheMissedLegs(ac, rwy)

	switch clr.Type {
	case aviation.ApproachILS:
		e.runILS(ac, rwy, locCourse, dist, xtk, frontAngle)
	case aviation.ApproachRNAV:
		e.runRNAV(ac, rwy, locCourse, dist)
	case aviation.ApproachVisual:
		e.runVisual(ac, all, rwy, locCourse, dist, xtk)
	}

	e.approachSpeedSchedule(ac, dist)
	e.checkLandingTrigger(ac, rwy, dist)
}

func (e *FlightPlanExecutor) cacheMissedLegs(ac *AircraftState, rwy aviation.Runway) {
	if ac.missedApproachLegs != nil {
		return
	}
	for _, appr := range e.airport.Approaches[rwy.ID] {
		if appr.Type == ac.Clearances.Approach.Type {
			ac.missedApproachLegs = appr.MissedLegs
			return
		}
	}
}

func (e *FlightPlanExecutor) runILS(ac *AircraftState, rwy aviation.Runway, locCourse, dist, xtk, frontAngle float64) {
	headingToLoc := geo.HeadingDifference(ac.Heading, locCourse)

	if ac.OnLocalizer {
		if math.Abs(xtk) > locUncaptureXtkNm && dist > locUncaptureDistNm {
			ac.OnLocalizer = false
			ac.OnGlideslope = false
		}
	}

	if !ac.OnLocalizer {
		captured := math.Abs(xtk) < locCaptureMaxXtkNm &&
			headingToLoc < locCaptureMaxHdgDelta &&
			dist < locCaptureMaxDistNm &&
			frontAngle < locCaptureMaxFrontDeg

		if captured {
			ac.OnLocalizer = true
			ac.FlightPhase = PhaseFinal
			ac.Clearances.Heading = nil
			ac.Clearances.TurnDirection = TurnEither
			if ac.Clearances.MaintainUntilEstablished {
				ac.Clearances.Altitude = nil
			}
		} else if ac.Clearances.Heading == nil && frontAngle < locCaptureMaxFrontDeg {
			// ARM mode: steer toward the beam from the inbound side.
			bias := geo.Clamp(geo.Degrees(math.Atan2(xtk, 1)), -30, 30)
			ac.TargetHeading = geo.NormalizeHeading(locCourse - bias)
		} else if frontAngle >= locCaptureMaxFrontDeg && ac.Clearances.Heading == nil {
			// Wrong side: reposition via a point 15 nm out on the reciprocal.
			reposition := e.proj.Destination(rwy.Threshold, geo.NormalizeHeading(locCourse+180), 15)
			ac.TargetHeading = e.proj.TrueBearing(ac.Position, reposition)
		} else if ac.Clearances.Heading != nil && math.Abs(xtk) < 2 {
			// Within 2 nm of the beam, override any standing ATC heading.
			ac.TargetHeading = locCourse
		}
	} else {
		ac.TargetHeading = locCourse
	}

	e.runGlideslope(ac, rwy, dist)
	e.checkUnstableGoAround(ac)
}

func (e *FlightPlanExecutor) runGlideslope(ac *AircraftState, rwy aviation.Runway, dist float64) {
	gsAngle := rwy.GlideslopeAngle
	gsAlt := rwy.ElevationFt + dist*6076.12*math.Tan(geo.Radians(gsAngle))

	if !ac.OnGlideslope {
		withinTolerance := math.Abs(ac.Altitude-gsAlt) <= gsCaptureToleranceFt && dist < gsCaptureMaxDistNm
		fallback := dist < gsFallbackDistNm
		if withinTolerance || fallback {
			ac.OnGlideslope = true
		} else if ac.Altitude < gsAlt {
			ac.TargetAltitude = ac.Altitude // hold level until GS meets the aircraft
		} else {
			ac.TargetAltitude = gsAlt - 200 // anticipate closure from above
		}
		return
	}
	ac.TargetAltitude = gsAlt
}

func (e *FlightPlanExecutor) checkUnstableGoAround(ac *AircraftState) {
	agl := ac.Altitude - e.fieldElevation()
	if !ac.OnGlideslope && agl < 1000 && ac.VerticalSpeed < -1500 {
		ac.FlightPhase = PhaseMissed
		ac.Clearances.Approach = nil
		ac.OnLocalizer = false
		ac.OnGlideslope = false
	}
}

func (e *FlightPlanExecutor) runRNAV(ac *AircraftState, rwy aviation.Runway, locCourse, dist float64) {
	ac.TargetHeading = e.proj.TrueBearing(ac.Position, rwy.Threshold)
	if dist < 10 {
		ac.FlightPhase = PhaseFinal
	}
	e.runGlideslope(ac, rwy, dist)
	e.checkUnstableGoAround(ac)
}

func (e *FlightPlanExecutor) runVisual(ac *AircraftState, all []*AircraftState, rwy aviation.Runway, locCourse, dist, xtk float64) {
	bearingToThreshold := e.proj.TrueBearing(ac.Position, rwy.Threshold)
	frontAngle := geo.HeadingDifference(bearingToThreshold, locCourse)

	if frontAngle >= locCaptureMaxFrontDeg {
		reposition := e.proj.Destination(rwy.Threshold, geo.NormalizeHeading(locCourse+180), 15)
		ac.TargetHeading = e.proj.TrueBearing(ac.Position, reposition)
		return
	}

	if math.Abs(xtk) > visualInterceptXtkNm {
		bias := geo.Clamp(xtk*-15, -30, 30)
		ac.TargetHeading = geo.NormalizeHeading(locCourse + bias)
	} else {
		ac.TargetHeading = locCourse
	}

	if math.Abs(xtk) < visualCaptureXtkNm && dist < visualCaptureDistNm {
		ac.OnLocalizer = true
		ac.FlightPhase = PhaseFinal
	}
	if ac.OnLocalizer {
		e.runGlideslope(ac, rwy, dist)
	}

	if ac.VisualFollowTrafficCallsign != "" {
		e.applyVisualFollowSpacing(ac, all)
	}
}

func (e *FlightPlanExecutor) applyVisualFollowSpacing(ac *AircraftState, all []*AircraftState) {
	var lead *AircraftState
	for _, other := range all {
		if other.Callsign == ac.VisualFollowTrafficCallsign {
			lead = other
			break
		}
	}
	if lead == nil {
		return
	}
	sep := e.proj.Distance(ac.Position, lead.Position)
	minSep := aviation.WakeSeparationNm(lead.WakeCategory, ac.WakeCategory)
	if sep < minSep {
		perf := e.perf.Lookup(ac.TypeDesignator)
		ac.TargetSpeed = math.Min(lead.Speed-10, perf.Speed.Min+10)
	}
}

// approachSpeedSchedule implements the progressive approach speed profile:
// Vapp+20 by 10nm, Vapp+10 with GS at 10nm, Vapp at 6nm, Vref at 2nm.
func (e *FlightPlanExecutor) approachSpeedSchedule(ac *AircraftState, dist float64) {
	perf := e.perf.Lookup(ac.TypeDesignator)
	switch {
	case dist <= 2:
		ac.TargetSpeed = perf.Speed.Vref
	case dist <= 6:
		ac.TargetSpeed = perf.Speed.Vapp
	case dist <= 10 && ac.OnGlideslope:
		ac.TargetSpeed = perf.Speed.Vapp + 10
	case dist <= 10:
		ac.TargetSpeed = perf.Speed.Vapp + 20
	default:
		ac.TargetSpeed = perf.Speed.Vapp + 20
	}
}

// checkLandingTrigger implements the landing condition and touchdown
// state transition shared by ILS and RNAV approaches.
func (e *FlightPlanExecutor) checkLandingTrigger(ac *AircraftState, rwy aviation.Runway, dist float64) {
	fieldElev := e.fieldElevation()
	gsAlt := rwy.ElevationFt + dist*6076.12*math.Tan(geo.Radians(rwy.GlideslopeAngle))

	primary := dist <= 0.5 && ac.Altitude <= gsAlt+100 && ac.Altitude < fieldElev+500
	secondary := dist <= 0.15 && ac.Altitude < fieldElev+200
	if !primary && !secondary {
		return
	}

	perf := e.perf.Lookup(ac.TypeDesignator)
	ac.FlightPhase = PhaseLanded
	ac.OnGround = true
	ac.Altitude = fieldElev
	ac.Heading = rwy.TrueBearing(e.proj)
	ac.Speed = perf.Speed.Vref
	ac.TargetSpeed = taxiSpeedTarget
	ac.RunwayOccupying = rwy.ID
	ac.RolloutDistanceNm = 0
	ac.OnLocalizer = false
	ac.OnGlideslope = false
}

// runDefaultSpeed implements the pilot's unmanaged speed target when ATC
// hasn't issued a speed clearance.
func (e *FlightPlanExecutor) runDefaultSpeed(ac *AircraftState) {
	if ac.Clearances.Speed != nil || ac.FlightPhase == PhaseApproach || ac.FlightPhase == PhaseFinal {
		return
	}
	perf := e.perf.Lookup(ac.TypeDesignator)

	cap := perf.Speed.CruiseTAS
	if ac.Altitude < 10000 {
		cap = maxSpeedBelow10k
	}

	switch ac.Category {
	case CategoryArrival:
		brg := e.bearingToAirport(ac)
		off := geo.HeadingDifference(ac.Heading, brg)
		if off > 90 {
			ac.TargetSpeed = math.Min(cap, 250)
			return
		}
		dist := e.distToAirport(ac)
		floor := perf.Speed.Vapp + 20
		var target float64
		switch {
		case dist > 30:
			target = 250
		case dist > 20:
			target = 230
		case dist > 15:
			target = 220
		case dist > 10:
			target = 210
		default:
			target = 190
		}
		ac.TargetSpeed = math.Max(math.Min(cap, target), floor)
	case CategoryDeparture:
		agl := ac.Altitude - e.fieldElevation()
		if agl < 3000 {
			ac.TargetSpeed = math.Min(cap, 200)
		} else {
			ac.TargetSpeed = math.Min(cap, 250)
		}
	default:
		ac.TargetSpeed = math.Min(cap, 250)
	}
}
