// pkg/sim/physics.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"math"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
)

// PhysicsEngine integrates kinematic state toward the targets the
// FlightPlanExecutor set. It holds no per-aircraft state of its own;
// everything it needs lives on the AircraftState it's handed.
type PhysicsEngine struct {
	perf *aviation.PerformanceDB
	proj geo.Projection
}

func NewPhysicsEngine(perf *aviation.PerformanceDB, proj geo.Projection) *PhysicsEngine {
	return &PhysicsEngine{perf: perf, proj: proj}
}

const (
	maxTurnRateDegPerSec  = 3.0
	maxBankSlewDegPerSec  = 10.0
	maxVSSlewFpmPerSec    = 300.0
	maxAccelKtPerSec      = 2.0
	maxDecelKtPerSec      = 1.5
	maxSpeedBelow10k      = 250.0
	taxiSpeedTarget       = 15.0
	groundDecelAboveTaxi  = 4.0
	groundDecelBelowTaxi  = 2.0
	localizerSnapMaxXtkNm = 0.3
)

// updateAircraft mutates kinematic fields to converge ac toward its
// target* fields over dt seconds, given the current wind.
func (p *PhysicsEngine) updateAircraft(ac *AircraftState, wind aviation.WindModel, dt float64) error {
	perf := p.perf.Lookup(ac.TypeDesignator)

	p.integrateTurn(ac, perf, dt)
	p.integrateAltitude(ac, perf, dt)
	p.integrateSpeed(ac, perf, dt)
	p.integratePosition(ac, wind, dt)

	if ac.OnLocalizer {
		p.snapToCenterline(ac)
	}

	if err := checkFinite(ac); err != nil {
		return err
	}
	ac.pushHistory()
	return nil
}

func checkFinite(ac *AircraftState) error {
	vals := []float64{ac.Position.Lat, ac.Position.Lon, ac.Altitude, ac.Heading, ac.Speed, ac.Groundspeed, ac.VerticalSpeed}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return aviation.ErrNonFiniteState
		}
	}
	return nil
}

// integrateTurn advances heading and bank angle toward targetHeading.
func (p *PhysicsEngine) integrateTurn(ac *AircraftState, perf aviation.AircraftPerformance, dt float64) {
	turn := geo.HeadingSignedTurn(ac.Heading, ac.TargetHeading)
	switch ac.Clearances.TurnDirection {
	case TurnLeft:
		if turn > 0 {
			turn -= 360
		}
	case TurnRight:
		if turn < 0 {
			turn += 360
		}
	}

	// Rate at 25 degrees of bank, clamped to the regulatory 3 deg/s
	// standard rate.
	// Coordinated-turn rate in deg/s is 1091 * tan(bank) / TAS(kt).
	tas := math.Max(iasToTAS(ac.Speed, ac.Altitude), 1)
	maxRate := math.Min(maxTurnRateDegPerSec, 1091*math.Tan(geo.Radians(25))/tas)

	step := geo.Clamp(turn, -maxRate*dt, maxRate*dt)
	ac.Heading = geo.NormalizeHeading(ac.Heading + step)

	targetBank := geo.Clamp(turn, -perf.Turn.MaxBankAngle, perf.Turn.MaxBankAngle)
	if geo.Abs(turn) < 0.5 {
		targetBank = 0
	}
	bankStep := geo.Clamp(targetBank-ac.BankAngle, -maxBankSlewDegPerSec*dt, maxBankSlewDegPerSec*dt)
	ac.BankAngle += bankStep
}

func (p *PhysicsEngine) integrateAltitude(ac *AircraftState, perf aviation.AircraftPerformance, dt float64) {
	delta := ac.TargetAltitude - ac.Altitude
	if geo.Abs(delta) <= 50 {
		ac.Altitude = ac.TargetAltitude
		ac.VerticalSpeed = 0
		return
	}

	sign := geo.Sign(delta)
	var rateCap float64
	if sign > 0 {
		rateCap = perf.Rate.Climb
	} else {
		rateCap = perf.Rate.Descent
	}

	if ac.OnGlideslope {
		// Glideslope geometry drives descent rate directly: 3 deg angle at
		// groundspeed gs means VS = gs * tan(3deg) * 101.3 (kt -> fpm at
		// that angle), adjusted by a proportional term toward the beam.
		gsRateFpm := ac.Groundspeed * math.Tan(geo.Radians(3)) * 101.3
		proportional := geo.Abs(delta) / 10 * 60
		rateCap = math.Min(gsRateFpm+proportional, rateCap*1.5)
	} else {
		proportional := geo.Abs(delta) / 10 * 60
		rateCap = math.Min(rateCap, math.Max(proportional, 1))
	}

	targetVS := sign * rateCap
	vsStep := geo.Clamp(targetVS-ac.VerticalSpeed, -maxVSSlewFpmPerSec*dt, maxVSSlewFpmPerSec*dt)
	ac.VerticalSpeed += vsStep

	newAlt := ac.Altitude + ac.VerticalSpeed*dt/60
	if sign > 0 && newAlt > ac.TargetAltitude {
		newAlt = ac.TargetAltitude
	} else if sign < 0 && newAlt < ac.TargetAltitude {
		newAlt = ac.TargetAltitude
	}
	ac.Altitude = newAlt
}

func (p *PhysicsEngine) integrateSpeed(ac *AircraftState, perf aviation.AircraftPerformance, dt float64) {
	target := ac.TargetSpeed
	vmaxBelow10k := maxSpeedBelow10k
	if ac.Altitude < 10000 {
		target = math.Min(target, vmaxBelow10k)
	}
	target = geo.Clamp(target, perf.Speed.Min, perf.Speed.MaxTAS)
	if ac.OnGround {
		target = math.Min(target, ac.TargetSpeed)
	}

	delta := target - ac.Speed
	rate := maxAccelKtPerSec
	if delta < 0 {
		rate = maxDecelKtPerSec
	}
	step := geo.Clamp(delta, -rate*dt, rate*dt)
	ac.Speed += step
}

func (p *PhysicsEngine) integratePosition(ac *AircraftState, wind aviation.WindModel, dt float64) {
	tas := iasToTAS(ac.Speed, ac.Altitude)
	airVec := geo.HeadingVector(ac.Heading).Scale(tas / 3600)
	windVec := wind.GetWindVector(ac.Position, ac.Altitude)
	groundVec := airVec.Add(windVec)
	ac.Groundspeed = groundVec.Length() * 3600

	moved := groundVec.Scale(dt)
	cur := p.proj.Project(ac.Position)
	ac.Position = p.proj.Unproject(cur.Add(moved))
}

// iasToTAS applies the standard ~2%-per-1000ft density correction.
func iasToTAS(ias, altitudeFt float64) float64 {
	return ias * (1 + 0.02*altitudeFt/1000)
}

// snapToCenterline removes residual cross-track drift once established on
// the localizer, provided the residual is within tolerance: the aircraft
// stays free to fly a non-zero heading offset, but its position is pulled
// back onto the beam each tick it's within 0.3 nm of it.
func (p *PhysicsEngine) snapToCenterline(ac *AircraftState) {
	if !ac.hasApproachGeometry {
		return
	}
	xtk, alongTrack := p.proj.CrossTrack(ac.Position, ac.approachThreshold, ac.approachLocCourse)
	if geo.Abs(xtk) > localizerSnapMaxXtkNm {
		return
	}
	ac.Position = p.proj.Destination(ac.approachThreshold, ac.approachLocCourse, alongTrack)
}

// SetApproachGeometry lets the executor pass the active runway down to physics
// without the two components holding a cross-component reference; the
// executor stores the looked-up runway on the aircraft each tick via
// SetApproachGeometry before physics runs.
func (ac *AircraftState) SetApproachGeometry(locCourse float64, threshold, end geo.Point) {
	ac.approachLocCourse = locCourse
	ac.approachThreshold = threshold
	ac.approachEnd = end
	ac.hasApproachGeometry = true
}

// updateGroundRollout decelerates a landed aircraft along the runway true
// bearing and releases the runway once it slows to taxi speed.
func (p *PhysicsEngine) updateGroundRollout(ac *AircraftState, runwayTrueBearing float64, dt float64) {
	decel := groundDecelBelowTaxi
	if ac.Speed > taxiSpeedTarget {
		decel = groundDecelAboveTaxi
	}
	ac.Speed = math.Max(0, ac.Speed-decel*dt)
	ac.Groundspeed = ac.Speed

	distNm := ac.Speed * dt / 3600
	ac.RolloutDistanceNm += distNm
	cur := p.proj.Project(ac.Position)
	ac.Position = p.proj.Unproject(cur.Add(geo.HeadingVector(runwayTrueBearing).Scale(distNm)))

	if ac.Speed <= taxiSpeedTarget && ac.RunwayOccupying != "" {
		ac.RunwayOccupying = ""
		ac.RolloutComplete = true
	}
}
