// pkg/sim/aircraft.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sim implements the simulation core: the fixed-tick scheduler,
// flight-plan executor, physics integrator, scenario generator,
// conflict/MSAW detector, and scoring engine that together own
// authoritative aircraft state for one controller session.
package sim

import (
	"fmt"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
	"github.com/google/uuid"
)

type FlightPhase string

const (
	PhaseDeparture FlightPhase = "departure"
	PhaseClimb     FlightPhase = "climb"
	PhaseCruise    FlightPhase = "cruise"
	PhaseDescent   FlightPhase = "descent"
	PhaseApproach  FlightPhase = "approach"
	PhaseFinal     FlightPhase = "final"
	PhaseLanded    FlightPhase = "landed"
	PhaseMissed    FlightPhase = "missed"
)

type Category string

const (
	CategoryArrival    Category = "arrival"
	CategoryDeparture  Category = "departure"
	CategoryOverflight Category = "overflight"
	CategoryVFR        Category = "vfr"
)

type HandoffState string

const (
	HandoffNone     HandoffState = "none"
	HandoffOffered  HandoffState = "offered"
	HandoffAccepted HandoffState = "accepted"
)

type TurnDirection string

const (
	TurnEither TurnDirection = ""
	TurnLeft   TurnDirection = "left"
	TurnRight  TurnDirection = "right"
)

type HoldPhase string

const (
	HoldTurningOutbound HoldPhase = "turning_outbound"
	HoldOutbound        HoldPhase = "outbound"
	HoldTurningInbound  HoldPhase = "turning_inbound"
	HoldInbound         HoldPhase = "inbound"
)

// HoldingState is the active-hold state machine.
type HoldingState struct {
	Phase          HoldPhase
	InboundCourse  float64
	LegStartTick   uint64
	FixPosition    geo.Point
}

// ApproachClearance names the approach type and runway a pilot has been
// cleared for.
type ApproachClearance struct {
	Type   aviation.ApproachType
	Runway string
}

// Clearances is the set of standing ATC instructions an aircraft is
// following.
type Clearances struct {
	Altitude                 *float64
	Heading                  *float64
	TurnDirection            TurnDirection
	Speed                    *float64
	Approach                 *ApproachClearance
	HoldFix                  string
	DirectFix                string
	Procedure                string
	ClimbViaSID              bool
	DescendViaSTAR           bool
	ExpectedApproach         string
	MaintainUntilEstablished bool
	HandoffFrequency         float64
	HandoffFacility          string
}

// FlightPlan is the filed route.
type FlightPlan struct {
	Departure      string
	Arrival        string
	CruiseAltitude float64
	Route          []string // fix IDs
	SID            string
	STAR           string
	Runway         string
	Squawk         string
}

// AircraftState is the central, authoritative per-aircraft record.
// Components read and mutate it in place; nothing retains a pointer to it
// across ticks.
type AircraftState struct {
	ID             string
	Callsign       string
	TypeDesignator string
	WakeCategory   aviation.WakeCategory

	Position    geo.Point
	Altitude    float64
	Heading     float64
	Speed       float64 // IAS
	Groundspeed float64
	VerticalSpeed float64
	BankAngle   float64

	TargetAltitude float64
	TargetHeading  float64
	TargetSpeed    float64

	OnGround    bool
	FlightPhase FlightPhase
	Category    Category

	FlightPlan FlightPlan
	Clearances Clearances

	CurrentFixIndex int

	OnLocalizer  bool
	OnGlideslope bool

	HandingOff              bool
	InboundHandoff          HandoffState
	InboundHandoffOfferedAt uint64 // tick of the original offer; 0 while InboundHandoff is none (an offer made on tick 0 also records 0)
	RadarHandoffState       HandoffState

	HoldingState *HoldingState

	SIDLegs  []aviation.Leg
	SIDLegIdx int

	RunwayOccupying   string
	RolloutDistanceNm float64

	VisualFollowTrafficCallsign string

	HistoryTrail []geo.Point

	Scratchpad string

	// RolloutCompleteTick is set once an aircraft finishes rollout. A landed
	// aircraft is removed on the tick its rollout completes; any aircraft
	// whose RolloutCompleteTick is more than the age-out window old is
	// removed as well.
	RolloutCompleteTick uint64
	RolloutComplete     bool

	// faultStreak counts consecutive ticks this aircraft's executor/physics
	// step failed; reset on a clean tick.
	faultStreak int
	degraded    bool

	// approach geometry cached by the executor each tick so PhysicsEngine's
	// centerline snap doesn't need a cross-component reference to
	// AirportData.
	approachLocCourse  float64
	approachThreshold  geo.Point
	approachEnd        geo.Point
	hasApproachGeometry bool

	// missedApproachLegs/missedLegIdx cache the cleared approach's missed
	// procedure so runMissedApproach doesn't need to look it back up by
	// name once the approach clearance has already been cleared.
	missedApproachLegs []aviation.Leg
	missedLegIdx       int
}

const historyTrailLen = 10

func (ac *AircraftState) pushHistory() {
	ac.HistoryTrail = append(ac.HistoryTrail, ac.Position)
	if len(ac.HistoryTrail) > historyTrailLen {
		ac.HistoryTrail = ac.HistoryTrail[len(ac.HistoryTrail)-historyTrailLen:]
	}
}

// NewAircraftID returns a fresh unique identifier for an aircraft record.
func NewAircraftID() string { return uuid.NewString() }

// CheckInvariants validates the universal per-tick invariants and returns
// the first violation found, if any. It is used by tests and can be wired
// into a debug build's per-tick assertions.
func (ac *AircraftState) CheckInvariants(fieldElevation float64) error {
	switch {
	case ac.Heading < 0 || ac.Heading >= 360:
		return fmt.Errorf("heading %f out of [0,360)", ac.Heading)
	case ac.Speed < 0:
		return fmt.Errorf("negative speed %f", ac.Speed)
	case ac.OnGround && geo.Abs(ac.Altitude-fieldElevation) > 1:
		return fmt.Errorf("on ground but altitude %f != field elevation %f", ac.Altitude, fieldElevation)
	case ac.OnLocalizer && ac.FlightPhase != PhaseFinal && ac.FlightPhase != PhaseApproach:
		return fmt.Errorf("on localizer but phase is %s", ac.FlightPhase)
	case ac.InboundHandoff == HandoffNone && ac.InboundHandoffOfferedAt != 0:
		return fmt.Errorf("inboundHandoff=%s inconsistent with offeredAt=%d", ac.InboundHandoff, ac.InboundHandoffOfferedAt)
	case ac.CurrentFixIndex < 0 || ac.CurrentFixIndex > len(ac.FlightPlan.Route):
		return fmt.Errorf("currentFixIndex %d out of range", ac.CurrentFixIndex)
	case ac.HoldingState != nil && ac.Clearances.HoldFix == "":
		return fmt.Errorf("holdingState set without a holdFix clearance")
	}
	return nil
}
