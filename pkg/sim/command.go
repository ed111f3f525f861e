// pkg/sim/command.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/desponda/tracon-sim/pkg/aviation"
)

type CommandKind string

const (
	CmdAltitude             CommandKind = "altitude"
	CmdHeading              CommandKind = "heading"
	CmdSpeed                CommandKind = "speed"
	CmdApproach             CommandKind = "approach"
	CmdDirect               CommandKind = "direct"
	CmdHold                 CommandKind = "hold"
	CmdHandoff              CommandKind = "handoff"
	CmdGoAround             CommandKind = "goAround"
	CmdDescendViaSTAR       CommandKind = "descendViaSTAR"
	CmdClimbViaSID          CommandKind = "climbViaSID"
	CmdResumeOwnNavigation  CommandKind = "resumeOwnNavigation"
	CmdExpectApproach       CommandKind = "expectApproach"
	CmdExpectRunway         CommandKind = "expectRunway"
	CmdCancelApproach       CommandKind = "cancelApproach"
	CmdRadarHandoff         CommandKind = "radarHandoff"
	CmdRequestFieldSight    CommandKind = "requestFieldSight"
	CmdRequestTrafficSight  CommandKind = "requestTrafficSight"
)

// ATCCommand is one parsed controller instruction. The text parser that
// produces these lives outside the core; the core only ever dispatches
// already-parsed commands.
type ATCCommand struct {
	Kind     CommandKind
	Callsign string
	RawText  string

	Altitude         float64
	Heading          float64
	TurnDirection    TurnDirection
	Speed            float64
	ApproachType     aviation.ApproachType
	Runway           string
	MaintainUntilEst bool
	Fix              string
	Frequency        float64
	Facility         string
}

// QueuedCommand pairs a command with the tick it arrived on.
type QueuedCommand struct {
	Tick    uint64
	Command ATCCommand
}

// CommandResponse is the outbound per-command acknowledgement.
type CommandResponse struct {
	Success bool
	Error   string
}

// CommandDispatcher applies queued commands to AircraftManager state.
type CommandDispatcher struct {
	airport *aviation.AirportData
	weather *aviation.WeatherState
}

func NewCommandDispatcher(airport *aviation.AirportData, weather *aviation.WeatherState) *CommandDispatcher {
	return &CommandDispatcher{airport: airport, weather: weather}
}

// Dispatch applies one command, returning the response the transport layer
// relays to the controller. Invalid commands never mutate aircraft state.
func (d *CommandDispatcher) Dispatch(mgr *AircraftManager, cmd ATCCommand) CommandResponse {
	ac := mgr.GetByCallsign(cmd.Callsign)
	if ac == nil {
		return fail(aviation.ErrUnknownCallsign)
	}

	switch cmd.Kind {
	case CmdAltitude:
		ac.Clearances.Altitude = ptr(cmd.Altitude)
		ac.TargetAltitude = cmd.Altitude

	case CmdHeading:
		ac.Clearances.Heading = ptr(cmd.Heading)
		ac.Clearances.TurnDirection = cmd.TurnDirection
		ac.Clearances.DirectFix = ""
		ac.TargetHeading = cmd.Heading

	case CmdSpeed:
		ac.Clearances.Speed = ptr(cmd.Speed)
		ac.TargetSpeed = cmd.Speed

	case CmdApproach:
		if _, ok := d.airport.Runways[cmd.Runway]; !ok {
			return fail(aviation.ErrUnknownRunway)
		}
		appr, ok := lookupApproach(d.airport, cmd.Runway, cmd.ApproachType)
		if !ok {
			return fail(aviation.ErrUnknownApproach)
		}
		if d.weather != nil && belowMinimums(d.weather, appr) {
			return fail(aviation.ErrBelowApproachMinimums)
		}
		ac.Clearances.Approach = &ApproachClearance{Type: cmd.ApproachType, Runway: cmd.Runway}
		ac.Clearances.MaintainUntilEstablished = cmd.MaintainUntilEst
		if cmd.MaintainUntilEst {
			ac.Clearances.Altitude = ptr(ac.Altitude)
		}

	case CmdDirect:
		if _, ok := d.airport.Fixes[cmd.Fix]; !ok {
			if _, ok2 := d.airport.Navaids[cmd.Fix]; !ok2 {
				return fail(aviation.ErrUnknownFix)
			}
		}
		ac.Clearances.DirectFix = cmd.Fix
		ac.Clearances.Heading = nil

	case CmdHold:
		if _, ok := d.airport.Fixes[cmd.Fix]; !ok {
			if _, ok2 := d.airport.Navaids[cmd.Fix]; !ok2 {
				return fail(aviation.ErrUnknownFix)
			}
		}
		ac.Clearances.HoldFix = cmd.Fix
		ac.HoldingState = nil // re-enter from the top on a fresh hold clearance

	case CmdHandoff:
		freq, ok := matchingFrequency(d.airport, cmd.Frequency)
		if !ok {
			return fail(aviation.ErrFrequencyMismatch)
		}
		ac.HandingOff = true
		ac.Clearances.HandoffFrequency = freq
		ac.Clearances.HandoffFacility = cmd.Facility

	case CmdGoAround:
		ac.FlightPhase = PhaseMissed
		ac.Clearances.Approach = nil
		ac.OnLocalizer = false
		ac.OnGlideslope = false

	case CmdDescendViaSTAR:
		ac.Clearances.DescendViaSTAR = true

	case CmdClimbViaSID:
		ac.Clearances.ClimbViaSID = true

	case CmdResumeOwnNavigation:
		ac.Clearances.Heading = nil
		ac.Clearances.TurnDirection = TurnEither
		ac.Clearances.DirectFix = ""

	case CmdExpectApproach:
		ac.Clearances.ExpectedApproach = string(cmd.ApproachType)

	case CmdExpectRunway:
		ac.FlightPlan.Runway = cmd.Runway

	case CmdCancelApproach:
		ac.Clearances.Approach = nil
		ac.OnLocalizer = false
		ac.OnGlideslope = false

	case CmdRadarHandoff:
		ac.RadarHandoffState = HandoffOffered

	case CmdRequestFieldSight, CmdRequestTrafficSight:
		// Pilot-report acknowledgements; no state mutation in the core.

	default:
		return fail(fmt.Errorf("unrecognized command kind %q", cmd.Kind))
	}

	// The first successful instruction to an aircraft whose inbound handoff
	// is outstanding is the controller taking it onto frequency.
	if ac.InboundHandoff == HandoffOffered {
		ac.InboundHandoff = HandoffAccepted
	}

	return CommandResponse{Success: true}
}

func ptr(v float64) *float64 { return &v }

func fail(err error) CommandResponse { return CommandResponse{Success: false, Error: err.Error()} }

func lookupApproach(airport *aviation.AirportData, runway string, t aviation.ApproachType) (aviation.Approach, bool) {
	for _, a := range airport.Approaches[runway] {
		if a.Type == t {
			return a, true
		}
	}
	return aviation.Approach{}, false
}

func belowMinimums(w *aviation.WeatherState, appr aviation.Approach) bool {
	if w.HasCeiling && w.CeilingFtAGL < appr.MinimumCeiling {
		return true
	}
	return w.VisibilitySM < appr.MinimumVisibility
}

func matchingFrequency(airport *aviation.AirportData, freq float64) (float64, bool) {
	for _, f := range airport.Frequencies {
		if f == freq {
			return f, true
		}
	}
	return 0, false
}
