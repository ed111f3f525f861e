// pkg/aviation/errors.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

// Command validation errors; surfaced to the controller via
// commandResponse{success:false, error}, never mutate aircraft state.
var (
	ErrUnknownCallsign       = errors.New("no aircraft with that callsign")
	ErrUnknownFix            = errors.New("unknown fix")
	ErrRunwayNotConfigured   = errors.New("runway not in runway configuration")
	ErrFrequencyMismatch     = errors.New("frequency does not match any facility")
	ErrBelowApproachMinimums = errors.New("weather is below approach minimums")
	ErrUnknownApproach       = errors.New("unknown approach")
	ErrUnknownRunway         = errors.New("unknown runway")
	ErrInvalidClearance      = errors.New("clearance is inconsistent with current state")
)

// Per-aircraft execution errors; logged, aircraft degraded, not removed
// unless repeated.
var (
	ErrMissingRouteFix        = errors.New("required fix not present in airport data")
	ErrNonFiniteState         = errors.New("physics produced a non-finite value")
	ErrInconsistentClearance  = errors.New("inconsistent clearance combination")
)

// Session-fatal errors.
var (
	ErrAirportLoadFailed = errors.New("airport data failed to load")
	ErrTickOverrun       = errors.New("tick loop overran by more than 5x the expected interval")
)
