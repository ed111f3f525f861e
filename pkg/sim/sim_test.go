// pkg/sim/sim_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
)

// testAirport returns a minimal single-runway airport: runway "16" heading
// 157 true, field elevation 167 ft.
func testAirport() *aviation.AirportData {
	ref := geo.Point{Lat: 33.9425, Lon: -118.4081}
	proj := geo.NewProjection(ref)
	course := 157.0
	threshold := ref
	end := proj.Destination(threshold, course, 2.0)

	ap := &aviation.AirportData{
		ICAO:        "KXXX",
		Reference:   ref,
		ElevationFt: 167,
		Runways: map[string]aviation.Runway{
			"16": {
				ID:              "16",
				Heading:         course,
				Threshold:       threshold,
				End:             end,
				LengthFt:        9000,
				ElevationFt:     167,
				ILSAvailable:    true,
				ILSCourse:       course,
				GlideslopeAngle: 3,
			},
		},
		Fixes: map[string]aviation.Fix{
			"WPT01": {ID: "WPT01", Location: proj.Destination(ref, 340, 15)},
			"WPT02": {ID: "WPT02", Location: proj.Destination(ref, 340, 25)},
		},
		Navaids:     map[string]aviation.Navaid{},
		SIDs:        map[string]aviation.Procedure{},
		STARs:       map[string]aviation.Procedure{},
		Approaches: map[string][]aviation.Approach{
			"16": {{Type: aviation.ApproachILS, Runway: "16", MinimumCeiling: 200, MinimumVisibility: 0.5}},
		},
		Frequencies: map[string]float64{"tower": 118.3, "center": 125.0},
		Projection:  proj,
	}
	return ap
}

func testAircraft(id string) *AircraftState {
	return &AircraftState{
		ID:             id,
		Callsign:       "AAL1",
		TypeDesignator: "B738",
		WakeCategory:   aviation.WakeLarge,
		Category:       CategoryArrival,
		FlightPhase:    PhaseDescent,
		FlightPlan:     FlightPlan{Runway: "16", Squawk: "1200"},
	}
}
