// pkg/aviation/callsigns.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"

	"github.com/desponda/tracon-sim/pkg/rand"
)

// Airline is one entry of the weighted callsign table used to spawn
// scenario traffic.
type Airline struct {
	ICAO   string
	Weight float64
	Fleet  FleetClass
}

type FleetClass int

const (
	FleetMainline FleetClass = iota
	FleetRegional
	FleetCargo
)

var mainlineTypes = []string{"B738", "A320", "A21N", "B737"}
var regionalTypes = []string{"CRJ9", "CRJ7", "CRJ2", "E75L", "E170", "E145"}
var cargoTypes = []string{"B738"}
var vfrTypes = []string{"C172", "C182", "SR22", "C56X", "CL30"}

var Airlines = []Airline{
	{ICAO: "AAL", Weight: 14, Fleet: FleetMainline},
	{ICAO: "DAL", Weight: 14, Fleet: FleetMainline},
	{ICAO: "UAL", Weight: 12, Fleet: FleetMainline},
	{ICAO: "SWA", Weight: 16, Fleet: FleetMainline},
	{ICAO: "JBU", Weight: 7, Fleet: FleetMainline},
	{ICAO: "NKS", Weight: 6, Fleet: FleetMainline},
	{ICAO: "MXY", Weight: 4, Fleet: FleetMainline},
	{ICAO: "FFT", Weight: 5, Fleet: FleetMainline},
	{ICAO: "RPA", Weight: 6, Fleet: FleetRegional},
	{ICAO: "EDV", Weight: 6, Fleet: FleetRegional},
	{ICAO: "SKW", Weight: 6, Fleet: FleetRegional},
	{ICAO: "PDT", Weight: 3, Fleet: FleetRegional},
	{ICAO: "JIA", Weight: 4, Fleet: FleetRegional},
	{ICAO: "FDX", Weight: 4, Fleet: FleetCargo},
	{ICAO: "UPS", Weight: 4, Fleet: FleetCargo},
}

func typesForFleet(f FleetClass) []string {
	switch f {
	case FleetRegional:
		return regionalTypes
	case FleetCargo:
		return cargoTypes
	default:
		return mainlineTypes
	}
}

// SampleAirline draws a weighted random airline, returning it and a type
// designator drawn from its fleet.
func SampleAirline(r *rand.Rand) (Airline, string) {
	al, ok := rand.SampleWeighted(r, Airlines, func(a Airline) float64 { return a.Weight })
	if !ok {
		al = Airlines[0]
	}
	types := typesForFleet(al.Fleet)
	return al, rand.SampleSlice(r, types)
}

// GenerateCallsign produces a flight number for the given airline; seen
// tracks callsigns already issued this session so collisions are retried.
func GenerateCallsign(r *rand.Rand, al Airline, seen map[string]bool) string {
	for i := 0; i < 1000; i++ {
		num := 100 + r.Intn(8899)
		cs := fmt.Sprintf("%s%d", al.ICAO, num)
		if !seen[cs] {
			seen[cs] = true
			return cs
		}
	}
	// Fall back to a wide number space; collisions here would mean the
	// session has spawned an implausible number of aircraft.
	cs := fmt.Sprintf("%s%d", al.ICAO, 10000+r.Intn(89999))
	seen[cs] = true
	return cs
}

// GenerateVFRCallsign produces a GA N-number callsign and a GA type.
func GenerateVFRCallsign(r *rand.Rand, seen map[string]bool) (callsign, typeDesignator string) {
	for i := 0; i < 1000; i++ {
		cs := fmt.Sprintf("N%d%s", 100+r.Intn(8899), string(rune('A'+r.Intn(26))))
		if !seen[cs] {
			seen[cs] = true
			return cs, rand.SampleSlice(r, vfrTypes)
		}
	}
	cs := fmt.Sprintf("N%dX", 10000+r.Intn(89999))
	seen[cs] = true
	return cs, rand.SampleSlice(r, vfrTypes)
}
