// cmd/atcsimd/main.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Command atcsimd runs the tracon-sim radar training server: it loads an
// airport document, opens a websocket listener, and hosts controller
// sessions against the simulation core.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/log"
	"github.com/desponda/tracon-sim/pkg/transport"
	"github.com/desponda/tracon-sim/pkg/util"
)

func main() {
	addr := flag.String("addr", ":8700", "listen address")
	airportPath := flag.String("airport", "", "path to airport JSON document")
	logLevel := flag.String("log-level", "info", "debug|info|warn|error")
	logDir := flag.String("log-dir", "", "log directory (default tracon-logs)")
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	if *airportPath == "" {
		fmt.Fprintln(os.Stderr, "-airport is required")
		os.Exit(1)
	}
	data, err := os.ReadFile(*airportPath)
	if err != nil {
		lg.Errorf("reading airport data: %v", err)
		os.Exit(1)
	}
	airport, err := aviation.LoadAirportData(data)
	if err != nil {
		lg.Errorf("loading airport data: %v", err)
		os.Exit(1)
	}
	if err := validateAirport(airport); err != nil {
		lg.Errorf("airport data failed validation: %v", err)
		os.Exit(1)
	}
	lg.Infof("loaded airport %s (%d runways, %d fixes)", airport.ICAO, len(airport.Runways), len(airport.Fixes))

	srv := transport.NewServer(lg)
	lg.Infof("listening on %s", *addr)
	if err := http.ListenAndServe(*addr, srv.Routes()); err != nil {
		lg.Errorf("server exited: %v", err)
		os.Exit(1)
	}
}

// validateAirport is a startup sanity check separate from LoadAirportData's
// parse-time validation; it's run once at process start so a malformed
// document fails fast instead of mid-session, reporting every problem it
// finds rather than just the first.
func validateAirport(airport *aviation.AirportData) error {
	el := &util.ErrorLogger{}
	el.Push(airport.ICAO)
	defer el.Pop()

	if len(airport.Runways) == 0 {
		el.ErrorString("airport has no runways defined")
	}

	validateProcedures(el, airport, "SIDs", airport.SIDs)
	validateProcedures(el, airport, "STARs", airport.STARs)

	el.Push("approaches")
	for rwyID, approaches := range airport.Approaches {
		if _, ok := airport.Runways[rwyID]; !ok {
			el.ErrorString("approach group %q has no matching runway", rwyID)
		}
		for _, appr := range approaches {
			if _, ok := airport.Runways[appr.Runway]; !ok {
				el.ErrorString("%s approach for %q references unknown runway %q", appr.Type, rwyID, appr.Runway)
			}
			validateLegs(el, airport, appr.MissedLegs)
		}
	}
	el.Pop()

	if el.HaveErrors() {
		return fmt.Errorf("%s", el.String())
	}
	return nil
}

func validateProcedures(el *util.ErrorLogger, airport *aviation.AirportData, kind string, procs map[string]aviation.Procedure) {
	el.Push(kind)
	defer el.Pop()
	for name, proc := range procs {
		el.Push(name)
		validateLegs(el, airport, proc.Legs)
		el.Pop()
	}
}

// validateLegs reports any leg whose terminator fix resolves to neither a
// named fix nor a navaid.
func validateLegs(el *util.ErrorLogger, airport *aviation.AirportData, legs []aviation.Leg) {
	for _, leg := range legs {
		if leg.Fix == "" {
			continue
		}
		if _, ok := airport.Fixes[leg.Fix]; ok {
			continue
		}
		if _, ok := airport.Navaids[leg.Fix]; ok {
			continue
		}
		el.ErrorString("leg references unknown fix %q", leg.Fix)
	}
}
