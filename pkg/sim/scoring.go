// pkg/sim/scoring.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"math"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
)

type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// ScoreMetrics is the running set of controller-performance metrics,
// relayed to the controller as an outbound `scoreUpdate` message.
type ScoreMetrics struct {
	SeparationViolations int
	ViolationDuration    float64 // sim-seconds
	ConflictAlerts       int
	AircraftHandled      int
	AverageDelay         float64 // sim-seconds
	CommandsIssued       int
	HandoffQuality       float64
	MissedHandoffs       int
	OverallScore         int
	Grade                Grade
}

// ScoringEngine recomputes ScoreMetrics every tick from the active-alert
// set ConflictDetector reports and from per-aircraft handoff timing. The
// lower-magnitude tower-handoff penalty variant (2 nm / -5 / -10) is used;
// see DESIGN.md for why the 3 nm / -50 / -100 variant in the source is
// not implemented.
type ScoringEngine struct {
	metrics ScoreMetrics

	activeSeparationPairs map[string]bool
	msawActive            map[string]bool

	handoffPenaltyPoints float64
	penalizedLateTower   map[string]bool
	penalizedMissedTower map[string]bool
	penalizedLateCenter  map[string]bool
	penalizedMissedCenter map[string]bool
	penalizedAcceptLatency map[string]bool

	totalDelaySamples int
	delaySum          float64
	cleanHandled      int
}

func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{
		metrics:                ScoreMetrics{OverallScore: 100, Grade: GradeA},
		activeSeparationPairs:  make(map[string]bool),
		msawActive:             make(map[string]bool),
		penalizedLateTower:     make(map[string]bool),
		penalizedMissedTower:   make(map[string]bool),
		penalizedLateCenter:    make(map[string]bool),
		penalizedMissedCenter:  make(map[string]bool),
		penalizedAcceptLatency: make(map[string]bool),
	}
}

const (
	inboundAcceptLatencySec = 150 // chosen from the acceptable 90-180s band, toward its permissive end

	arrivalHandoffGraceSec   = 90
	departureHandoffGraceSec = 300
	departureCenterFL        = 18000
	departureCenterDistNm    = 40
	towerFinalDistNm         = 2
)

// recordAlert folds one newly-raised alert into the running counters; it
// does not recompute the score (that happens in update()).
func (s *ScoringEngine) recordAlert(a Alert) {
	s.metrics.ConflictAlerts++
	switch a.Type {
	case AlertConflict:
		if a.Severity == SeverityWarning {
			if len(a.AircraftIDs) == 2 {
				key := alertKey(AlertConflict, a.AircraftIDs[0], a.AircraftIDs[1])
				if !s.activeSeparationPairs[key] {
					s.metrics.SeparationViolations++
				}
				s.activeSeparationPairs[key] = true
			}
		}
	case AlertMSAW:
		s.msawActive[a.ID] = true
	}
}

// syncActiveViolations is handed the detector's current active-pair list
// each tick so separation-violation duration accrues only while the
// condition holds.
func (s *ScoringEngine) syncActiveViolations(activeConflictKeys, activeMSAWKeys map[string]bool, dt float64) {
	for key := range activeConflictKeys {
		if s.activeSeparationPairs[key] {
			s.metrics.ViolationDuration += dt
		}
	}
	for key := range s.activeSeparationPairs {
		if !activeConflictKeys[key] {
			delete(s.activeSeparationPairs, key)
		}
	}
	for key := range s.msawActive {
		if !activeMSAWKeys[key] {
			delete(s.msawActive, key)
		}
	}
}

func (s *ScoringEngine) recordBadCommand() {
	s.metrics.CommandsIssued++
	s.handoffPenaltyPoints += 0.5
}

func (s *ScoringEngine) recordCommand() {
	s.metrics.CommandsIssued++
}

// recordAircraftHandled tallies a completed arrival/departure for the
// average-delay metric (delaySec is the difference between actual and
// scheduled handling time).
func (s *ScoringEngine) recordAircraftHandled(delaySec float64) {
	s.metrics.AircraftHandled++
	s.totalDelaySamples++
	s.delaySum += delaySec
	s.metrics.AverageDelay = s.delaySum / float64(s.totalDelaySamples)
	if delaySec < 300 {
		s.cleanHandled++
	}
}

// checkHandoffPenalties implements the timing-based penalty rules for
// tower and center handoffs.
func (s *ScoringEngine) checkHandoffPenalties(aircraft []*AircraftState, airport *aviation.AirportData, tick uint64) {
	proj := airport.Projection
	for _, a := range aircraft {
		switch a.Category {
		case CategoryArrival:
			if a.InboundHandoff != HandoffAccepted && a.InboundHandoff != HandoffOffered {
				continue
			}
			age := tickAge(tick, a.InboundHandoffOfferedAt)
			if age < arrivalHandoffGraceSec {
				continue
			}
			if a.FlightPhase == PhaseLanded && !a.HandingOff && !s.penalizedMissedTower[a.ID] {
				s.handoffPenaltyPoints += 10
				s.metrics.MissedHandoffs++
				s.penalizedMissedTower[a.ID] = true
				continue
			}
			if a.FlightPhase == PhaseFinal && !a.HandingOff && !s.penalizedLateTower[a.ID] {
				dist := proj.Distance(a.Position, nearestThreshold(airport, a))
				if dist < towerFinalDistNm {
					s.handoffPenaltyPoints += 5
					s.penalizedLateTower[a.ID] = true
				}
			}
		case CategoryDeparture:
			if a.RadarHandoffState == HandoffNone {
				continue
			}
			if a.HandingOff {
				continue
			}
			if a.Altitude >= departureCenterFL && !s.penalizedLateCenter[a.ID] {
				s.handoffPenaltyPoints += 5
				s.penalizedLateCenter[a.ID] = true
			}
			if proj.Distance(a.Position, airport.Reference) > departureCenterDistNm && !s.penalizedMissedCenter[a.ID] {
				s.handoffPenaltyPoints += 10
				s.metrics.MissedHandoffs++
				s.penalizedMissedCenter[a.ID] = true
			}
		}

		if a.InboundHandoff == HandoffOffered && !s.penalizedAcceptLatency[a.ID] {
			if tickAge(tick, a.InboundHandoffOfferedAt) > inboundAcceptLatencySec {
				s.handoffPenaltyPoints += 3
				s.penalizedAcceptLatency[a.ID] = true
			}
		}
	}
}

func tickAge(now, at uint64) float64 {
	if now < at {
		return 0
	}
	return float64(now - at)
}

func nearestThreshold(airport *aviation.AirportData, a *AircraftState) geo.Point {
	if a.Clearances.Approach != nil {
		if rwy, ok := airport.Runways[a.Clearances.Approach.Runway]; ok {
			return rwy.Threshold
		}
	}
	return airport.Reference
}

// update recomputes OverallScore and Grade from the current metrics.
func (s *ScoringEngine) update() {
	score := 100.0
	score -= 5 * float64(s.metrics.SeparationViolations)
	score -= s.metrics.ViolationDuration / 30
	score -= 3 * float64(len(s.msawActive))
	score -= 2 * float64(s.metrics.MissedHandoffs)
	score += float64(s.cleanHandled)

	if s.metrics.AverageDelay > 300 {
		score -= (s.metrics.AverageDelay - 300) / 120
	}
	score -= s.handoffPenaltyPoints

	score = math.Max(0, math.Min(100, score))
	s.metrics.OverallScore = int(math.Round(score))
	s.metrics.Grade = gradeFor(s.metrics.OverallScore)
}

func gradeFor(score int) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

func (s *ScoringEngine) Metrics() ScoreMetrics { return s.metrics }
