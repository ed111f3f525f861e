// pkg/sim/session.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	"github.com/brunoga/deep"
	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
	"github.com/desponda/tracon-sim/pkg/log"
	"github.com/desponda/tracon-sim/pkg/rand"
	"github.com/google/uuid"
)

type SessionStatus string

const (
	StatusLobby   SessionStatus = "lobby"
	StatusRunning SessionStatus = "running"
	StatusPaused  SessionStatus = "paused"
	StatusEnded   SessionStatus = "ended"
)

// SessionConfig is the parameters a client supplies when creating a session.
type SessionConfig struct {
	Airport      *aviation.AirportData
	Density      Density
	ScenarioType ScenarioType
	Runways      RunwayConfig
	Weather      aviation.WeatherState
	Seed         uint64
}

const maxFaultStreak = 3

// SimulationEngine owns the fixed-step tick pipeline. It never does I/O;
// Session wraps it with the wall-clock pacer and snapshot sink.
type SimulationEngine struct {
	airport *aviation.AirportData
	weather aviation.WeatherState

	mgr        *AircraftManager
	executor   *FlightPlanExecutor
	physics    *PhysicsEngine
	conflict   *ConflictDetector
	scoring    *ScoringEngine
	scenario   *ScenarioGenerator
	dispatcher *CommandDispatcher

	density Density
	tick    uint64
	logger  *log.Logger
}

func NewSimulationEngine(cfg SessionConfig, logger *log.Logger) *SimulationEngine {
	perf := aviation.NewPerformanceDB()
	rng := rand.New(cfg.Seed)

	e := &SimulationEngine{
		airport:  cfg.Airport,
		weather:  cfg.Weather,
		mgr:      NewAircraftManager(),
		executor: NewFlightPlanExecutor(cfg.Airport, perf),
		physics:  NewPhysicsEngine(perf, cfg.Airport.Projection),
		conflict: NewConflictDetector(cfg.Airport),
		scoring:  NewScoringEngine(),
		scenario: NewScenarioGenerator(cfg.Airport, perf, rng, cfg.ScenarioType, cfg.Runways),
		density:  cfg.Density,
		logger:   logger,
	}
	e.weather.ClampPlayable()
	e.dispatcher = NewCommandDispatcher(cfg.Airport, &e.weather)
	for _, ac := range e.scenario.PreSpawn(cfg.Density) {
		e.mgr.Add(ac)
	}
	return e
}

// Snapshot is the per-tick outbound game state.
type Snapshot struct {
	Tick      uint64
	Aircraft  []*AircraftState
	Alerts    []Alert
	Cleared   []string
	Score     ScoreMetrics
	Weather   aviation.WeatherState
}

// deepCopyAircraft clones each aircraft for the outbound snapshot so a
// transport goroutine can encode it while the next tick mutates the live
// AircraftManager state concurrently.
func deepCopyAircraft(live []*AircraftState) []*AircraftState {
	out := make([]*AircraftState, len(live))
	for i, ac := range live {
		out[i] = deep.MustCopy(ac)
	}
	return out
}

// Tick runs one full pipeline pass, in a fixed stage order, and returns the
// resulting snapshot.
func (e *SimulationEngine) Tick(commands []ATCCommand, timeScale float64) ([]CommandResponse, Snapshot) {
	responses := make([]CommandResponse, 0, len(commands))
	for _, cmd := range commands {
		resp := e.dispatcher.Dispatch(e.mgr, cmd)
		if !resp.Success {
			e.scoring.recordBadCommand()
		} else {
			e.scoring.recordCommand()
		}
		responses = append(responses, resp)
	}

	if spawned := e.scenario.update(e.tick, e.density, timeScale); spawned != nil {
		e.mgr.Add(spawned)
	}

	all := e.mgr.All()

	e.offerInboundHandoffs(all)

	for _, ac := range all {
		if ac.degraded {
			// Degraded aircraft skip exactly one tick of flight-plan
			// execution, then resume.
			ac.degraded = false
			continue
		}
		if err := e.executor.execute(ac, all, e.tick); err != nil {
			e.faultAircraft(ac, err)
		} else {
			ac.faultStreak = 0
		}
	}

	for _, ac := range all {
		if ac.OnGround {
			continue
		}
		if err := e.physics.updateAircraft(ac, aviation.NewWindModel(&e.weather), 1); err != nil {
			e.faultAircraft(ac, err)
		} else {
			ac.faultStreak = 0
		}
	}

	for _, ac := range all {
		if ac.OnGround && ac.RunwayOccupying != "" {
			rwy, ok := e.airport.Runways[ac.RunwayOccupying]
			if ok {
				e.physics.updateGroundRollout(ac, rwy.TrueBearing(e.airport.Projection), 1)
				if ac.RolloutComplete && ac.RolloutCompleteTick == 0 {
					ac.RolloutCompleteTick = e.tick
				}
			}
		}
	}

	result := e.conflict.scan(all)
	for _, a := range result.New {
		e.scoring.recordAlert(a)
	}
	e.scoring.syncActiveViolations(
		e.conflict.ActiveKeys(AlertConflict),
		e.conflict.ActiveKeys(AlertMSAW),
		1,
	)
	e.scoring.checkHandoffPenalties(all, e.airport, e.tick)
	e.scoring.update()

	e.removeTerminatedAircraft(all)

	snap := Snapshot{
		Tick:     e.tick,
		Aircraft: deepCopyAircraft(e.mgr.All()),
		Alerts:   result.New,
		Cleared:  result.Cleared,
		Score:    e.scoring.Metrics(),
		Weather:  e.weather,
	}
	e.tick++
	return responses, snap
}

const rolloutAgeOutTicks = 180 // 3 sim-minutes

func (e *SimulationEngine) removeTerminatedAircraft(all []*AircraftState) {
	for _, ac := range all {
		if ac.FlightPhase == PhaseLanded && ac.RolloutComplete {
			e.mgr.MarkForRemoval(ac.ID)
			continue
		}
		if ac.RolloutCompleteTick != 0 && e.tick-ac.RolloutCompleteTick > rolloutAgeOutTicks {
			e.mgr.MarkForRemoval(ac.ID)
			continue
		}
		if e.departedBoundary(ac) {
			e.mgr.MarkForRemoval(ac.ID)
		}
	}
	e.mgr.ApplyRemovals()
}

// boundaryNm is the TRACON airspace boundary radius used both to release a
// departure to center (departedBoundary) and to offer an arrival's inbound
// handoff (offerInboundHandoffs).
const boundaryNm = 60

// departedBoundary reports whether an aircraft has exited the airspace
// boundary following a completed handoff.
func (e *SimulationEngine) departedBoundary(ac *AircraftState) bool {
	return ac.HandingOff && e.airport.Projection.Distance(ac.Position, e.airport.Reference) > boundaryNm
}

// offerInboundHandoffs offers the inbound handoff to arrivals that have
// entered the TRACON boundary, mirroring how CmdRadarHandoff drives
// RadarHandoffState for departures on the controller side.
func (e *SimulationEngine) offerInboundHandoffs(all []*AircraftState) {
	for _, ac := range all {
		if ac.Category != CategoryArrival || ac.InboundHandoff != HandoffNone {
			continue
		}
		if e.airport.Projection.Distance(ac.Position, e.airport.Reference) <= boundaryNm {
			ac.InboundHandoff = HandoffOffered
			ac.InboundHandoffOfferedAt = e.tick
		}
	}
}

// faultAircraft implements the per-aircraft degrade/remove policy: the
// first two failing ticks degrade the aircraft (its executor step is
// skipped); the third removes it.
func (e *SimulationEngine) faultAircraft(ac *AircraftState, err error) {
	ac.faultStreak++
	e.logger.Warnf("aircraft %s execution fault: %v (streak %d)", ac.Callsign, err, ac.faultStreak)
	if ac.faultStreak >= maxFaultStreak {
		e.mgr.MarkForRemoval(ac.ID)
		e.logger.Error("removing aircraft after repeated faults", "callsign", ac.Callsign)
		return
	}
	ac.degraded = true
}

// Session wraps a SimulationEngine with the lobby/running/paused/ended
// state machine and the controller command queue.
type Session struct {
	ID        string
	Config    SessionConfig
	Status    SessionStatus
	TimeScale float64

	engine *SimulationEngine
	queue  []QueuedCommand
	logger *log.Logger
}

func NewSession(cfg SessionConfig, logger *log.Logger) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Config:    cfg,
		Status:    StatusLobby,
		TimeScale: 1,
		logger:    logger,
	}
}

// Start transitions lobby -> running and constructs the engine.
func (s *Session) Start() error {
	if s.Status != StatusLobby {
		return fmt.Errorf("cannot start session in status %s", s.Status)
	}
	s.engine = NewSimulationEngine(s.Config, s.logger)
	s.Status = StatusRunning
	return nil
}

func (s *Session) Pause() error {
	if s.Status != StatusRunning {
		return fmt.Errorf("cannot pause session in status %s", s.Status)
	}
	s.Status = StatusPaused
	return nil
}

func (s *Session) Resume() error {
	if s.Status != StatusPaused {
		return fmt.Errorf("cannot resume session in status %s", s.Status)
	}
	s.Status = StatusRunning
	return nil
}

func (s *Session) SetTimeScale(ts float64) {
	s.TimeScale = geo.Clamp(ts, 0.5, 8)
}

// End drains the queue, runs a final tick for the closing snapshot, and
// marks the session terminal.
func (s *Session) End() Snapshot {
	var snap Snapshot
	if s.engine != nil {
		_, snap = s.engine.Tick(nil, s.TimeScale)
	}
	s.queue = nil
	s.Status = StatusEnded
	return snap
}

// Enqueue appends a command to the per-tick queue.
func (s *Session) Enqueue(cmd ATCCommand, arrivalTick uint64) {
	s.queue = append(s.queue, QueuedCommand{Tick: arrivalTick, Command: cmd})
}

// Advance runs exactly one tick if the session is running, applying every
// queued command regardless of its arrival tick (they all queued since the
// previous tick).
func (s *Session) Advance() ([]CommandResponse, Snapshot, error) {
	if s.Status != StatusRunning {
		return nil, Snapshot{}, fmt.Errorf("session is not running (status %s)", s.Status)
	}
	cmds := make([]ATCCommand, len(s.queue))
	for i, q := range s.queue {
		cmds[i] = q.Command
	}
	s.queue = s.queue[:0]
	responses, snap := s.engine.Tick(cmds, s.TimeScale)
	return responses, snap, nil
}
