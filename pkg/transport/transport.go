// pkg/transport/transport.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package transport is the thin network boundary around the simulation
// core: websocket connections carrying msgpack-encoded envelopes, routed
// through a chi mux. The core itself does no I/O; this package is the
// out-of-core collaborator that turns inbound envelopes into calls on a
// Session and outbound Snapshots into wire messages.
package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/desponda/tracon-sim/pkg/log"
	"github.com/desponda/tracon-sim/pkg/sim"
)

// EnvelopeKind tags the inbound/outbound message variants.
type EnvelopeKind string

const (
	InCreateSession     EnvelopeKind = "createSession"
	InSessionControl    EnvelopeKind = "sessionControl"
	InCommand           EnvelopeKind = "command"
	InUpdateScratchPad  EnvelopeKind = "updateScratchPad"

	OutGameState      EnvelopeKind = "gameState"
	OutRadioMessage   EnvelopeKind = "radioMessage"
	OutAlert          EnvelopeKind = "alert"
	OutScoreUpdate    EnvelopeKind = "scoreUpdate"
	OutSessionInfo    EnvelopeKind = "sessionInfo"
	OutAirportData    EnvelopeKind = "airportData"
	OutCommandResp    EnvelopeKind = "commandResponse"
	OutError          EnvelopeKind = "error"
)

// Envelope is the single wire frame shape; Payload is kind-specific and
// re-decoded by the handler once Kind is known, a tagged outer frame
// around an opaque payload.
type Envelope struct {
	Kind    EnvelopeKind `msgpack:"kind"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// ControllerCommand mirrors the inbound `command` message before the
// (out-of-core) text parser has expanded it into ATCCommand variants; here
// Commands is already the parsed slice, since parsing is out of scope.
type ControllerCommand struct {
	Callsign  string            `msgpack:"callsign"`
	Commands  []sim.ATCCommand  `msgpack:"commands"`
	RawText   string            `msgpack:"rawText"`
	Timestamp int64             `msgpack:"timestamp"`
}

type SessionControlAction string

const (
	ActionStart        SessionControlAction = "start"
	ActionPause        SessionControlAction = "pause"
	ActionResume       SessionControlAction = "resume"
	ActionEnd          SessionControlAction = "end"
	ActionSetTimeScale SessionControlAction = "setTimeScale"
)

type SessionControlMessage struct {
	Action    SessionControlAction `msgpack:"action"`
	TimeScale float64              `msgpack:"timeScale"`
}

type UpdateScratchPad struct {
	AircraftID string `msgpack:"aircraftId"`
	Text       string `msgpack:"text"`
}

// Conn wraps one websocket client with its own outbound write queue;
// reads are handled synchronously by the owning Server.
type Conn struct {
	ws   *websocket.Conn
	mu   sync.Mutex
	send chan Envelope
}

func newConn(ws *websocket.Conn) *Conn {
	c := &Conn{ws: ws, send: make(chan Envelope, 64)}
	go c.writePump()
	return c
}

func (c *Conn) writePump() {
	for env := range c.send {
		b, err := msgpack.Marshal(env)
		if err != nil {
			continue
		}
		c.mu.Lock()
		_ = c.ws.WriteMessage(websocket.BinaryMessage, b)
		c.mu.Unlock()
	}
}

// Send queues an outbound envelope; it never blocks the tick loop beyond
// the bounded channel — a full channel drops the message rather than
// stalling the session.
func (c *Conn) Send(kind EnvelopeKind, payload any) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return
	}
	select {
	case c.send <- Envelope{Kind: kind, Payload: b}:
	default:
		// Slow client: drop rather than block the session's tick loop.
	}
}

func (c *Conn) Close() {
	close(c.send)
	_ = c.ws.Close()
}

// Server hosts one or more sessions behind a chi mux, one websocket
// connection per controller. Each session owns its own AircraftManager,
// tick counter, and scoring, independent of the others.
type Server struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu       sync.Mutex
	sessions map[string]*sim.Session
	conns    map[string]*Conn
}

func NewServer(logger *log.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		logger:   logger,
		sessions: make(map[string]*sim.Session),
		conns:    make(map[string]*Conn),
	}
}

// Routes builds the chi mux; a production deployment mounts this under
// TLS termination with its own auth middleware, out of scope for the core.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.handleWebsocket)
	return r
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	conn := newConn(ws)
	defer conn.Close()

	ws.SetReadDeadline(time.Now().Add(idleTimeout))
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			s.handleDisconnect(conn)
			return
		}
		ws.SetReadDeadline(time.Now().Add(idleTimeout))

		var env Envelope
		if err := msgpack.Unmarshal(data, &env); err != nil {
			continue
		}
		s.dispatch(conn, env)
	}
}

// idleTimeout disconnects a client the transport treats as a session
// pause: the transport layer times out idle clients and sends a
// disconnect, which the core treats as a session pause.
const idleTimeout = 2 * time.Minute

func (s *Server) handleDisconnect(conn *Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.conns {
		if c == conn {
			if sess, ok := s.sessions[id]; ok {
				_ = sess.Pause()
			}
			delete(s.conns, id)
			return
		}
	}
}

func (s *Server) dispatch(conn *Conn, env Envelope) {
	switch env.Kind {
	case InCreateSession:
		s.handleCreateSession(conn, env)
	case InSessionControl:
		s.handleSessionControl(conn, env)
	case InCommand:
		s.handleCommand(conn, env)
	case InUpdateScratchPad:
		s.handleScratchPad(conn, env)
	}
}

func (s *Server) handleCreateSession(conn *Conn, env Envelope) {
	var cfg sim.SessionConfig
	if err := msgpack.Unmarshal(env.Payload, &cfg); err != nil {
		conn.Send(OutError, map[string]string{"message": err.Error()})
		return
	}
	sess := sim.NewSession(cfg, s.logger)
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.conns[sess.ID] = conn
	s.mu.Unlock()
	conn.Send(OutSessionInfo, map[string]any{"id": sess.ID, "status": sess.Status})
}

func (s *Server) sessionFor(conn *Conn) *sim.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.conns {
		if c == conn {
			return s.sessions[id]
		}
	}
	return nil
}

func (s *Server) handleSessionControl(conn *Conn, env Envelope) {
	sess := s.sessionFor(conn)
	if sess == nil {
		return
	}
	var msg SessionControlMessage
	if err := msgpack.Unmarshal(env.Payload, &msg); err != nil {
		return
	}
	var err error
	switch msg.Action {
	case ActionStart:
		err = sess.Start()
		if err == nil {
			conn.Send(OutAirportData, sess.Config.Airport)
		}
	case ActionPause:
		err = sess.Pause()
	case ActionResume:
		err = sess.Resume()
	case ActionEnd:
		snap := sess.End()
		conn.Send(OutGameState, snap)
	case ActionSetTimeScale:
		sess.SetTimeScale(msg.TimeScale)
	}
	if err != nil {
		conn.Send(OutError, map[string]string{"message": err.Error()})
	}
}

func (s *Server) handleCommand(conn *Conn, env Envelope) {
	sess := s.sessionFor(conn)
	if sess == nil {
		return
	}
	var cc ControllerCommand
	if err := msgpack.Unmarshal(env.Payload, &cc); err != nil {
		return
	}
	for _, cmd := range cc.Commands {
		cmd.Callsign = cc.Callsign
		cmd.RawText = cc.RawText
		sess.Enqueue(cmd, 0)
	}
}

func (s *Server) handleScratchPad(conn *Conn, env Envelope) {
	// The payload is discarded: no aircraft's Scratchpad field is updated
	// and no reply is sent.
	_ = env
	_ = conn
}

// RunTickLoop drives sess.Advance() at the wall-clock interval implied by
// its current time scale (1s / timeScale), broadcasting each snapshot to
// conn, until the session ends.
func RunTickLoop(sess *sim.Session, conn *Conn) {
	for sess.Status != sim.StatusEnded {
		if sess.Status != sim.StatusRunning {
			time.Sleep(50 * time.Millisecond)
			continue
		}
		start := time.Now()
		responses, snap, err := sess.Advance()
		if err != nil {
			conn.Send(OutError, map[string]string{"message": err.Error()})
			return
		}
		for _, r := range responses {
			conn.Send(OutCommandResp, r)
		}
		conn.Send(OutGameState, snap)
		if len(snap.Alerts) > 0 {
			conn.Send(OutAlert, snap.Alerts)
		}
		conn.Send(OutScoreUpdate, snap.Score)

		interval := time.Second
		if sess.TimeScale > 0 {
			interval = time.Duration(float64(time.Second) / sess.TimeScale)
		}
		if elapsed := time.Since(start); elapsed < interval {
			time.Sleep(interval - elapsed)
		}
	}
}
