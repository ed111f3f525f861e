// pkg/sim/manager.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

// AircraftManager owns the set of live aircraft for one session, keyed by
// id, and preserves insertion order for iteration. It is the single
// container that owns aircraft state for a session.
type AircraftManager struct {
	order []string
	byID  map[string]*AircraftState
	toRemove map[string]bool
}

func NewAircraftManager() *AircraftManager {
	return &AircraftManager{
		byID:     make(map[string]*AircraftState),
		toRemove: make(map[string]bool),
	}
}

// Add inserts a new aircraft at the end of iteration order.
func (m *AircraftManager) Add(ac *AircraftState) {
	if _, exists := m.byID[ac.ID]; exists {
		return
	}
	m.byID[ac.ID] = ac
	m.order = append(m.order, ac.ID)
}

// Get returns the aircraft with the given id, or nil.
func (m *AircraftManager) Get(id string) *AircraftState { return m.byID[id] }

// GetByCallsign does a linear scan; callsigns are unique per session so
// this is adequate for the command-dispatch lookup rate (one lookup per
// queued command per tick).
func (m *AircraftManager) GetByCallsign(callsign string) *AircraftState {
	for _, id := range m.order {
		if ac := m.byID[id]; ac != nil && ac.Callsign == callsign {
			return ac
		}
	}
	return nil
}

// All returns aircraft in insertion order. The returned slice is a live
// view sized to the current population; callers must not retain it past
// the current tick.
func (m *AircraftManager) All() []*AircraftState {
	out := make([]*AircraftState, 0, len(m.order))
	for _, id := range m.order {
		if ac := m.byID[id]; ac != nil {
			out = append(out, ac)
		}
	}
	return out
}

func (m *AircraftManager) Len() int { return len(m.order) }

// MarkForRemoval appends id to the per-tick removal list; it is not
// actually deleted until ApplyRemovals runs after every component has
// executed for the tick. Removal is a single-tick decision made only
// after all per-tick components have run.
func (m *AircraftManager) MarkForRemoval(id string) { m.toRemove[id] = true }

// ApplyRemovals deletes every aircraft marked this tick and returns their
// ids, clearing the pending set.
func (m *AircraftManager) ApplyRemovals() []string {
	if len(m.toRemove) == 0 {
		return nil
	}
	var removed []string
	newOrder := m.order[:0]
	for _, id := range m.order {
		if m.toRemove[id] {
			delete(m.byID, id)
			removed = append(removed, id)
		} else {
			newOrder = append(newOrder, id)
		}
	}
	m.order = newOrder
	m.toRemove = make(map[string]bool)
	return removed
}
