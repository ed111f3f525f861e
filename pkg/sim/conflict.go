// pkg/sim/conflict.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"sort"

	"github.com/desponda/tracon-sim/pkg/aviation"
	"github.com/desponda/tracon-sim/pkg/geo"
)

type AlertType string

const (
	AlertConflict       AlertType = "conflict"
	AlertMSAW           AlertType = "msaw"
	AlertRunwayConflict AlertType = "runwayConflict"
	AlertWake           AlertType = "wake"
)

type AlertSeverity string

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityCaution AlertSeverity = "caution"
)

// Alert is one active separation, MSAW, incursion, or wake condition,
// relayed to the controller as an outbound `alert` message.
type Alert struct {
	ID          string
	Type        AlertType
	Severity    AlertSeverity
	Message     string
	AircraftIDs []string
}

func alertKey(t AlertType, a, b string) string {
	if b == "" {
		return string(t) + "|" + a
	}
	if a > b {
		a, b = b, a
	}
	return string(t) + "|" + a + "|" + b
}

// ConflictDetector scans the live aircraft population each tick for
// separation violations, MSAW, runway incursions, and wake-turbulence
// proximity. It owns the active-alert set so it can tell new alerts from
// ones that were already active, and reports clears.
const mvaFloorCacheSize = 256

type ConflictDetector struct {
	airport  *aviation.AirportData
	proj     geo.Projection
	active   map[string]Alert
	mvaCache *aviation.LookupCache
}

func NewConflictDetector(airport *aviation.AirportData) *ConflictDetector {
	return &ConflictDetector{
		airport:  airport,
		proj:     airport.Projection,
		active:   make(map[string]Alert),
		mvaCache: aviation.NewLookupCache(mvaFloorCacheSize),
	}
}

const (
	lateralSeparationNm   = 3.0
	verticalSeparationFt  = 1000.0
	predictiveHorizonSec  = 60.0
	msawFloorAboveField   = 1000.0
	runwayFinalThresholdNm = 2.0
	wakeProximityNm       = 5.0
)

// ScanResult reports the alerts that newly went active this tick and the
// ids that cleared, for ScoringEngine and the outbound transport layer.
type ScanResult struct {
	New     []Alert
	Cleared []string
}

func (d *ConflictDetector) scan(aircraft []*AircraftState) ScanResult {
	seen := make(map[string]bool)
	var newAlerts []Alert

	record := func(key string, a Alert) {
		seen[key] = true
		if _, already := d.active[key]; !already {
			newAlerts = append(newAlerts, a)
		}
		d.active[key] = a
	}

	for i, a := range aircraft {
		if a.OnGround {
			continue
		}
		for _, j := range aircraft[i+1:] {
			if j.OnGround {
				continue
			}
			d.checkPairSeparation(a, j, record)
			d.checkWake(a, j, record)
		}
		d.checkMSAW(a, record)
	}
	d.checkRunwayIncursion(aircraft, record)

	var cleared []string
	for key := range d.active {
		if !seen[key] {
			cleared = append(cleared, key)
			delete(d.active, key)
		}
	}
	sort.Strings(cleared)
	return ScanResult{New: newAlerts, Cleared: cleared}
}

func (d *ConflictDetector) checkPairSeparation(a, b *AircraftState, record func(string, Alert)) {
	horiz := d.proj.Distance(a.Position, b.Position)
	vert := geo.Abs(a.Altitude - b.Altitude)

	if horiz < lateralSeparationNm && vert < verticalSeparationFt {
		key := alertKey(AlertConflict, a.ID, b.ID)
		record(key, Alert{ID: key, Type: AlertConflict, Severity: SeverityWarning,
			Message: "loss of separation", AircraftIDs: []string{a.ID, b.ID}})
		return
	}

	if d.predictedViolation(a, b) {
		key := alertKey(AlertConflict, a.ID, b.ID)
		record(key, Alert{ID: key, Type: AlertConflict, Severity: SeverityCaution,
			Message: "predicted separation loss", AircraftIDs: []string{a.ID, b.ID}})
	}
}

// predictedViolation linearly extrapolates ground velocity for each
// aircraft and checks whether the minimum approach distance over the next
// predictiveHorizonSec seconds drops below lateralSeparationNm. Vertical
// separation is checked once, at the current altitudes; altitude is not
// extrapolated.
func (d *ConflictDetector) predictedViolation(a, b *AircraftState) bool {
	vert := geo.Abs(a.Altitude - b.Altitude)
	if vert >= verticalSeparationFt {
		return false
	}
	va := geo.HeadingVector(a.Heading).Scale(a.Groundspeed / 3600)
	vb := geo.HeadingVector(b.Heading).Scale(b.Groundspeed / 3600)
	pa := d.proj.Project(a.Position)
	pb := d.proj.Project(b.Position)

	const steps = 12
	dt := predictiveHorizonSec / steps
	for s := 1; s <= steps; s++ {
		t := dt * float64(s)
		fa := pa.Add(va.Scale(t))
		fb := pb.Add(vb.Scale(t))
		if fa.Add(fb.Scale(-1)).Length() < lateralSeparationNm {
			return true
		}
	}
	return false
}

func (d *ConflictDetector) checkMSAW(a *AircraftState, record func(string, Alert)) {
	floor := d.mvaFloor(a)
	if a.Altitude < floor && a.VerticalSpeed < 0 {
		key := alertKey(AlertMSAW, a.ID, "")
		record(key, Alert{ID: key, Type: AlertMSAW, Severity: SeverityWarning,
			Message: "below minimum safe altitude", AircraftIDs: []string{a.ID}})
	}
}

// mvaFloorGridNm is the quantization step for the MVA-floor lookup cache:
// fine enough that a cache hit never crosses into a neighboring polygon in
// practice, coarse enough that aircraft converging on the same sector reuse
// the same entry tick after tick.
const mvaFloorGridNm = 0.5

// mvaFloor looks up the MVA polygon containing a's position, falling back
// to fieldElevation + 1000ft when no polygon covers it. Memoized per
// quantized grid cell since this is a pure function of position
// recomputed every tick for every airborne aircraft.
func (d *ConflictDetector) mvaFloor(a *AircraftState) float64 {
	key := mvaFloorCacheKey(a.Position)
	if v, ok := d.mvaCache.Get(key); ok {
		return v.(float64)
	}
	result := d.airport.ElevationFt + msawFloorAboveField
	for _, poly := range d.airport.Airspace {
		if pointInPolygon(a.Position, poly.Vertices) {
			result = poly.FloorFt
			break
		}
	}
	d.mvaCache.Put(key, result)
	return result
}

func mvaFloorCacheKey(p geo.Point) string {
	lat := int(p.Lat / mvaFloorGridNm * 60.0) // 60 nm per degree latitude
	lon := int(p.Lon / mvaFloorGridNm * 60.0)
	return fmt.Sprintf("%d,%d", lat, lon)
}

func pointInPolygon(p geo.Point, verts []geo.Point) bool {
	if len(verts) < 3 {
		return false
	}
	inside := false
	for i, j := 0, len(verts)-1; i < len(verts); j, i = i, i+1 {
		vi, vj := verts[i], verts[j]
		if (vi.Lat > p.Lat) != (vj.Lat > p.Lat) &&
			p.Lon < (vj.Lon-vi.Lon)*(p.Lat-vi.Lat)/(vj.Lat-vi.Lat)+vi.Lon {
			inside = !inside
		}
	}
	return inside
}

func (d *ConflictDetector) checkRunwayIncursion(aircraft []*AircraftState, record func(string, Alert)) {
	occupied := make(map[string][]*AircraftState)
	for _, a := range aircraft {
		if a.RunwayOccupying != "" {
			occupied[a.RunwayOccupying] = append(occupied[a.RunwayOccupying], a)
		}
	}
	for rwyID, occupants := range occupied {
		if len(occupants) > 1 {
			ids := make([]string, len(occupants))
			for i, o := range occupants {
				ids[i] = o.ID
			}
			key := alertKey(AlertRunwayConflict, rwyID, "")
			record(key, Alert{ID: key, Type: AlertRunwayConflict, Severity: SeverityWarning,
				Message: "runway occupied by multiple aircraft", AircraftIDs: ids})
		}
	}

	for _, a := range aircraft {
		if a.FlightPhase != PhaseFinal || a.Clearances.Approach == nil {
			continue
		}
		rwy, ok := d.airport.Runways[a.Clearances.Approach.Runway]
		if !ok {
			continue
		}
		if occupants, busy := occupied[rwy.ID]; busy && d.proj.Distance(a.Position, rwy.Threshold) < runwayFinalThresholdNm {
			ids := append([]string{a.ID}, idsOf(occupants)...)
			key := alertKey(AlertRunwayConflict, a.ID, rwy.ID)
			record(key, Alert{ID: key, Type: AlertRunwayConflict, Severity: SeverityWarning,
				Message: "aircraft on final with runway occupied", AircraftIDs: ids})
		}
	}
}

// ActiveKeys returns the currently active alert keys of the given type,
// for ScoringEngine's duration/active-set bookkeeping.
func (d *ConflictDetector) ActiveKeys(t AlertType) map[string]bool {
	out := make(map[string]bool)
	for key, a := range d.active {
		if a.Type == t {
			out[key] = true
		}
	}
	return out
}

func idsOf(aircraft []*AircraftState) []string {
	ids := make([]string, len(aircraft))
	for i, a := range aircraft {
		ids[i] = a.ID
	}
	return ids
}

func (d *ConflictDetector) checkWake(a, b *AircraftState, record func(string, Alert)) {
	lead, trail := a, b
	if trail.WakeCategory > lead.WakeCategory {
		lead, trail = trail, lead
	}
	if lead.FlightPhase != PhaseFinal || trail.FlightPhase != PhaseFinal {
		return
	}
	if lead.WakeCategory != aviation.WakeHeavy && lead.WakeCategory != aviation.WakeSuper {
		return
	}
	if trail.WakeCategory == aviation.WakeHeavy || trail.WakeCategory == aviation.WakeSuper {
		return
	}
	if d.proj.Distance(lead.Position, trail.Position) < aviation.WakeSeparationNm(lead.WakeCategory, trail.WakeCategory) {
		key := alertKey(AlertWake, lead.ID, trail.ID)
		record(key, Alert{ID: key, Type: AlertWake, Severity: SeverityCaution,
			Message: "wake turbulence proximity", AircraftIDs: []string{lead.ID, trail.ID}})
	}
}
