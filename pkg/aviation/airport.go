// pkg/aviation/airport.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"encoding/json"
	"fmt"

	"github.com/desponda/tracon-sim/pkg/geo"
	"github.com/desponda/tracon-sim/pkg/util"
)

// LegType tags a procedure leg the way ARINC 424 does; consumers must
// tolerate unknown leg types by skipping them.
type LegType string

const (
	LegTF LegType = "TF" // track to fix
	LegDF LegType = "DF" // direct to fix
	LegCF LegType = "CF" // course to fix
	LegCA LegType = "CA" // course to altitude
	LegVA LegType = "VA" // heading to altitude
	LegVI LegType = "VI" // heading to intercept
	LegVD LegType = "VD" // heading to DME distance
	LegHA LegType = "HA" // hold to altitude
	LegHF LegType = "HF" // hold to fix (single circuit)
	LegHM LegType = "HM" // hold to manual termination
)

// RestrictionKind selects which of "at / at-or-above / at-or-below /
// between" an AltitudeRestriction expresses.
type RestrictionKind int

const (
	RestrictAt RestrictionKind = iota
	RestrictAtOrAbove
	RestrictAtOrBelow
	RestrictBetween
)

type AltitudeRestriction struct {
	Kind   RestrictionKind
	Alt    float64 // used for At, AtOrAbove, AtOrBelow
	Min    float64 // used for Between
	Max    float64 // used for Between
}

// TargetAltitude returns the altitude a descending/climbing aircraft
// currently at `current` should aim for to satisfy the restriction.
func (r AltitudeRestriction) TargetAltitude(current float64) float64 {
	switch r.Kind {
	case RestrictAtOrAbove:
		return max64(current, r.Alt)
	case RestrictAtOrBelow:
		return min64(current, r.Alt)
	case RestrictBetween:
		return geo.Clamp(current, r.Min, r.Max)
	default: // RestrictAt
		return r.Alt
	}
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// SpeedConstraint caps groundspeed/IAS at a fix, as SIDs/STARs often carry
// both an altitude and a speed restriction on the same leg.
type SpeedConstraint struct {
	MaxIAS float64
}

// Leg is one segment of a SID, STAR, approach, or missed-approach
// procedure.
type Leg struct {
	Type                LegType
	Fix                 string  // TF/DF/CF/HA/HF/HM terminator fix
	Course              float64 // true course for CF/CA/VA/VI/VD
	Heading             float64 // heading for VA/VI/VD legs, as given in the document (no magnetic-to-true conversion on load)
	Altitude            *AltitudeRestriction
	Speed               *SpeedConstraint
	DMEDistance         float64 // for VD legs
	InterceptCourse     float64 // for VI legs, the course being intercepted
}

type Procedure struct {
	Name string
	Legs []Leg
}

type ApproachType string

const (
	ApproachILS    ApproachType = "ILS"
	ApproachRNAV   ApproachType = "RNAV"
	ApproachVisual ApproachType = "VISUAL"
)

type Approach struct {
	Type            ApproachType
	Runway          string
	MissedLegs      []Leg
	MinimumCeiling  float64 // ft AGL, playability-clamped weather must admit at least this
	MinimumVisibility float64 // SM
}

type Runway struct {
	ID               string
	Heading          float64 // magnetic
	Threshold        geo.Point
	End              geo.Point
	LengthFt         float64
	ElevationFt      float64
	ILSAvailable     bool
	ILSCourse        float64 // magnetic
	GlideslopeAngle  float64 // degrees, typically 3
}

// TrueBearing returns the true bearing from threshold to end. Internal
// geometry should use this rather than the magnetic runway.Heading field,
// which is only meaningful for display.
func (r Runway) TrueBearing(proj geo.Projection) float64 {
	return proj.TrueBearing(r.Threshold, r.End)
}

type Fix struct {
	ID       string
	Location geo.Point
}

type Navaid struct {
	ID       string
	Location geo.Point
	Freq     float64
}

type AirspacePolygon struct {
	Name     string
	FloorFt  float64
	CeilFt   float64
	Vertices []geo.Point
}

// AirportData is the read-only-after-load description of the airport and
// its procedures.
type AirportData struct {
	ICAO        string
	Reference   geo.Point
	ElevationFt float64

	Runways  map[string]Runway
	Fixes    map[string]Fix
	Navaids  map[string]Navaid

	SIDs       map[string]Procedure
	STARs      map[string]Procedure
	Approaches map[string][]Approach // keyed by runway

	Airspace []AirspacePolygon

	Frequencies map[string]float64 // facility name -> MHz

	Projection geo.Projection
}

// airportJSON mirrors the on-disk wire format; it is a plain
// struct walked by encoding/json rather than an ordered map, since this
// loader doesn't need to preserve or round-trip field order the way the
// teacher's hand-authored-scenario tooling does (see DESIGN.md).
type airportJSON struct {
	ICAO      string  `json:"icao"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Elevation float64 `json:"elevation"`
	Runways   []struct {
		ID              string  `json:"id"`
		Heading         float64 `json:"heading"`
		ThresholdLat    float64 `json:"threshold_lat"`
		ThresholdLon    float64 `json:"threshold_lon"`
		EndLat          float64 `json:"end_lat"`
		EndLon          float64 `json:"end_lon"`
		LengthFt        float64 `json:"length_ft"`
		ElevationFt     float64 `json:"elevation_ft"`
		ILSAvailable    bool    `json:"ils_available"`
		ILSCourse       float64 `json:"ils_course"`
		GlideslopeAngle float64 `json:"glideslope_angle"`
	} `json:"runways"`
	Fixes []struct {
		ID  string  `json:"id"`
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"fixes"`
	Navaids []struct {
		ID   string  `json:"id"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
		Freq float64 `json:"freq"`
	} `json:"navaids"`
	SIDs       []procedureJSON `json:"sids"`
	STARs      []procedureJSON `json:"stars"`
	Approaches []struct {
		Runway            string      `json:"runway"`
		Type              string      `json:"type"`
		MinimumCeiling    float64     `json:"minimum_ceiling"`
		MinimumVisibility float64     `json:"minimum_visibility"`
		MissedLegs        []legJSON   `json:"missed_legs"`
	} `json:"approaches"`
	Airspace []struct {
		Name    string  `json:"name"`
		FloorFt float64 `json:"floor_ft"`
		CeilFt  float64 `json:"ceil_ft"`
		Vertices []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"vertices"`
	} `json:"airspace"`
	Frequencies map[string]float64 `json:"frequencies"`
}

type procedureJSON struct {
	Name string    `json:"name"`
	Legs []legJSON `json:"legs"`
}

// legJSON mirrors one ARINC-424-tagged procedure leg on the wire. Unknown
// "type" values are kept as-is and simply never matched by any dispatch
// switch downstream; consumers must tolerate unknown leg types by skipping
// them.
type legJSON struct {
	Type            string   `json:"type"`
	Fix             string   `json:"fix"`
	Course          float64  `json:"course"`
	Heading         float64  `json:"heading"`
	DMEDistance     float64  `json:"dme_distance"`
	InterceptCourse float64  `json:"intercept_course"`
	Altitude        *struct {
		Kind string  `json:"kind"` // at | atOrAbove | atOrBelow | between
		Alt  float64 `json:"alt"`
		Min  float64 `json:"min"`
		Max  float64 `json:"max"`
	} `json:"altitude"`
	Speed *struct {
		MaxIAS float64 `json:"max_ias"`
	} `json:"speed"`
}

func restrictionKindFromJSON(kind string) RestrictionKind {
	switch kind {
	case "atOrAbove":
		return RestrictAtOrAbove
	case "atOrBelow":
		return RestrictAtOrBelow
	case "between":
		return RestrictBetween
	default:
		return RestrictAt
	}
}

func legFromJSON(lj legJSON) Leg {
	leg := Leg{
		Type:            LegType(lj.Type),
		Fix:             lj.Fix,
		Course:          lj.Course,
		Heading:         lj.Heading,
		DMEDistance:     lj.DMEDistance,
		InterceptCourse: lj.InterceptCourse,
	}
	if lj.Altitude != nil {
		leg.Altitude = &AltitudeRestriction{
			Kind: restrictionKindFromJSON(lj.Altitude.Kind),
			Alt:  lj.Altitude.Alt,
			Min:  lj.Altitude.Min,
			Max:  lj.Altitude.Max,
		}
	}
	if lj.Speed != nil {
		leg.Speed = &SpeedConstraint{MaxIAS: lj.Speed.MaxIAS}
	}
	return leg
}

func procedureFromJSON(pj procedureJSON) Procedure {
	p := Procedure{Name: pj.Name, Legs: make([]Leg, 0, len(pj.Legs))}
	for _, lj := range pj.Legs {
		p.Legs = append(p.Legs, legFromJSON(lj))
	}
	return p
}

// LoadAirportData parses the JSON airport document on disk.
// Unknown fields and unknown leg types are tolerated by construction (we
// only ever read the fields we know about).
func LoadAirportData(data []byte) (*AirportData, error) {
	var raw airportJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAirportLoadFailed, err)
	}
	if raw.ICAO == "" {
		return nil, fmt.Errorf("%w: missing icao", ErrAirportLoadFailed)
	}

	ap := &AirportData{
		ICAO:        raw.ICAO,
		Reference:   geo.Point{Lat: raw.Lat, Lon: raw.Lon},
		ElevationFt: raw.Elevation,
		Runways:     make(map[string]Runway),
		Fixes:       make(map[string]Fix),
		Navaids:     make(map[string]Navaid),
		SIDs:        make(map[string]Procedure),
		STARs:       make(map[string]Procedure),
		Approaches:  make(map[string][]Approach),
		Frequencies: raw.Frequencies,
	}
	ap.Projection = geo.NewProjection(ap.Reference)

	for _, r := range raw.Runways {
		ap.Runways[r.ID] = Runway{
			ID:              r.ID,
			Heading:         r.Heading,
			Threshold:       geo.Point{Lat: r.ThresholdLat, Lon: r.ThresholdLon},
			End:             geo.Point{Lat: r.EndLat, Lon: r.EndLon},
			LengthFt:        r.LengthFt,
			ElevationFt:     r.ElevationFt,
			ILSAvailable:    r.ILSAvailable,
			ILSCourse:       r.ILSCourse,
			GlideslopeAngle: util.Select(r.GlideslopeAngle == 0, 3.0, r.GlideslopeAngle),
		}
	}
	for _, f := range raw.Fixes {
		ap.Fixes[f.ID] = Fix{ID: f.ID, Location: geo.Point{Lat: f.Lat, Lon: f.Lon}}
	}
	for _, n := range raw.Navaids {
		ap.Navaids[n.ID] = Navaid{ID: n.ID, Location: geo.Point{Lat: n.Lat, Lon: n.Lon}, Freq: n.Freq}
	}
	for _, s := range raw.SIDs {
		ap.SIDs[s.Name] = procedureFromJSON(s)
	}
	for _, s := range raw.STARs {
		ap.STARs[s.Name] = procedureFromJSON(s)
	}
	for _, a := range raw.Approaches {
		appr := Approach{
			Type:              ApproachType(a.Type),
			Runway:            a.Runway,
			MinimumCeiling:    a.MinimumCeiling,
			MinimumVisibility: a.MinimumVisibility,
		}
		for _, lj := range a.MissedLegs {
			appr.MissedLegs = append(appr.MissedLegs, legFromJSON(lj))
		}
		ap.Approaches[a.Runway] = append(ap.Approaches[a.Runway], appr)
	}
	for _, poly := range raw.Airspace {
		p := AirspacePolygon{Name: poly.Name, FloorFt: poly.FloorFt, CeilFt: poly.CeilFt}
		for _, v := range poly.Vertices {
			p.Vertices = append(p.Vertices, geo.Point{Lat: v.Lat, Lon: v.Lon})
		}
		ap.Airspace = append(ap.Airspace, p)
	}

	return ap, nil
}
