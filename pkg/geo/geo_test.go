// pkg/geo/geo_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"math"
	"testing"
)

func TestProjectUnprojectRoundTrip(t *testing.T) {
	origin := Point{Lat: 33.9425, Lon: -118.4081} // LAX
	proj := NewProjection(origin)

	pts := []Point{
		origin,
		{Lat: 34.05, Lon: -118.25},
		{Lat: 33.80, Lon: -118.60},
		{Lat: 34.20, Lon: -117.90},
	}

	for _, p := range pts {
		v := proj.Project(p)
		back := proj.Unproject(v)
		if math.Abs(back.Lat-p.Lat) > 1e-9 || math.Abs(back.Lon-p.Lon) > 1e-9 {
			t.Errorf("round trip failed for %+v: got %+v", p, back)
		}
	}
}

func TestNormalizeHeading(t *testing.T) {
	cases := map[float64]float64{
		0:    0,
		360:  0,
		370:  10,
		-10:  350,
		-370: 350,
	}
	for in, want := range cases {
		if got := NormalizeHeading(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("NormalizeHeading(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestHeadingDifference(t *testing.T) {
	if d := HeadingDifference(10, 350); math.Abs(d-20) > 1e-9 {
		t.Errorf("HeadingDifference(10,350) = %v, want 20", d)
	}
	if d := HeadingDifference(0, 180); math.Abs(d-180) > 1e-9 {
		t.Errorf("HeadingDifference(0,180) = %v, want 180", d)
	}
}

func TestCrossTrack(t *testing.T) {
	origin := Point{Lat: 33.9425, Lon: -118.4081}
	proj := NewProjection(origin)

	// A point 1 nm east of the origin, flying due north course: should be
	// ~1nm right of course (positive xtk).
	east := proj.Unproject(Vec2{X: 1, Y: 0})
	xtk, along := proj.CrossTrack(east, origin, 0)
	if math.Abs(xtk-1) > 1e-6 {
		t.Errorf("xtk = %v, want ~1", xtk)
	}
	if math.Abs(along) > 1e-6 {
		t.Errorf("along = %v, want ~0", along)
	}
}
