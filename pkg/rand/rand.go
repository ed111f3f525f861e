// pkg/rand/rand.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package rand provides a small, seedable PCG32-based random source used
// for everything in the sim that needs determinism: scenario pre-spawning,
// callsign allocation, weather generation. Every session owns one *Rand so
// that a fixed seed reproduces an entire run tick-for-tick.
package rand

const (
	pcg32Multiplier = 0x5851f42d4c957f2d
	pcg32Increment  = 0xda3e39cb94b95bdb
)

type PCG32 struct {
	State     uint64
	Increment uint64
}

func NewPCG32() PCG32 {
	return PCG32{State: 0x853c49e6748fea9b, Increment: pcg32Increment}
}

func (p *PCG32) Seed(state, sequence uint64) {
	p.Increment = (sequence << 1) | 1
	p.State = (state+p.Increment)*pcg32Multiplier + p.Increment
}

func (p *PCG32) Random() uint32 {
	oldState := p.State
	p.State = oldState*pcg32Multiplier + p.Increment

	xorShifted := uint32(((oldState >> 18) ^ oldState) >> 27)
	rot := uint32(oldState >> 59)
	return (xorShifted >> rot) | (xorShifted << ((-rot) & 31))
}

func (p *PCG32) Bounded(bound uint32) uint32 {
	if bound == 0 {
		return 0
	}
	threshold := -bound % bound
	for {
		r := p.Random()
		if r >= threshold {
			return r % bound
		}
	}
}

// Rand is a per-session random stream. Create one with Make() or New(seed)
// and carry it on the Session so replays are deterministic.
type Rand struct {
	PCG32
}

// Make returns a Rand in the fixed default PCG32 state, so every Rand
// from Make produces the same stream; use New for a seed of your choosing.
func Make() *Rand {
	r := &Rand{PCG32: NewPCG32()}
	return r
}

// New returns a Rand seeded deterministically from seed.
func New(seed uint64) *Rand {
	r := &Rand{PCG32: NewPCG32()}
	r.Seed(seed)
	return r
}

func (r *Rand) Seed(seed uint64) {
	r.PCG32.Seed(seed, pcg32Increment)
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Bounded(uint32(n)))
}

func (r *Rand) Float64() float64 {
	return float64(r.Random()) / (1 << 32)
}

// Float64Range returns a uniform value in [lo, hi).
func (r *Rand) Float64Range(lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// SampleSlice uniformly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, s []T) T {
	return s[r.Intn(len(s))]
}

// SampleWeighted randomly samples an element from s with probability
// proportional to weight(v), using weighted reservoir sampling so the
// caller never needs to normalize the weights.
func SampleWeighted[T any](r *Rand, s []T, weight func(T) float64) (T, bool) {
	var sample T
	var ok bool
	sumWt := 0.0
	for _, v := range s {
		w := weight(v)
		if w <= 0 {
			continue
		}
		sumWt += w
		if r.Float64() < w/sumWt {
			sample = v
			ok = true
		}
	}
	return sample, ok
}
