// pkg/util/util.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package util collects small generic helpers shared across the sim.
package util

import "sort"

// Select returns a if cond else b; a terser ternary for the common case of
// picking between two already-evaluated values.
func Select[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// DuplicateSlice returns a copy of s so the caller can mutate it without
// aliasing the original backing array.
func DuplicateSlice[T any](s []T) []T {
	return append([]T(nil), s...)
}

// FilterSliceInPlace removes elements for which keep returns false,
// compacting the slice in place.
func FilterSliceInPlace[T any](s []T, keep func(T) bool) []T {
	out := s[:0]
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// SortedMapKeys returns the keys of m in sorted order.
func SortedMapKeys[K Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type Ordered interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64 | ~string
}
