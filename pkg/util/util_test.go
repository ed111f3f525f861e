// pkg/util/util_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import "testing"

func TestSelect(t *testing.T) {
	if got := Select(true, "a", "b"); got != "a" {
		t.Errorf("expected Select(true, ...) to return the first value, got %q", got)
	}
	if got := Select(false, 1, 2); got != 2 {
		t.Errorf("expected Select(false, ...) to return the second value, got %d", got)
	}
}

func TestDuplicateSliceDoesNotAlias(t *testing.T) {
	src := []int{1, 2, 3}
	dup := DuplicateSlice(src)
	dup[0] = 99
	if src[0] != 1 {
		t.Errorf("expected the original slice untouched by mutating the duplicate, got %d", src[0])
	}
}

func TestDuplicateSliceNilInput(t *testing.T) {
	var src []int
	dup := DuplicateSlice(src)
	if dup != nil {
		t.Errorf("expected a nil slice to duplicate to nil, got %v", dup)
	}
}

func TestFilterSliceInPlaceKeepsMatching(t *testing.T) {
	s := []int{1, 2, 3, 4, 5, 6}
	out := FilterSliceInPlace(s, func(v int) bool { return v%2 == 0 })
	want := []int{2, 4, 6}
	if len(out) != len(want) {
		t.Fatalf("expected %v, got %v", want, out)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("expected %v, got %v", want, out)
		}
	}
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"c": 3, "a": 1, "b": 2}
	keys := SortedMapKeys(m)
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("expected sorted keys %v, got %v", want, keys)
		}
	}
}
