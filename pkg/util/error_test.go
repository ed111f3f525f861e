// pkg/util/error_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"strings"
	"testing"
)

func TestErrorLoggerTracksHierarchyPrefix(t *testing.T) {
	var e ErrorLogger
	e.Push("airport KLAX")
	e.Push("runway 25L")
	e.ErrorString("missing ILS course")
	e.Pop()
	e.Pop()

	if !e.HaveErrors() {
		t.Fatalf("expected HaveErrors to report true after an error was recorded")
	}
	s := e.String()
	if !strings.Contains(s, "airport KLAX / runway 25L") || !strings.Contains(s, "missing ILS course") {
		t.Errorf("expected the error string to carry the hierarchy prefix, got %q", s)
	}
}

func TestErrorLoggerNoErrorsByDefault(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() {
		t.Errorf("expected a fresh ErrorLogger to report no errors")
	}
	if e.String() != "" {
		t.Errorf("expected an empty string with no errors, got %q", e.String())
	}
}

func TestErrorLoggerFormatsArgs(t *testing.T) {
	var e ErrorLogger
	e.ErrorString("expected %d, got %d", 3, 5)
	if !strings.Contains(e.String(), "expected 3, got 5") {
		t.Errorf("expected formatted args in the error string, got %q", e.String())
	}
}
