// pkg/log/log_test.go
// Copyright(c) 2026 tracon-sim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import "testing"

func TestNewDiscardDoesNotPanicOnAnyLevel(t *testing.T) {
	l := NewDiscard()
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 1)
	l.Warnf("warn %d", 1)
	l.Errorf("error %d", 1)
}

func TestNilLoggerIsSafeToCall(t *testing.T) {
	var l *Logger
	l.Debug("debug msg")
	l.Info("info msg")
	l.Warn("warn msg")
	l.Error("error msg")
	if got := l.With("k", "v"); got != nil {
		t.Errorf("expected With on a nil logger to return nil, got %v", got)
	}
}

func TestWithPreservesLogFileAndStart(t *testing.T) {
	l := NewDiscard()
	child := l.With("component", "test")
	if child == nil {
		t.Fatalf("expected a non-nil child logger")
	}
	if child.LogFile != l.LogFile {
		t.Errorf("expected With to preserve LogFile, got %q vs %q", child.LogFile, l.LogFile)
	}
	if child.Start != l.Start {
		t.Errorf("expected With to preserve Start time")
	}
}
