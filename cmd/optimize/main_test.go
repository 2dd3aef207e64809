package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerQuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false)

	logger.Info("simulation initialized", "particles", 1200)
	if buf.Len() != 0 {
		t.Errorf("info line logged in quiet mode: %s", buf.String())
	}

	logger.Warn("parameter change rejected")
	if !strings.Contains(buf.String(), "parameter change rejected") {
		t.Errorf("warning missing from output: %q", buf.String())
	}
}

func TestNewLoggerVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, true)

	logger.Info("simulation initialized")
	if !strings.Contains(buf.String(), "simulation initialized") {
		t.Errorf("info line missing in verbose mode: %q", buf.String())
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should stay disabled")
	}
}
