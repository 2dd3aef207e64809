package game

import (
	"testing"

	"github.com/pthm-cable/sphfluid/config"
)

func newHeadlessGame(t *testing.T) *Game {
	t.Helper()
	if err := config.Init(""); err != nil {
		t.Fatalf("config.Init: %v", err)
	}
	cfg := config.Cfg()
	cfg.Spawn.Count = 64
	cfg.Spawn.Size = [2]float64{1.5, 1.5}

	g, err := NewGameWithOptions(Options{Headless: true, Workers: 1})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func TestRestartKeepsParameters(t *testing.T) {
	g := newHeadlessGame(t)

	params := g.ctrl.Parameters()
	params.ViscosityStrength = 0.2
	if err := g.ctrl.SetParameters(params); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatal(err)
		}
	}

	old := g.ctrl
	g.restart()

	if g.ctrl == old {
		t.Fatal("restart kept the old controller")
	}
	if g.Frame() != 0 {
		t.Errorf("Frame() = %d after restart, want 0", g.Frame())
	}
	if g.ctrl.Parameters() != params {
		t.Errorf("parameters after restart = %+v, want %+v", g.ctrl.Parameters(), params)
	}
}

func TestRestartFailureKeepsController(t *testing.T) {
	g := newHeadlessGame(t)
	if err := g.UpdateHeadless(); err != nil {
		t.Fatal(err)
	}

	old, oldRecorder := g.ctrl, g.recorder

	// A config the controller rejects makes the rebuild fail
	good := g.cfg
	bad := *good
	bad.Spawn.Count = 0
	g.cfg = &bad
	g.restart()
	g.cfg = good

	if g.ctrl != old || g.recorder != oldRecorder {
		t.Fatal("failed restart replaced the running controller")
	}
	if err := g.UpdateHeadless(); err != nil {
		t.Fatalf("UpdateHeadless after failed restart: %v", err)
	}
	if g.Frame() != 2 {
		t.Errorf("Frame() = %d, want 2", g.Frame())
	}
}
