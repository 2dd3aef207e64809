package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/sphfluid/systems"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate a few ticks
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseSpatialHash)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(systems.PhaseDensity)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Verify we got timing data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}

	// Verify phases are tracked
	if len(stats.PhaseAvg) == 0 {
		t.Error("expected phase averages to be populated")
	}

	if _, ok := stats.PhaseAvg[systems.PhaseSpatialHash]; !ok {
		t.Error("expected spatial_hash phase to be tracked")
	}

	if _, ok := stats.PhaseAvg[systems.PhaseDensity]; !ok {
		t.Error("expected density phase to be tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5) // Small window

	// Fill window completely
	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(systems.PhaseSpatialHash)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	// Should have data
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}

	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	// Simulate with uneven phase durations
	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	fastPct := stats.PhasePct["fast"]
	slowPct := stats.PhasePct["slow"]

	// Slow phase should take more % than fast
	if slowPct <= fastPct {
		t.Errorf("expected slow phase (%v%%) > fast phase (%v%%)", slowPct, fastPct)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()

	// Empty collector should return zero values without panicking
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}

	if stats.PhaseAvg == nil {
		t.Error("expected non-nil PhaseAvg map")
	}

	if stats.PhasePct == nil {
		t.Error("expected non-nil PhasePct map")
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	// First call establishes baseline
	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond) // ~60fps frame time
	// Second call measures duration
	pc.RecordFrame()

	stats := pc.Stats()

	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}

	if stats.FPS <= 0 {
		t.Error("expected positive FPS")
	}

	// With 16ms frames, expect ~60 FPS (allow range 40-80)
	if stats.FPS < 40 || stats.FPS > 80 {
		t.Errorf("expected FPS between 40-80 with 16ms frame time, got %v", stats.FPS)
	}
}

func TestPerfCollector_RepeatedPhasesAccumulate(t *testing.T) {
	pc := NewPerfCollector(4)

	// Three substeps in one frame each pass through every stage
	pc.StartTick()
	for sub := 0; sub < 3; sub++ {
		for _, phase := range systems.Phases {
			pc.StartPhase(phase)
			time.Sleep(20 * time.Microsecond)
		}
	}
	pc.EndTick()

	stats := pc.Stats()
	for _, phase := range systems.Phases {
		if stats.PhaseAvg[phase] < 60*time.Microsecond {
			t.Errorf("phase %s avg = %v, want at least three sleeps", phase, stats.PhaseAvg[phase])
		}
	}

	row := stats.ToCSV(30)
	if row.Frame != 30 {
		t.Errorf("csv frame = %d, want 30", row.Frame)
	}
	if row.DensityPct <= 0 || row.IntegratePct <= 0 {
		t.Errorf("csv phase percentages not populated: %+v", row)
	}
}
