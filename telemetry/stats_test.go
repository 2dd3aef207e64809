package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/sphfluid/systems"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	values := []float64{9, 2, 4, 4, 5, 5, 7, 4}
	mean, std, p10, p50, p90 := Summarize(values)

	if math.Abs(mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", mean)
	}
	// Sample standard deviation: sqrt(32/7)
	if math.Abs(std-math.Sqrt(32.0/7)) > 1e-9 {
		t.Errorf("std = %v, want %v", std, math.Sqrt(32.0/7))
	}
	if p10 > p50 || p50 > p90 {
		t.Errorf("percentiles out of order: %v %v %v", p10, p50, p90)
	}
	if math.Abs(p50-4.5) > 1e-9 {
		t.Errorf("p50 = %v, want 4.5", p50)
	}
	if values[0] != 9 {
		t.Error("Summarize reordered its input")
	}
}

func TestSummarizeEdgeCases(t *testing.T) {
	if m, s, a, b, c := Summarize(nil); m != 0 || s != 0 || a != 0 || b != 0 || c != 0 {
		t.Error("empty slice should return all zeros")
	}
	if m, s, a, b, c := Summarize([]float64{3}); m != 3 || s != 0 || a != 3 || b != 3 || c != 3 {
		t.Errorf("single value: got %v %v %v %v %v", m, s, a, b, c)
	}
}

func TestDensityError(t *testing.T) {
	tests := []struct {
		name   string
		rho    []float64
		target float64
		want   float64
	}{
		{"exact", []float64{10, 10, 10}, 10, 0},
		{"symmetric spread", []float64{8, 12}, 10, 0.2},
		{"zero target", []float64{1, -1}, 0, 1},
		{"empty", nil, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DensityError(tt.rho, tt.target); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("DensityError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeFrameStats(t *testing.T) {
	pos := []systems.Vec2{{X: -1, Y: 0}, {X: 1, Y: 2}}
	vel := []systems.Vec2{{X: 3, Y: 4}, {X: 0, Y: 0}}
	dens := []systems.Density{{Rho: 4, Near: 1}, {Rho: 6, Near: 3}}

	fs := ComputeFrameStats(12, 0.5, pos, vel, dens, 5)

	if fs.Frame != 12 || fs.Particles != 2 || fs.SimTimeSec != 0.5 {
		t.Errorf("header = %+v", fs)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"kinetic_energy", fs.KineticEnergy, 12.5},
		{"speed_max", fs.SpeedMax, 5},
		{"speed_mean", fs.SpeedMean, 2.5},
		{"centre_x", fs.CentreX, 0},
		{"centre_y", fs.CentreY, 1},
		{"density_mean", fs.DensityMean, 5},
		{"near_density_mean", fs.NearDensityMean, 2},
		{"density_error", fs.DensityError, 0.2},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-6 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestComputeFrameStatsEmpty(t *testing.T) {
	fs := ComputeFrameStats(1, 0, nil, nil, nil, 5)
	if fs.Particles != 0 || fs.KineticEnergy != 0 {
		t.Errorf("empty stats = %+v", fs)
	}
}

func TestCollectorWindow(t *testing.T) {
	c := NewCollector(1.0)
	pos := []systems.Vec2{{X: 0, Y: 0}}
	vel := []systems.Vec2{{X: 1, Y: 0}}
	dens := []systems.Density{{Rho: 1}}

	if c.ShouldFlush(0.5) {
		t.Error("flushed before the window elapsed")
	}
	for i := 0; i < 4; i++ {
		c.RecordFrame()
		for s := 0; s < 3; s++ {
			c.RecordSubstep()
		}
	}
	if !c.ShouldFlush(1.0) {
		t.Fatal("window should flush at its duration")
	}

	stats := c.Flush(4, 1.0, pos, vel, dens, 1)
	if stats.WindowFrames != 4 || stats.WindowSubsteps != 12 {
		t.Errorf("window counts = %d frames, %d substeps; want 4, 12", stats.WindowFrames, stats.WindowSubsteps)
	}
	if c.ShouldFlush(1.5) {
		t.Error("window did not restart at flush time")
	}
	if !c.ShouldFlush(2.0) {
		t.Error("second window should close one second after the first")
	}
	if next := c.Flush(8, 2.0, pos, vel, dens, 1); next.WindowFrames != 0 {
		t.Errorf("counters not reset: %d frames", next.WindowFrames)
	}
}
