package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sphfluid/systems"
)

// FrameStats holds a summary of the fluid state sampled at a frame boundary.
type FrameStats struct {
	Frame      int     `csv:"frame"`
	SimTimeSec float64 `csv:"sim_time"`
	Particles  int     `csv:"particles"`

	// Work done since the previous row
	WindowFrames   int `csv:"window_frames"`
	WindowSubsteps int `csv:"window_substeps"`

	// Motion
	KineticEnergy float64 `csv:"kinetic_energy"` // Sum of v²/2 over particles (unit mass)
	SpeedMean     float64 `csv:"speed_mean"`
	SpeedMax      float64 `csv:"speed_max"`
	SpeedP90      float64 `csv:"speed_p90"`
	CentreX       float64 `csv:"centre_x"`
	CentreY       float64 `csv:"centre_y"`

	// Density distribution
	DensityMean     float64 `csv:"density_mean"`
	DensityStd      float64 `csv:"density_std"`
	DensityP10      float64 `csv:"density_p10"`
	DensityP50      float64 `csv:"density_p50"`
	DensityP90      float64 `csv:"density_p90"`
	NearDensityMean float64 `csv:"near_density_mean"`
	DensityError    float64 `csv:"density_error"` // Mean |rho - target| relative to target
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Summarize returns mean, sample standard deviation, and the 10/50/90th
// percentiles of values. values is not modified.
func Summarize(values []float64) (mean, std, p10, p50, p90 float64) {
	switch len(values) {
	case 0:
		return 0, 0, 0, 0, 0
	case 1:
		v := values[0]
		return v, 0, v, v, v
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, std, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// DensityError is the mean absolute deviation of rho from target, divided by
// target. With a non-positive target the absolute deviation is returned.
func DensityError(rho []float64, target float64) float64 {
	if len(rho) == 0 {
		return 0
	}
	want := make([]float64, len(rho))
	for i := range want {
		want[i] = target
	}
	mad := floats.Distance(rho, want, 1) / float64(len(rho))
	if target > 0 {
		return mad / target
	}
	return mad
}

// ComputeFrameStats summarises particle state. The slices are the solver's
// read-only views and must all have the same length.
func ComputeFrameStats(frame int, simTime float64, pos, vel []systems.Vec2, dens []systems.Density, targetDensity float32) FrameStats {
	n := len(pos)
	fs := FrameStats{Frame: frame, SimTimeSec: simTime, Particles: n}
	if n == 0 {
		return fs
	}

	speeds := make([]float64, n)
	energy := make([]float64, n)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, v := range vel {
		sq := float64(v.LengthSq())
		speeds[i] = math.Sqrt(sq)
		energy[i] = 0.5 * sq
		xs[i] = float64(pos[i].X)
		ys[i] = float64(pos[i].Y)
	}

	rho := make([]float64, n)
	near := make([]float64, n)
	for i, d := range dens {
		rho[i] = float64(d.Rho)
		near[i] = float64(d.Near)
	}

	fs.KineticEnergy = floats.Sum(energy)
	fs.SpeedMax = floats.Max(speeds)
	fs.SpeedMean, _, _, _, fs.SpeedP90 = Summarize(speeds)
	fs.CentreX = stat.Mean(xs, nil)
	fs.CentreY = stat.Mean(ys, nil)

	fs.DensityMean, fs.DensityStd, fs.DensityP10, fs.DensityP50, fs.DensityP90 = Summarize(rho)
	fs.NearDensityMean = stat.Mean(near, nil)
	fs.DensityError = DensityError(rho, float64(targetDensity))

	return fs
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_error", s.DensityError),
	)
}

// LogStats logs the frame stats using slog.
func (s FrameStats) LogStats() {
	slog.Info("stats",
		"frame", s.Frame,
		"sim_time", s.SimTimeSec,
		"kinetic_energy", s.KineticEnergy,
		"speed_mean", s.SpeedMean,
		"speed_max", s.SpeedMax,
		"speed_p90", s.SpeedP90,
		"centre_x", s.CentreX,
		"centre_y", s.CentreY,
		"density_mean", s.DensityMean,
		"density_std", s.DensityStd,
		"density_p10", s.DensityP10,
		"density_p90", s.DensityP90,
		"near_density_mean", s.NearDensityMean,
		"density_error", s.DensityError,
	)
}
