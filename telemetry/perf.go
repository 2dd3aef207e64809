package telemetry

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/sphfluid/systems"
)

// PhaseTelemetry covers stats collection and CSV output done between frames.
const PhaseTelemetry = "telemetry"

// loggedPhases is the order phases appear in logs and CSV rows.
var loggedPhases = append(append([]string{}, systems.Phases...), PhaseTelemetry)

// PerfSample holds timing data for a single frame.
type PerfSample struct {
	TickDuration time.Duration
	Phases       map[string]time.Duration
}

// PerfCollector tracks performance metrics over a rolling window.
// A tick is one simulation frame; phases are the solver stages it runs.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	tickStart     time.Time
	phaseStart    time.Time
	lastPhase     string

	// Frame timing (for graphics mode)
	lastFrameTime time.Time
	frameDuration time.Duration
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of ticks to average over (e.g., 120 for 2 seconds at 60fps).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartTick begins timing a new frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase. Repeated phases within one
// tick (one per substep) accumulate.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndTick finishes timing the current tick and records the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		TickDuration: now.Sub(p.tickStart),
		Phases:       p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrameTime.IsZero() {
		p.frameDuration = now.Sub(p.lastFrameTime)
	}
	p.lastFrameTime = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	var fps float64
	if p.frameDuration > 0 {
		fps = float64(time.Second) / float64(p.frameDuration)
	}

	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg:      make(map[string]time.Duration),
			PhasePct:      make(map[string]float64),
			FrameDuration: p.frameDuration,
			FPS:           fps,
		}
	}

	var totalTick, minTick, maxTick time.Duration
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalTick += s.TickDuration

		if i == 0 || s.TickDuration < minTick {
			minTick = s.TickDuration
		}
		if s.TickDuration > maxTick {
			maxTick = s.TickDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgTick := totalTick / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgTick > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgTick) * 100
		}
	}

	var ticksPerSec float64
	if avgTick > 0 {
		ticksPerSec = float64(time.Second) / float64(avgTick)
	}

	return PerfStats{
		AvgTickDuration: avgTick,
		MinTickDuration: minTick,
		MaxTickDuration: maxTick,
		PhaseAvg:        phaseAvg,
		PhasePct:        phasePct,
		TicksPerSecond:  ticksPerSec,
		FrameDuration:   p.frameDuration,
		FPS:             fps,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_frame_us", s.AvgTickDuration.Microseconds(),
		"min_frame_us", s.MinTickDuration.Microseconds(),
		"max_frame_us", s.MaxTickDuration.Microseconds(),
		"frames_per_sec", int(s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range loggedPhases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_frame_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("frames_per_sec", s.TicksPerSecond),
	}

	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}

	for _, phase := range loggedPhases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Frame             int     `csv:"frame"`
	AvgFrameUS        int64   `csv:"avg_frame_us"`
	MinFrameUS        int64   `csv:"min_frame_us"`
	MaxFrameUS        int64   `csv:"max_frame_us"`
	FramesPerSec      float64 `csv:"frames_per_sec"`
	FPS               float64 `csv:"fps"`
	ExternalForcesPct float64 `csv:"external_forces_pct"`
	SpatialHashPct    float64 `csv:"spatial_hash_pct"`
	SortPct           float64 `csv:"sort_pct"`
	OffsetsPct        float64 `csv:"offsets_pct"`
	DensityPct        float64 `csv:"density_pct"`
	PressurePct       float64 `csv:"pressure_pct"`
	ViscosityPct      float64 `csv:"viscosity_pct"`
	IntegratePct      float64 `csv:"integrate_pct"`
	TelemetryPct      float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(frame int) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:             frame,
		AvgFrameUS:        s.AvgTickDuration.Microseconds(),
		MinFrameUS:        s.MinTickDuration.Microseconds(),
		MaxFrameUS:        s.MaxTickDuration.Microseconds(),
		FramesPerSec:      s.TicksPerSecond,
		FPS:               s.FPS,
		ExternalForcesPct: s.PhasePct[systems.PhaseExternalForces],
		SpatialHashPct:    s.PhasePct[systems.PhaseSpatialHash],
		SortPct:           s.PhasePct[systems.PhaseSort],
		OffsetsPct:        s.PhasePct[systems.PhaseOffsets],
		DensityPct:        s.PhasePct[systems.PhaseDensity],
		PressurePct:       s.PhasePct[systems.PhasePressure],
		ViscosityPct:      s.PhasePct[systems.PhaseViscosity],
		IntegratePct:      s.PhasePct[systems.PhaseIntegrate],
		TelemetryPct:      s.PhasePct[PhaseTelemetry],
	}
}
