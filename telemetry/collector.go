package telemetry

import "github.com/pthm-cable/sphfluid/systems"

// Collector counts frames and substeps within simulated-time windows and
// produces a FrameStats row when a window closes.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartSec float64
	frames         int
	substeps       int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// A non-positive window flushes on every frame.
func NewCollector(windowDurationSec float64) *Collector {
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordSubstep records one solver substep.
func (c *Collector) RecordSubstep() {
	c.substeps++
}

// RecordFrame records one completed frame.
func (c *Collector) RecordFrame() {
	c.frames++
}

// ShouldFlush returns true if enough simulated time has passed to flush the window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartSec >= c.windowDurationSec
}

// Flush summarises the current particle state and resets counters for the
// next window.
func (c *Collector) Flush(
	frame int,
	simTime float64,
	pos, vel []systems.Vec2,
	dens []systems.Density,
	targetDensity float32,
) FrameStats {
	stats := ComputeFrameStats(frame, simTime, pos, vel, dens, targetDensity)
	stats.WindowFrames = c.frames
	stats.WindowSubsteps = c.substeps

	c.windowStartSec = simTime
	c.frames = 0
	c.substeps = 0

	return stats
}

// WindowDuration returns the window length in simulated seconds.
func (c *Collector) WindowDuration() float64 {
	return c.windowDurationSec
}
