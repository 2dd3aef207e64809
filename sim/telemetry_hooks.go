package sim

import (
	"log/slog"

	"github.com/pthm-cable/sphfluid/telemetry"
)

// RecorderOptions configures AttachTelemetry. Nil collaborators are skipped.
type RecorderOptions struct {
	WindowSec   float64 // Simulated seconds per stats row
	Perf        *telemetry.PerfCollector
	Output      *telemetry.OutputManager
	LogStats    bool
	SnapshotDir string // Save a snapshot on every bookmark when set
}

// Recorder samples frame stats over simulated-time windows and forwards
// them to the log, the output files and optional callbacks.
type Recorder struct {
	ctrl      *Controller
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
	opts      RecorderOptions

	latest       telemetry.FrameStats
	lastBookmark *telemetry.Bookmark
	flushed      int
	onStats      func(telemetry.FrameStats)
	onBookmark   func(telemetry.Bookmark)
}

// AttachTelemetry hooks a Recorder into c.
func AttachTelemetry(c *Controller, opts RecorderOptions) *Recorder {
	r := &Recorder{
		ctrl:      c,
		collector: telemetry.NewCollector(opts.WindowSec),
		bookmarks: telemetry.NewBookmarkDetector(10),
		opts:      opts,
	}
	if opts.Perf != nil {
		c.SetFrameTimer(opts.Perf)
	}
	c.OnSubstep(func(SubstepEvent) { r.collector.RecordSubstep() })
	c.OnFrame(r.flushTelemetry)
	return r
}

// OnStats registers a callback receiving every flushed stats row.
func (r *Recorder) OnStats(fn func(telemetry.FrameStats)) {
	r.onStats = fn
}

// OnBookmark registers a callback receiving every detected bookmark.
func (r *Recorder) OnBookmark(fn func(telemetry.Bookmark)) {
	r.onBookmark = fn
}

// Latest returns the most recent stats row.
func (r *Recorder) Latest() telemetry.FrameStats {
	return r.latest
}

// LastBookmark returns the most recent bookmark, or nil.
func (r *Recorder) LastBookmark() *telemetry.Bookmark {
	return r.lastBookmark
}

// Flushed returns the number of stats rows produced.
func (r *Recorder) Flushed() int {
	return r.flushed
}

// flushTelemetry runs inside the frame, after the last substep.
func (r *Recorder) flushTelemetry(ev FrameEvent) {
	if r.opts.Perf != nil {
		r.opts.Perf.StartPhase(telemetry.PhaseTelemetry)
	}
	r.collector.RecordFrame()
	if !r.collector.ShouldFlush(ev.SimTime) {
		return
	}

	target := r.ctrl.solver.Parameters().TargetDensity
	stats := r.collector.Flush(ev.Frame, ev.SimTime, r.ctrl.Positions(), r.ctrl.Velocities(), r.ctrl.Densities(), target)
	r.latest = stats
	r.flushed++

	if r.onStats != nil {
		r.onStats(stats)
	}

	var perfStats telemetry.PerfStats
	if r.opts.Perf != nil {
		perfStats = r.opts.Perf.Stats()
	}

	if r.opts.LogStats {
		stats.LogStats()
		if r.opts.Perf != nil {
			perfStats.LogStats()
		}
	}

	if r.opts.Output != nil {
		if err := r.opts.Output.WriteFrameStats(stats); err != nil {
			slog.Error("failed to write frame stats", "error", err)
		}
		if r.opts.Perf != nil {
			if err := r.opts.Output.WritePerf(perfStats, ev.Frame); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
	}

	for _, bm := range r.bookmarks.Check(stats, float64(target)) {
		r.lastBookmark = &bm
		if r.opts.LogStats {
			bm.LogBookmark()
		}
		if r.onBookmark != nil {
			r.onBookmark(bm)
		}

		if r.opts.Output != nil {
			if err := r.opts.Output.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if r.opts.SnapshotDir != "" {
			snap := r.ctrl.Snapshot()
			snap.Bookmark = &bm
			if path, err := telemetry.SaveSnapshot(snap, r.opts.SnapshotDir); err != nil {
				slog.Error("failed to save snapshot", "error", err)
			} else {
				slog.Info("snapshot saved", "path", path, "bookmark", string(bm.Type))
			}
		}
	}
}

// Snapshot captures the current particle state and active parameters.
func (c *Controller) Snapshot() *telemetry.Snapshot {
	return telemetry.NewSnapshot(c.frame, c.simTime, c.solver.Parameters(), c.Positions(), c.Velocities())
}
