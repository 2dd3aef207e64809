package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSplash      BookmarkType = "splash"
	BookmarkCompression BookmarkType = "compression"
	BookmarkSettled     BookmarkType = "settled"
	BookmarkBlowup      BookmarkType = "blowup"
)

// Detection thresholds.
const (
	splashFactor      = 2.0   // KE above this multiple of the rolling mean
	splashMinKinetic  = 0.25  // ignore splashes below this KE per particle
	compressionFactor = 1.5   // P90 density above this multiple of target
	settledKinetic    = 0.02  // KE per particle considered at rest
	settledMaxCV      = 0.2   // KE coefficient of variation over the settle run
	settledWindows    = 4     // consecutive calm windows before "settled"
	blowupSpeed       = 500.0 // speeds above this mean the solver diverged
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int          `csv:"frame"`
	SimTimeSec  float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"sim_time", b.SimTimeSec,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the fluid's evolution.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FrameStats
	historySize int
	historyIdx  int
	historyFull bool

	// Edge-trigger state
	compressed bool
	settled    bool
	calmStreak int
	blownUp    bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < settledWindows+1 {
		historySize = settledWindows + 1
	}
	return &BookmarkDetector{
		history:     make([]FrameStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FrameStats, targetDensity float64) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkBlowup(stats); b != nil {
		// Nothing else is meaningful once the state is non-finite
		bd.addToHistory(stats)
		return append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkSplash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkCompression(stats, targetDensity); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FrameStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FrameStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func kineticPerParticle(s FrameStats) float64 {
	if s.Particles == 0 {
		return 0
	}
	return s.KineticEnergy / float64(s.Particles)
}

func newBookmark(t BookmarkType, stats FrameStats, format string, args ...any) *Bookmark {
	return &Bookmark{
		Type:        t,
		Frame:       stats.Frame,
		SimTimeSec:  stats.SimTimeSec,
		Description: fmt.Sprintf(format, args...),
	}
}

func (bd *BookmarkDetector) checkBlowup(stats FrameStats) *Bookmark {
	if bd.blownUp {
		return nil
	}
	if math.IsNaN(stats.KineticEnergy) || math.IsInf(stats.KineticEnergy, 0) || stats.SpeedMax > blowupSpeed {
		bd.blownUp = true
		return newBookmark(BookmarkBlowup, stats, "Max speed %.1f, kinetic energy %g", stats.SpeedMax, stats.KineticEnergy)
	}
	return nil
}

func (bd *BookmarkDetector) checkSplash(stats FrameStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	ke := make([]float64, len(history))
	for i, h := range history {
		ke[i] = kineticPerParticle(h)
	}
	avg := stat.Mean(ke, nil)

	cur := kineticPerParticle(stats)
	if cur > splashMinKinetic && cur > avg*splashFactor {
		return newBookmark(BookmarkSplash, stats, "Kinetic energy per particle %.3f is %.1fx average (%.3f)", cur, cur/max(avg, 1e-12), avg)
	}
	return nil
}

func (bd *BookmarkDetector) checkCompression(stats FrameStats, target float64) *Bookmark {
	if target <= 0 {
		return nil
	}
	over := stats.DensityP90 > target*compressionFactor
	if !over {
		bd.compressed = false
		return nil
	}
	if bd.compressed {
		return nil
	}
	bd.compressed = true
	return newBookmark(BookmarkCompression, stats, "P90 density %.1f is %.2fx target %.1f", stats.DensityP90, stats.DensityP90/target, target)
}

func (bd *BookmarkDetector) checkSettled(stats FrameStats) *Bookmark {
	cur := kineticPerParticle(stats)
	if cur >= settledKinetic {
		bd.calmStreak = 0
		// Hysteresis so a single jiggle does not re-arm the bookmark
		if cur > 2*settledKinetic {
			bd.settled = false
		}
		return nil
	}

	bd.calmStreak++
	if bd.settled || bd.calmStreak < settledWindows {
		return nil
	}

	// The calm run must also be steady
	history := bd.getHistory()
	n := min(settledWindows-1, len(history))
	ke := []float64{cur}
	for i := 0; i < n; i++ {
		idx := (bd.historyIdx - 1 - i + bd.historySize) % bd.historySize
		ke = append(ke, kineticPerParticle(bd.history[idx]))
	}
	mean, std := stat.MeanStdDev(ke, nil)
	if mean > 0 && std/mean > settledMaxCV {
		return nil
	}

	bd.settled = true
	return newBookmark(BookmarkSettled, stats, "Kinetic energy per particle %.4f for %d windows", cur, bd.calmStreak)
}
