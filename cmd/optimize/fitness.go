package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/sim"
	"github.com/pthm-cable/sphfluid/spawn"
	"github.com/pthm-cable/sphfluid/systems"
	"github.com/pthm-cable/sphfluid/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxFrames   int
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	bestFitness float64
	lastScore   Score // score from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 0.5,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the averaged score from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Runs whose particles exceed this speed have blown up.
const blowupSpeed = 200.0

// Fitness weights.
const (
	weightKinetic    = 0.5 // per unit of kinetic energy per particle
	weightUniformity = 0.5 // per unit of density std relative to target
	blowupPenalty    = 100.0

	scoreWarmupWindows = 2 // skip first N windows while the block settles
)

// Score breaks a run's fitness into its terms.
type Score struct {
	DensityError float64 // mean relative density error
	KineticPer   float64 // kinetic energy per particle
	Uniformity   float64 // density std relative to target
	Blowup       bool
}

// Fitness combines the terms (lower = better).
func (s Score) Fitness() float64 {
	if s.Blowup {
		return blowupPenalty
	}
	return s.DensityError + weightKinetic*s.KineticPer + weightUniformity*s.Uniformity
}

// Evaluate computes fitness for a parameter vector (lower = better),
// averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	scores := make([]Score, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	avg := averageScores(scores)
	fitness := avg.Fitness()

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
	}
	fe.lastScore = avg
	fe.mu.Unlock()

	return fitness
}

// averageScores averages the terms; any blown-up seed marks the result.
func averageScores(scores []Score) Score {
	var avg Score
	de := make([]float64, 0, len(scores))
	ke := make([]float64, 0, len(scores))
	un := make([]float64, 0, len(scores))
	for _, s := range scores {
		if s.Blowup {
			avg.Blowup = true
		}
		de = append(de, s.DensityError)
		ke = append(ke, s.KineticPer)
		un = append(un, s.Uniformity)
	}
	if len(scores) == 0 {
		return avg
	}
	avg.DensityError = stat.Mean(de, nil)
	avg.KineticPer = stat.Mean(ke, nil)
	avg.Uniformity = stat.Mean(un, nil)
	return avg
}

// runSimulation executes a single headless run on the calling goroutine.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) Score {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	spawner := spawn.FromConfig(cfg.Spawn)
	spawner.Seed = seed

	// Seeds already run in parallel, so each controller stays serial
	ctrl, err := sim.New(cfg, spawner.Spawn(), sim.Options{Dispatcher: systems.Serial{}})
	if err != nil {
		return Score{Blowup: true}
	}
	defer ctrl.Close()

	var windows []telemetry.FrameStats
	rec := sim.AttachTelemetry(ctrl, sim.RecorderOptions{WindowSec: fe.statsWindow})
	rec.OnStats(func(s telemetry.FrameStats) { windows = append(windows, s) })

	dt := ctrl.Timing().FixedDT
	for ctrl.Frame() < fe.maxFrames {
		if err := ctrl.Advance(dt); err != nil {
			return Score{Blowup: true}
		}
		if n := len(windows); n > 0 && blownUp(windows[n-1]) {
			return Score{Blowup: true}
		}
	}

	return scoreWindows(windows, float64(cfg.Fluid.TargetDensity))
}

func blownUp(s telemetry.FrameStats) bool {
	return math.IsNaN(s.KineticEnergy) || math.IsInf(s.KineticEnergy, 0) || s.SpeedMax > blowupSpeed
}

// scoreWindows averages the fitness terms over windows past warm-up.
func scoreWindows(windows []telemetry.FrameStats, target float64) Score {
	if len(windows) <= scoreWarmupWindows {
		return Score{Blowup: true}
	}

	valid := windows[scoreWarmupWindows:]
	de := make([]float64, 0, len(valid))
	ke := make([]float64, 0, len(valid))
	un := make([]float64, 0, len(valid))
	for _, w := range valid {
		if blownUp(w) {
			return Score{Blowup: true}
		}
		de = append(de, w.DensityError)
		if w.Particles > 0 {
			ke = append(ke, w.KineticEnergy/float64(w.Particles))
		}
		if target > 0 {
			un = append(un, w.DensityStd/target)
		}
	}

	s := Score{DensityError: stat.Mean(de, nil)}
	if len(ke) > 0 {
		s.KineticPer = stat.Mean(ke, nil)
	}
	if len(un) > 0 {
		s.Uniformity = stat.Mean(un, nil)
	}
	return s
}

// copyConfig returns a copy of the base config safe to modify per run.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Display.Gradient = append([]string(nil), fe.baseConfig.Display.Gradient...)
	return &cfg
}
