// Package sim drives the fluid solver from a host frame loop: it owns the
// worker pool, applies parameter changes between frames, splits each frame
// into substeps and notifies observers.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/spawn"
	"github.com/pthm-cable/sphfluid/systems"
)

// ErrReentrant is returned when a frame is started while another is running.
var ErrReentrant = errors.New("simulation frame already in progress")

// Timing holds frame scheduling settings.
type Timing struct {
	TimeScale          float32
	FixedTimeStep      bool
	FixedDT            float32
	IterationsPerFrame int
	WarmupFrames       int
	MaxFrameTime       float32 // 0 disables clamping
}

// TimingFromConfig converts the simulation config section.
func TimingFromConfig(c config.SimulationConfig) Timing {
	return Timing{
		TimeScale:          float32(c.TimeScale),
		FixedTimeStep:      c.FixedTimeStep,
		FixedDT:            float32(c.FixedDT),
		IterationsPerFrame: c.IterationsPerFrame,
		WarmupFrames:       c.WarmupFrames,
		MaxFrameTime:       float32(c.MaxFrameTime),
	}
}

// ParametersFromConfig converts the fluid config section.
func ParametersFromConfig(f config.FluidConfig) systems.Parameters {
	return systems.Parameters{
		SmoothingRadius:        float32(f.SmoothingRadius),
		TargetDensity:          float32(f.TargetDensity),
		PressureMultiplier:     float32(f.PressureMultiplier),
		NearPressureMultiplier: float32(f.NearPressureMultiplier),
		ViscosityStrength:      float32(f.ViscosityStrength),
		Gravity:                float32(f.Gravity),
		CollisionDamping:       float32(f.CollisionDamping),
		BoundBox:               systems.Vec2{X: float32(f.BoundBox[0]), Y: float32(f.BoundBox[1])},
	}
}

// Options tune controller construction.
type Options struct {
	Workers   int // Overrides parallel.workers when > 0
	Threshold int // Overrides parallel.threshold when > 0

	// Dispatcher replaces the worker pool when set.
	Dispatcher systems.Dispatcher
}

// FrameTimer receives frame and stage boundaries.
type FrameTimer interface {
	StartTick()
	StartPhase(phase string)
	EndTick()
}

// SubstepEvent is delivered after each substep completes.
type SubstepEvent struct {
	Frame     int
	Substep   int
	DeltaTime float32
}

// FrameEvent is delivered after all substeps of a frame complete.
type FrameEvent struct {
	Frame     int
	Substeps  int
	SimTime   float64
	FrameTime float32
}

// Controller owns a Solver and advances it one frame at a time.
type Controller struct {
	solver *systems.Solver
	pool   *WorkerPool
	timing Timing

	mu      sync.Mutex
	active  systems.Parameters
	pending *systems.Parameters

	running atomic.Bool

	frame          int
	renderedFrames int
	simTime        float64

	substepObservers []func(SubstepEvent)
	frameObservers   []func(FrameEvent)
	timer            FrameTimer
}

// New validates cfg and allocates the solver from spawn data.
func New(cfg *config.Config, data spawn.Data, opts Options) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := systems.NewParticleStore(data.Positions, data.Velocities)
	if err != nil {
		return nil, fmt.Errorf("allocating particles: %w", err)
	}

	c := &Controller{timing: TimingFromConfig(cfg.Simulation)}

	d := opts.Dispatcher
	if d == nil {
		workers := cfg.Parallel.Workers
		if opts.Workers > 0 {
			workers = opts.Workers
		}
		threshold := cfg.Parallel.Threshold
		if opts.Threshold > 0 {
			threshold = opts.Threshold
		}
		c.pool = NewWorkerPool(workers, threshold)
		d = c.pool
	}

	params := ParametersFromConfig(cfg.Fluid)
	c.solver, err = systems.NewSolver(store, params, d)
	if err != nil {
		return nil, err
	}
	c.active = params

	attrs := []any{
		"particles", store.Count(),
		"iterations_per_frame", c.timing.IterationsPerFrame,
		"fixed_time_step", c.timing.FixedTimeStep,
		"smoothing_radius", params.SmoothingRadius,
	}
	if c.pool != nil {
		attrs = append(attrs, "workers", c.pool.Workers())
	}
	slog.Info("simulation initialized", attrs...)

	return c, nil
}

// SetParameters queues a parameter record. It takes effect at the start of
// the next frame; a frame already running keeps its parameters.
func (c *Controller) SetParameters(p systems.Parameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.pending = &p
	c.mu.Unlock()
	return nil
}

// Parameters returns the most recently set record, applied or not.
func (c *Controller) Parameters() systems.Parameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return *c.pending
	}
	return c.active
}

// SetFrameTimer attaches a timer for frames and solver stages.
func (c *Controller) SetFrameTimer(t FrameTimer) {
	c.timer = t
	c.solver.SetPhaseTimer(t)
}

// OnSubstep registers an observer called synchronously after every substep.
func (c *Controller) OnSubstep(fn func(SubstepEvent)) {
	c.substepObservers = append(c.substepObservers, fn)
}

// OnFrame registers an observer called synchronously after every frame.
func (c *Controller) OnFrame(fn func(FrameEvent)) {
	c.frameObservers = append(c.frameObservers, fn)
}

// Advance runs one frame of IterationsPerFrame substeps covering frameTime
// seconds scaled by TimeScale.
func (c *Controller) Advance(frameTime float32) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrReentrant
	}
	defer c.running.Store(false)

	if frameTime < 0 {
		return fmt.Errorf("advancing frame: negative frame time %v", frameTime)
	}

	if err := c.applyPending(); err != nil {
		return err
	}

	iterations := c.timing.IterationsPerFrame
	dt := frameTime / float32(iterations) * c.timing.TimeScale

	if c.timer != nil {
		c.timer.StartTick()
	}

	c.frame++
	for sub := 0; sub < iterations; sub++ {
		c.solver.Step(dt)
		c.simTime += float64(dt)
		for _, fn := range c.substepObservers {
			fn(SubstepEvent{Frame: c.frame, Substep: sub, DeltaTime: dt})
		}
	}

	ev := FrameEvent{Frame: c.frame, Substeps: iterations, SimTime: c.simTime, FrameTime: frameTime}
	for _, fn := range c.frameObservers {
		fn(ev)
	}

	if c.timer != nil {
		c.timer.EndTick()
	}
	return nil
}

// FixedTick advances by the fixed time step. It does nothing in variable mode.
func (c *Controller) FixedTick() (bool, error) {
	if !c.timing.FixedTimeStep {
		return false, nil
	}
	if err := c.Advance(c.timing.FixedDT); err != nil {
		return false, err
	}
	return true, nil
}

// RenderFrame advances by the host's frame delta, clamped to MaxFrameTime.
// It does nothing in fixed mode or during the warm-up frames.
func (c *Controller) RenderFrame(delta float32) (bool, error) {
	if c.timing.FixedTimeStep {
		return false, nil
	}
	c.renderedFrames++
	if c.renderedFrames <= c.timing.WarmupFrames {
		return false, nil
	}
	if c.timing.MaxFrameTime > 0 && delta > c.timing.MaxFrameTime {
		delta = c.timing.MaxFrameTime
	}
	if err := c.Advance(delta); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) applyPending() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	c.pending = nil
	if err := c.solver.SetParameters(p); err != nil {
		return err
	}
	c.active = p
	slog.Debug("parameters applied", "frame", c.frame+1, "smoothing_radius", p.SmoothingRadius,
		"pressure", p.PressureMultiplier, "viscosity", p.ViscosityStrength)
	return nil
}

// Timing returns the scheduling settings.
func (c *Controller) Timing() Timing {
	return c.timing
}

// Frame returns the number of frames advanced.
func (c *Controller) Frame() int {
	return c.frame
}

// SimTime returns the simulated seconds elapsed.
func (c *Controller) SimTime() float64 {
	return c.simTime
}

// ParticleCount returns N.
func (c *Controller) ParticleCount() int {
	return c.solver.Store().Count()
}

// Positions returns the live position buffer. Read only, between frames.
func (c *Controller) Positions() []systems.Vec2 {
	return c.solver.Store().Positions()
}

// Velocities returns the live velocity buffer. Read only, between frames.
func (c *Controller) Velocities() []systems.Vec2 {
	return c.solver.Store().Velocities()
}

// Densities returns the live density buffer. Read only, between frames.
func (c *Controller) Densities() []systems.Density {
	return c.solver.Store().Densities()
}

// Close stops the worker pool.
func (c *Controller) Close() {
	if c.pool != nil {
		c.pool.Stop()
	}
}
