// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Fluid      FluidConfig      `yaml:"fluid"`
	Spawn      SpawnConfig      `yaml:"spawn"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Display    DisplayConfig    `yaml:"display"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds frame scheduling settings.
type SimulationConfig struct {
	TimeScale          float64 `yaml:"time_scale"`
	FixedTimeStep      bool    `yaml:"fixed_time_step"`       // Advance from FixedTick instead of RenderFrame
	FixedDT            float64 `yaml:"fixed_dt"`              // Frame time used in fixed mode
	IterationsPerFrame int     `yaml:"iterations_per_frame"`  // Substeps per frame
	WarmupFrames       int     `yaml:"warmup_frames"`         // Rendered frames skipped before variable-step advancing
	MaxFrameTime       float64 `yaml:"max_frame_time"`        // Clamp for variable frame time (0 = no clamp)
}

// FluidConfig holds the SPH parameter record.
type FluidConfig struct {
	SmoothingRadius        float64    `yaml:"smoothing_radius"`
	TargetDensity          float64    `yaml:"target_density"`
	PressureMultiplier     float64    `yaml:"pressure_multiplier"`
	NearPressureMultiplier float64    `yaml:"near_pressure_multiplier"`
	ViscosityStrength      float64    `yaml:"viscosity_strength"`
	Gravity                float64    `yaml:"gravity"`           // Vertical acceleration; negative pulls down
	CollisionDamping       float64    `yaml:"collision_damping"` // Fraction of speed kept on wall bounce
	BoundBox               [2]float64 `yaml:"bound_box,flow"`    // Full width and height, centered on origin
}

// SpawnConfig holds initial particle layout.
type SpawnConfig struct {
	Count           int        `yaml:"count"`
	InitialVelocity [2]float64 `yaml:"initial_velocity,flow"`
	Centre          [2]float64 `yaml:"centre,flow"`
	Size            [2]float64 `yaml:"size,flow"`
	Jitter          float64    `yaml:"jitter"`
	Seed            int64      `yaml:"seed"`
}

// ParallelConfig holds worker pool settings.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Below this item count, dispatch runs inline
}

// DisplayConfig holds rendering parameters.
type DisplayConfig struct {
	ParticleScale      float64  `yaml:"particle_scale"`       // Radius in world units
	VelocityDisplayMax float64  `yaml:"velocity_display_max"` // Speed mapped to the top of the gradient
	Gradient           []string `yaml:"gradient"`             // Hex colour stops, slow to fast
	GradientResolution int      `yaml:"gradient_resolution"`
	ShowPanel          bool     `yaml:"show_panel"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of simulated time between stats rows
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Frames averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32       float32 // Simulation.FixedDT as float32
	ScreenW32  float32 // Screen.Width as float32
	ScreenH32  float32 // Screen.Height as float32
	HalfBoxX32 float32 // Half of Fluid.BoundBox[0]
	HalfBoxY32 float32 // Half of Fluid.BoundBox[1]
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate checks settings the solver and scheduler cannot run with.
func (c *Config) Validate() error {
	f := c.Fluid
	switch {
	case f.SmoothingRadius <= 0:
		return fmt.Errorf("%w: fluid.smoothing_radius must be > 0, got %v", ErrInvalidConfig, f.SmoothingRadius)
	case f.CollisionDamping < 0 || f.CollisionDamping > 1:
		return fmt.Errorf("%w: fluid.collision_damping must be in [0, 1], got %v", ErrInvalidConfig, f.CollisionDamping)
	case f.BoundBox[0] <= 0 || f.BoundBox[1] <= 0:
		return fmt.Errorf("%w: fluid.bound_box must be positive, got %v", ErrInvalidConfig, f.BoundBox)
	case c.Simulation.IterationsPerFrame < 1:
		return fmt.Errorf("%w: simulation.iterations_per_frame must be >= 1, got %d", ErrInvalidConfig, c.Simulation.IterationsPerFrame)
	case c.Simulation.TimeScale < 0:
		return fmt.Errorf("%w: simulation.time_scale must be >= 0, got %v", ErrInvalidConfig, c.Simulation.TimeScale)
	case c.Simulation.FixedDT <= 0:
		return fmt.Errorf("%w: simulation.fixed_dt must be > 0, got %v", ErrInvalidConfig, c.Simulation.FixedDT)
	case c.Simulation.WarmupFrames < 0:
		return fmt.Errorf("%w: simulation.warmup_frames must be >= 0, got %d", ErrInvalidConfig, c.Simulation.WarmupFrames)
	case c.Spawn.Count < 1:
		return fmt.Errorf("%w: spawn.count must be >= 1, got %d", ErrInvalidConfig, c.Spawn.Count)
	case c.Parallel.Workers < 0:
		return fmt.Errorf("%w: parallel.workers must be >= 0, got %d", ErrInvalidConfig, c.Parallel.Workers)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Simulation.FixedDT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.HalfBoxX32 = float32(c.Fluid.BoundBox[0] / 2)
	c.Derived.HalfBoxY32 = float32(c.Fluid.BoundBox[1] / 2)

	if c.Display.GradientResolution <= 0 {
		c.Display.GradientResolution = 64
	}
	if c.Telemetry.PerfCollectorWindow <= 0 {
		c.Telemetry.PerfCollectorWindow = 120
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
