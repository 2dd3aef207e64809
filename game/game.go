// Package game wires the fluid controller to the raylib window: input,
// camera, drawing and the telemetry that runs alongside.
package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/camera"
	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/palette"
	"github.com/pthm-cable/sphfluid/renderer"
	"github.com/pthm-cable/sphfluid/sim"
	"github.com/pthm-cable/sphfluid/spawn"
	"github.com/pthm-cable/sphfluid/systems"
	"github.com/pthm-cable/sphfluid/telemetry"
	"github.com/pthm-cable/sphfluid/ui"
)

// Options configures a game instance.
type Options struct {
	Seed           int64   // Overrides spawn.seed when non-zero
	Workers        int     // Overrides parallel.workers when > 0
	LogStats       bool    // Log stats rows via slog
	StatsWindowSec float64 // Stats window in simulated seconds
	OutputDir      string  // Directory for CSV logs (empty = disabled)
	SnapshotDir    string  // Directory for snapshots (empty = disabled)
	LoadSnapshot   string  // Start from this snapshot instead of spawning
	Headless       bool    // Skip all raylib setup
}

// Game holds the complete application state.
type Game struct {
	cfg  *config.Config
	opts Options

	ctrl          *sim.Controller
	recorder      *sim.Recorder
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	snapshot      *telemetry.Snapshot
	initialParams systems.Parameters

	// Rendering (nil in headless mode)
	camera     *camera.Camera
	fluid      *renderer.FluidRenderer
	colours    palette.Baked
	uiRenderer *ui.Renderer
	uiHUD      *ui.HUD
	perfPanel  *ui.PerfPanel
	controls   *ui.ControlsPanel
	statsPanel ui.PanelDescriptor

	// State
	paused       bool
	showPerf     bool
	showStats    bool
	screenWidth  float32
	screenHeight float32
}

// NewGameWithOptions builds the controller and, unless headless, the
// renderers. The raylib window must already be open in graphical mode.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := config.Cfg()
	if opts.StatsWindowSec <= 0 {
		opts.StatsWindowSec = cfg.Telemetry.StatsWindow
	}

	g := &Game{
		cfg:           cfg,
		opts:          opts,
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		initialParams: sim.ParametersFromConfig(cfg.Fluid),
		showStats:     cfg.Display.ShowPanel,
		screenWidth:   cfg.Derived.ScreenW32,
		screenHeight:  cfg.Derived.ScreenH32,
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	g.output = output
	if err := g.output.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	if opts.LoadSnapshot != "" {
		snap, err := telemetry.LoadSnapshot(opts.LoadSnapshot)
		if err != nil {
			g.output.Close()
			return nil, err
		}
		g.snapshot = snap
		g.initialParams = snap.SolverParameters()
		slog.Info("loaded snapshot", "path", opts.LoadSnapshot, "frame", snap.Frame, "particles", len(snap.Particles))
	}

	if err := g.startController(g.initialParams); err != nil {
		g.output.Close()
		return nil, err
	}

	if !opts.Headless {
		if err := g.initRendering(); err != nil {
			g.Unload()
			return nil, err
		}
	}
	return g, nil
}

// initialState returns the loaded snapshot's particles, or a fresh block.
func (g *Game) initialState() spawn.Data {
	if g.snapshot != nil {
		pos, vel := g.snapshot.State()
		return spawn.Data{Positions: pos, Velocities: vel}
	}
	spawner := spawn.FromConfig(g.cfg.Spawn)
	if g.opts.Seed != 0 {
		spawner.Seed = g.opts.Seed
	}
	return spawner.Spawn()
}

// startController builds a controller over the initial state and runs it with params.
func (g *Game) startController(params systems.Parameters) error {
	ctrl, err := sim.New(g.cfg, g.initialState(), sim.Options{Workers: g.opts.Workers})
	if err != nil {
		return fmt.Errorf("creating simulation: %w", err)
	}
	if params != ctrl.Parameters() {
		if err := ctrl.SetParameters(params); err != nil {
			ctrl.Close()
			return err
		}
	}

	g.ctrl = ctrl
	g.recorder = sim.AttachTelemetry(ctrl, sim.RecorderOptions{
		WindowSec:   g.opts.StatsWindowSec,
		Perf:        g.perf,
		Output:      g.output,
		LogStats:    g.opts.LogStats,
		SnapshotDir: g.opts.SnapshotDir,
	})
	return nil
}

func (g *Game) initRendering() error {
	grad, err := palette.ParseGradient(g.cfg.Display.Gradient)
	if err != nil {
		return fmt.Errorf("display gradient: %w", err)
	}
	g.colours = grad.Bake(g.cfg.Display.GradientResolution)

	box := g.ctrl.Parameters().BoundBox
	g.camera = camera.New(g.screenWidth, g.screenHeight, box.X, box.Y)
	g.fluid = renderer.NewFluidRenderer(g.colours, float32(g.cfg.Display.ParticleScale), float32(g.cfg.Display.VelocityDisplayMax))

	g.uiRenderer = ui.NewRenderer()
	g.uiHUD = ui.NewHUD()
	g.perfPanel = ui.NewPerfPanel(10, 120)
	g.controls = ui.NewControlsPanel(int32(g.screenWidth)-300, 10, 290, g.initialParams)
	g.controls.SetVisible(g.cfg.Display.ShowPanel)
	g.statsPanel = ui.StatsPanel(g.initialParams.TargetDensity, float32(g.cfg.Display.VelocityDisplayMax))
	return nil
}

// Update runs one rendered frame in graphical mode.
func (g *Game) Update() {
	g.handleInput()
	g.perf.RecordFrame()

	if g.paused {
		return
	}

	var err error
	if g.ctrl.Timing().FixedTimeStep {
		_, err = g.ctrl.FixedTick()
	} else {
		_, err = g.ctrl.RenderFrame(rl.GetFrameTime())
	}
	if err != nil {
		slog.Error("simulation frame failed", "error", err)
	}
}

// UpdateHeadless advances one frame without graphics. Variable-step mode
// uses the fixed frame time as the synthetic frame duration.
func (g *Game) UpdateHeadless() error {
	if g.ctrl.Timing().FixedTimeStep {
		_, err := g.ctrl.FixedTick()
		return err
	}
	return g.ctrl.Advance(g.ctrl.Timing().FixedDT)
}

// stepOnce advances exactly one frame while paused.
func (g *Game) stepOnce() {
	if err := g.ctrl.Advance(g.ctrl.Timing().FixedDT); err != nil {
		slog.Error("single step failed", "error", err)
	}
}

// saveSnapshot writes the current state to the snapshot directory.
func (g *Game) saveSnapshot() {
	dir := g.opts.SnapshotDir
	if dir == "" {
		dir = "snapshots"
	}
	path, err := telemetry.SaveSnapshot(g.ctrl.Snapshot(), dir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path)
}

// restart returns to the initial state, keeping the current parameters.
// The running controller is kept if the new one cannot be built.
func (g *Game) restart() {
	old := g.ctrl
	if err := g.startController(old.Parameters()); err != nil {
		slog.Error("restart failed", "error", err)
		return
	}
	old.Close()
	slog.Info("simulation restarted", "particles", g.ctrl.ParticleCount())
}

// Frame returns the number of simulated frames.
func (g *Game) Frame() int {
	return g.ctrl.Frame()
}

// Stats returns the most recent stats row.
func (g *Game) Stats() telemetry.FrameStats {
	return g.recorder.Latest()
}

// Unload releases the worker pool and closes output files.
func (g *Game) Unload() {
	if g.ctrl != nil {
		g.ctrl.Close()
	}
	if err := g.output.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
