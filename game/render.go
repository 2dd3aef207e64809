package game

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/ui"
)

var backgroundColour = rl.Color{R: 12, G: 14, B: 18, A: 255}

// Draw renders the fluid and UI.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColour)

	g.fluid.DrawBounds(g.camera, g.ctrl.Parameters().BoundBox)
	g.fluid.Draw(g.camera, g.ctrl.Positions(), g.ctrl.Velocities())

	g.drawUI()

	rl.EndDrawing()
}

func (g *Game) drawUI() {
	var bookmark string
	if bm := g.recorder.LastBookmark(); bm != nil {
		bookmark = fmt.Sprintf("Bookmark @%.1fs: %s", bm.SimTimeSec, bm.Description)
	}

	g.uiHUD.Draw(ui.HUDData{
		Title:     "SPH Fluid",
		Frame:     g.ctrl.Frame(),
		SimTime:   g.ctrl.SimTime(),
		Particles: g.ctrl.ParticleCount(),
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		FixedStep: g.ctrl.Timing().FixedTimeStep,
		Bookmark:  bookmark,
	})

	if g.showPerf {
		g.perfPanel.Draw(g.perf.Stats())
	}

	// Parameter sliders (right side)
	action := g.controls.Draw(g.ctrl.Parameters(), g.paused)
	if action.Changed {
		if err := g.ctrl.SetParameters(action.Params); err != nil {
			slog.Warn("parameter change rejected", "error", err)
		}
	}
	if action.TogglePause {
		g.paused = !g.paused
	}

	y := int32(10)
	if g.controls.IsVisible() {
		y += g.controls.Height() + 10
	}
	x := int32(g.screenWidth) - 300
	if g.showStats {
		g.statsPanel = ui.StatsPanel(g.ctrl.Parameters().TargetDensity, float32(g.cfg.Display.VelocityDisplayMax))
		y = g.uiRenderer.DrawPanelDescriptor(x, y, g.statsPanel, g.recorder.Latest()) + 10
		g.uiRenderer.DrawGradient(x, y, 290, g.colours, "slow", "fast")
	}

	g.uiHUD.DrawControls(int32(g.screenHeight),
		"SPACE: Pause | N: Step | R: Restart | F5: Snapshot | TAB: Parameters | P: Perf | S: Stats | Arrows/RMB: Pan | Wheel: Zoom | HOME: Reset view")

	// Restart last, after everything reading the old controller has drawn
	if action.Restart {
		g.restart()
	}
}
