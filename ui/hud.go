package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/systems"
	"github.com/pthm-cable/sphfluid/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Frame     int
	SimTime   float64
	Particles int
	FPS       int32
	Paused    bool
	FixedStep bool
	Bookmark  string // Most recent bookmark, empty if none
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Particles: %d | Frame: %d | Sim time: %.2fs", data.Particles, data.Frame, data.SimTime),
		10, 35, 16, rl.LightGray,
	)

	mode := "variable dt"
	if data.FixedStep {
		mode = "fixed dt"
	}
	rl.DrawText(fmt.Sprintf("FPS: %d | %s", data.FPS, mode), 10, 55, 16, rl.LightGray)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	if data.Bookmark != "" {
		rl.DrawText(data.Bookmark, 10, 95, 14, rl.SkyBlue)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-stage solver timing panel.
type PerfPanel struct {
	renderer *Renderer
	registry *systems.SystemRegistry
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	registry := systems.NewSystemRegistry()
	registry.Register(systems.SystemInfo{ID: telemetry.PhaseTelemetry, Name: "Telemetry", Category: "internal"})
	return &PerfPanel{
		renderer: NewRenderer(),
		registry: registry,
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel with stages in pipeline order.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Solver Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(
		fmt.Sprintf("Frame: %s (%.0f/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow,
	)
	y += 16

	for _, id := range p.registry.IDs() {
		avg := stats.PhaseAvg[id]
		pct := stats.PhasePct[id]

		color := rl.LightGray
		if pct > 30 {
			color = rl.Red
		} else if pct > 15 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-16s %8s %5.1f%%", p.registry.GetName(id), avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
