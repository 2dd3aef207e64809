package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/systems"
)

// ParameterSlider binds a slider to one tunable solver parameter.
type ParameterSlider struct {
	Label    string
	Min, Max float32
	Format   string
	Field    func(p *systems.Parameters) *float32
}

// ParameterSliders lists the solver parameters exposed in the panel.
var ParameterSliders = []ParameterSlider{
	{"Smoothing radius", 0.05, 1.5, "%.2f", func(p *systems.Parameters) *float32 { return &p.SmoothingRadius }},
	{"Target density", 1, 200, "%.1f", func(p *systems.Parameters) *float32 { return &p.TargetDensity }},
	{"Pressure", 0, 2000, "%.0f", func(p *systems.Parameters) *float32 { return &p.PressureMultiplier }},
	{"Near pressure", 0, 100, "%.1f", func(p *systems.Parameters) *float32 { return &p.NearPressureMultiplier }},
	{"Viscosity", 0, 1, "%.3f", func(p *systems.Parameters) *float32 { return &p.ViscosityStrength }},
	{"Gravity", -30, 30, "%.1f", func(p *systems.Parameters) *float32 { return &p.Gravity }},
	{"Collision damping", 0, 1, "%.2f", func(p *systems.Parameters) *float32 { return &p.CollisionDamping }},
}

// PanelAction reports what the user did in the controls panel this frame.
type PanelAction struct {
	Params      systems.Parameters
	Changed     bool
	TogglePause bool
	Restart     bool
}

// ControlsPanel renders the right-side parameter sliders.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	defaults systems.Parameters
}

// NewControlsPanel creates a new controls panel. Reset restores defaults.
func NewControlsPanel(x, y, width int32, defaults systems.Parameters) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		defaults: defaults,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Height returns the panel height in pixels.
func (c *ControlsPanel) Height() int32 {
	p := c.renderer.Theme.Padding
	return p*2 + 24 + int32(len(ParameterSliders))*38 + 32
}

// Draw renders the sliders for params and returns the resulting action.
func (c *ControlsPanel) Draw(params systems.Parameters, paused bool) PanelAction {
	action := PanelAction{Params: params}
	if !c.visible {
		return action
	}

	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.Height())

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	sliderW := float32(c.width - padding*2 - 70)

	rl.DrawText("Fluid Parameters", int32(x), int32(y), 16, rl.White)
	y += 24

	for _, s := range ParameterSliders {
		field := s.Field(&action.Params)
		rl.DrawText(s.Label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 14

		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16},
			"", "",
			*field, s.Min, s.Max,
		)
		rl.DrawText(fmt.Sprintf(s.Format, *field), int32(x+sliderW+8), int32(y+2), r.Theme.FontSize, r.Theme.ValueColor)
		if v != *field {
			*field = v
			action.Changed = true
		}
		y += 24
	}

	y += 4
	btnW := (float32(c.width-padding*2) - 8) / 3
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: btnW, Height: 22}, "Reset") {
		action.Params = c.defaults
		action.Changed = true
	}
	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x + btnW + 4, Y: y, Width: btnW, Height: 22}, pauseLabel) {
		action.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + 2*(btnW+4), Y: y, Width: btnW, Height: 22}, "Restart") {
		action.Restart = true
	}

	return action
}

// Contains reports whether a screen point lies over the visible panel.
func (c *ControlsPanel) Contains(px, py float32) bool {
	if !c.visible {
		return false
	}
	return px >= float32(c.x) && px <= float32(c.x+c.width) &&
		py >= float32(c.y) && py <= float32(c.y+c.Height())
}
