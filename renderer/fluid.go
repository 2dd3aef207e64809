// Package renderer draws the fluid with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/camera"
	"github.com/pthm-cable/sphfluid/palette"
	"github.com/pthm-cable/sphfluid/systems"
)

// FluidRenderer draws particles as discs coloured by speed.
type FluidRenderer struct {
	colours        palette.Baked
	radius         float32 // world units
	velocityMax    float32
	boundsColour   rl.Color
	minPixelRadius float32
}

// NewFluidRenderer creates a renderer using a baked speed gradient.
func NewFluidRenderer(colours palette.Baked, radius, velocityMax float32) *FluidRenderer {
	return &FluidRenderer{
		colours:        colours,
		radius:         radius,
		velocityMax:    velocityMax,
		boundsColour:   rl.Color{R: 90, G: 100, B: 110, A: 255},
		minPixelRadius: 1,
	}
}

// SetVelocityMax changes the speed mapped to the top of the gradient.
func (r *FluidRenderer) SetVelocityMax(v float32) {
	r.velocityMax = v
}

// Draw renders every visible particle.
func (r *FluidRenderer) Draw(cam *camera.Camera, positions, velocities []systems.Vec2) {
	size := max(cam.WorldLength(r.radius), r.minPixelRadius)

	for i, p := range positions {
		if !cam.IsVisible(p.X, p.Y, r.radius) {
			continue
		}
		sx, sy := cam.WorldToScreen(p.X, p.Y)
		colour := r.colours.Speed(velocities[i].Length(), r.velocityMax)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, colour)
	}
}

// DrawBounds outlines the collision box centred on the origin.
func (r *FluidRenderer) DrawBounds(cam *camera.Camera, box systems.Vec2) {
	x0, y0 := cam.WorldToScreen(-box.X/2, box.Y/2)
	x1, y1 := cam.WorldToScreen(box.X/2, -box.Y/2)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, r.boundsColour)
}
