// Package palette maps scalar values such as particle speed to colours.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrEmptyGradient is returned when a gradient has no stops.
var ErrEmptyGradient = errors.New("gradient needs at least one colour stop")

// ParseHex parses "#rrggbb" or "#rrggbbaa" (leading # optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: want 6 or 8 hex digits", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parsing colour %q: %w", s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Gradient interpolates linearly between evenly spaced colour stops.
type Gradient struct {
	stops []color.RGBA
}

// NewGradient builds a gradient from colour stops, first at t=0, last at t=1.
func NewGradient(stops ...color.RGBA) (*Gradient, error) {
	if len(stops) == 0 {
		return nil, ErrEmptyGradient
	}
	return &Gradient{stops: append([]color.RGBA(nil), stops...)}, nil
}

// ParseGradient builds a gradient from hex strings.
func ParseGradient(hex []string) (*Gradient, error) {
	stops := make([]color.RGBA, 0, len(hex))
	for _, h := range hex {
		c, err := ParseHex(h)
		if err != nil {
			return nil, err
		}
		stops = append(stops, c)
	}
	return NewGradient(stops...)
}

// At returns the colour at t, clamped to [0, 1].
func (g *Gradient) At(t float32) color.RGBA {
	n := len(g.stops)
	if n == 1 || t <= 0 || t != t {
		return g.stops[0]
	}
	if t >= 1 {
		return g.stops[n-1]
	}

	pos := t * float32(n-1)
	i := int(pos)
	frac := pos - float32(i)
	a, b := g.stops[i], g.stops[i+1]
	return color.RGBA{
		R: lerp8(a.R, b.R, frac),
		G: lerp8(a.G, b.G, frac),
		B: lerp8(a.B, b.B, frac),
		A: lerp8(a.A, b.A, frac),
	}
}

func lerp8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t + 0.5)
}

// Bake samples the gradient at resolution evenly spaced points.
func (g *Gradient) Bake(resolution int) Baked {
	resolution = max(resolution, 2)
	samples := make([]color.RGBA, resolution)
	for i := range samples {
		samples[i] = g.At(float32(i) / float32(resolution-1))
	}
	return Baked{samples: samples}
}

// Baked is a gradient lookup table sampled by nearest entry.
type Baked struct {
	samples []color.RGBA
}

// Len returns the number of samples.
func (b Baked) Len() int {
	return len(b.samples)
}

// Sample returns the entry nearest to t, clamped to [0, 1].
func (b Baked) Sample(t float32) color.RGBA {
	n := len(b.samples)
	if t <= 0 || t != t {
		return b.samples[0]
	}
	if t >= 1 {
		return b.samples[n-1]
	}
	return b.samples[int(t*float32(n-1)+0.5)]
}

// Speed maps a speed onto the table, with maxSpeed at the top.
func (b Baked) Speed(speed, maxSpeed float32) color.RGBA {
	if maxSpeed <= 0 {
		return b.samples[len(b.samples)-1]
	}
	return b.Sample(speed / maxSpeed)
}
