// Package camera provides a 2D camera system for viewport control.
package camera

// Camera maps the fluid's world space (origin at the box centre, y up) onto
// the screen (origin top-left, y down).
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom is screen pixels per world unit
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Region fitted to the viewport at the default zoom
	FitW, FitH float32
	Margin     float32 // Fraction of the viewport left empty around the fitted region

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the origin with the world region
// fitW x fitH filling the viewport.
func New(viewportW, viewportH, fitW, fitH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		FitW:      fitW,
		FitH:      fitH,
		Margin:    0.05,
	}
	c.Reset()
	return c
}

// fitZoom returns the zoom at which the fitted region just fills the viewport.
func (c *Camera) fitZoom() float32 {
	usable := 1 - 2*c.Margin
	zx := c.ViewportW * usable / c.FitW
	zy := c.ViewportH * usable / c.FitH
	return min(zx, zy)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(l float32) float32 {
	return l * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with given radius
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and refits the zoom constraints,
// keeping the zoom relative to the fitted level.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	rel := c.Zoom / c.fitZoom()
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateLimits()
	c.SetZoom(c.fitZoom() * rel)
}

// Pan moves the camera by the given delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X += dx / c.Zoom
	c.Y -= dy / c.Zoom
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centres the camera on the origin at the fitted zoom.
func (c *Camera) Reset() {
	c.X, c.Y = 0, 0
	c.updateLimits()
	c.Zoom = c.fitZoom()
}

func (c *Camera) updateLimits() {
	fit := c.fitZoom()
	c.MinZoom = fit * 0.5
	c.MaxZoom = fit * 8
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
