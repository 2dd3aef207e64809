// Kernel preview tool - plots the smoothing kernels and their derivatives
// for an adjustable smoothing radius.
//
// Usage: go run ./cmd/kernelpreview
package main

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sphfluid/systems"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	plotSize     = 560
	panelWidth   = windowWidth - plotSize - 40
	samples      = 200
)

// curve is one plotted kernel.
type curve struct {
	Name    string
	Colour  rl.Color
	Enabled bool
	Eval    func(r, h float32, s systems.KernelScales) float32
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Kernel Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	radius := float32(0.35)
	normalize := true

	curves := []curve{
		{"Poly6 (density)", rl.Blue, true, func(r, h float32, s systems.KernelScales) float32 {
			return systems.Poly6Kernel(r, h, s.Poly6)
		}},
		{"Spiky^3 (near density)", rl.Red, true, func(r, h float32, s systems.KernelScales) float32 {
			return systems.SpikyPow3Kernel(r, h, s.SpikyPow3)
		}},
		{"Spiky^2 (density)", rl.Orange, true, func(r, h float32, s systems.KernelScales) float32 {
			return systems.SpikyPow2Kernel(r, h, s.SpikyPow2)
		}},
		{"dSpiky^3/dr", rl.Maroon, false, func(r, h float32, s systems.KernelScales) float32 {
			return systems.DerivativeSpikyPow3(r, h, s.SpikyPow3Derivative)
		}},
		{"dSpiky^2/dr", rl.Brown, false, func(r, h float32, s systems.KernelScales) float32 {
			return systems.DerivativeSpikyPow2(r, h, s.SpikyPow2Derivative)
		}},
	}

	values := make([][]float32, len(curves))
	for i := range values {
		values[i] = make([]float32, samples)
	}

	for !rl.WindowShouldClose() {
		scales := systems.Parameters{SmoothingRadius: radius}.Scales()

		// Sample every enabled curve, tracking the plot range
		var lo, hi float32
		for i, c := range curves {
			if !c.Enabled {
				continue
			}
			for j := range values[i] {
				r := radius * float32(j) / float32(samples-1)
				v := c.Eval(r, radius, scales)
				if normalize {
					v /= peak(c, radius, scales)
				}
				values[i][j] = v
				lo = min(lo, v)
				hi = max(hi, v)
			}
		}
		if hi == lo {
			hi = lo + 1
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Plot area
		px, py := float32(20), float32(20)
		rl.DrawRectangleLines(int32(px), int32(py), plotSize, plotSize, rl.DarkGray)
		toY := func(v float32) float32 { return py + plotSize - (v-lo)/(hi-lo)*plotSize }
		rl.DrawLineV(rl.Vector2{X: px, Y: toY(0)}, rl.Vector2{X: px + plotSize, Y: toY(0)}, rl.LightGray)

		for i, c := range curves {
			if !c.Enabled {
				continue
			}
			for j := 1; j < samples; j++ {
				x0 := px + plotSize*float32(j-1)/float32(samples-1)
				x1 := px + plotSize*float32(j)/float32(samples-1)
				rl.DrawLineEx(rl.Vector2{X: x0, Y: toY(values[i][j-1])}, rl.Vector2{X: x1, Y: toY(values[i][j])}, 2, c.Colour)
			}
		}

		rl.DrawText("0", int32(px), int32(py+plotSize+6), 14, rl.Gray)
		rl.DrawText(fmt.Sprintf("h = %.3f", radius), int32(px+plotSize-70), int32(py+plotSize+6), 14, rl.Gray)
		rl.DrawText(fmt.Sprintf("range [%.3g, %.3g]", lo, hi), int32(px), int32(py+plotSize+26), 14, rl.DarkGray)

		// Control panel
		panelX := float32(plotSize + 40)
		panelY := float32(20)

		rl.DrawText("Smoothing Kernels", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Smoothing radius", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		radius = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.05", "2.0",
			radius, 0.05, 2.0,
		)
		rl.DrawText(fmt.Sprintf("%.3f", radius), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		panelY += 35

		normalize = gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 18, Height: 18}, "Scale each curve to its peak", normalize)
		panelY += 35

		for i := range curves {
			curves[i].Enabled = gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 18, Height: 18}, curves[i].Name, curves[i].Enabled)
			rl.DrawRectangle(int32(panelX+float32(panelWidth-40)), int32(panelY+4), 20, 10, curves[i].Colour)
			panelY += 26
		}

		// Normalization check: integral of W over the disc
		panelY += 15
		rl.DrawLine(int32(panelX), int32(panelY), int32(panelX)+int32(panelWidth)-20, int32(panelY), rl.LightGray)
		panelY += 15
		rl.DrawText("Integral over disc (should be 1)", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, c := range curves[:3] {
			rl.DrawText(fmt.Sprintf("%-24s %.4f", c.Name, discIntegral(c, radius, scales)), int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
		}

		panelY += 15
		rl.DrawText("Scales", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range []string{
			fmt.Sprintf("poly6:        %.4g", scales.Poly6),
			fmt.Sprintf("spiky_pow3:   %.4g", scales.SpikyPow3),
			fmt.Sprintf("spiky_pow2:   %.4g", scales.SpikyPow2),
			fmt.Sprintf("d_spiky_pow3: %.4g", scales.SpikyPow3Derivative),
			fmt.Sprintf("d_spiky_pow2: %.4g", scales.SpikyPow2Derivative),
		} {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Press C to copy smoothing_radius to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(fmt.Sprintf("fluid:\n  smoothing_radius: %.3f", radius))
		}

		rl.EndDrawing()
	}
}

// peak returns the largest magnitude of c on [0, h], for plotting shapes
// whose absolute values differ by orders of magnitude.
func peak(c curve, h float32, s systems.KernelScales) float32 {
	m := float32(math.Abs(float64(c.Eval(0, h, s))))
	if m == 0 {
		return 1
	}
	return m
}

// discIntegral integrates c over the disc of radius h with the midpoint rule.
func discIntegral(c curve, h float32, s systems.KernelScales) float64 {
	const n = 400
	var sum float64
	dr := float64(h) / n
	for i := 0; i < n; i++ {
		r := (float64(i) + 0.5) * dr
		sum += float64(c.Eval(float32(r), h, s)) * 2 * math.Pi * r * dr
	}
	return sum
}
