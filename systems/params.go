package systems

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is returned by Parameters.Validate.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

// Parameters holds the solver configuration shared by every substep of a frame.
type Parameters struct {
	SmoothingRadius        float32
	TargetDensity          float32
	PressureMultiplier     float32
	NearPressureMultiplier float32
	ViscosityStrength      float32
	Gravity                float32 // applied along y; negative pulls down
	CollisionDamping       float32 // 0 = fully absorbed, 1 = perfectly elastic
	BoundBox               Vec2    // full extents, centered on the origin
}

// KernelScales holds the normalization constants of the smoothing kernels.
// They depend only on the smoothing radius.
type KernelScales struct {
	Poly6               float32
	SpikyPow3           float32
	SpikyPow2           float32
	SpikyPow3Derivative float32
	SpikyPow2Derivative float32
}

// Validate checks the parameter ranges.
func (p Parameters) Validate() error {
	switch {
	case !(p.SmoothingRadius > 0):
		return fmt.Errorf("%w: smoothing radius %v must be positive", ErrInvalidParameters, p.SmoothingRadius)
	case p.CollisionDamping < 0 || p.CollisionDamping > 1:
		return fmt.Errorf("%w: collision damping %v outside [0,1]", ErrInvalidParameters, p.CollisionDamping)
	case !(p.BoundBox.X > 0) || !(p.BoundBox.Y > 0):
		return fmt.Errorf("%w: bound box %v must be positive", ErrInvalidParameters, p.BoundBox)
	}
	return nil
}

// HalfBoundBox returns the half extents of the bound box.
func (p Parameters) HalfBoundBox() Vec2 {
	return p.BoundBox.Scale(0.5)
}

// Scales computes the kernel normalization constants for the smoothing radius.
func (p Parameters) Scales() KernelScales {
	h := float64(p.SmoothingRadius)
	return KernelScales{
		Poly6:               float32(4 / (math.Pi * math.Pow(h, 8))),
		SpikyPow3:           float32(10 / (math.Pi * math.Pow(h, 5))),
		SpikyPow2:           float32(6 / (math.Pi * math.Pow(h, 4))),
		SpikyPow3Derivative: float32(30 / (math.Pow(h, 5) * math.Pi)),
		SpikyPow2Derivative: float32(12 / (math.Pow(h, 4) * math.Pi)),
	}
}

// PressureFromDensity converts a density to pressure. Negative values are kept.
func (p Parameters) PressureFromDensity(rho float32) float32 {
	return (rho - p.TargetDensity) * p.PressureMultiplier
}

// NearPressureFromDensity converts a near density to near pressure.
func (p Parameters) NearPressureFromDensity(near float32) float32 {
	return near * p.NearPressureMultiplier
}
