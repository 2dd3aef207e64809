// Package main provides CMA-ES optimization for fluid solver parameters.
package main

import (
	"github.com/pthm-cable/sphfluid/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Smoothing radius and target density stay fixed: they set the scale the
// other parameters are tuned against.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure", Path: "fluid.pressure_multiplier", Min: 50, Max: 1500, Default: 500},
			{Name: "near_pressure", Path: "fluid.near_pressure_multiplier", Min: 1, Max: 60, Default: 18},
			{Name: "viscosity", Path: "fluid.viscosity_strength", Min: 0, Max: 0.5, Default: 0.06},
			{Name: "collision_damping", Path: "fluid.collision_damping", Min: 0.2, Max: 1.0, Default: 0.95},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Fluid.PressureMultiplier = clamped[0]
	cfg.Fluid.NearPressureMultiplier = clamped[1]
	cfg.Fluid.ViscosityStrength = clamped[2]
	cfg.Fluid.CollisionDamping = clamped[3]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Fluid.PressureMultiplier,
		cfg.Fluid.NearPressureMultiplier,
		cfg.Fluid.ViscosityStrength,
		cfg.Fluid.CollisionDamping,
	}
}
