// Package components defines ECS components for the simulation.
package components

// Particle tags a fluid particle with its buffer slot in the solver.
type Particle struct {
	ID uint32
}
