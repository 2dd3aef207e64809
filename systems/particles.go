package systems

import (
	"errors"
	"fmt"
)

var (
	// ErrNoParticles is returned when a store is requested with zero particles.
	ErrNoParticles = errors.New("particle count must be positive")
	// ErrLengthMismatch is returned when spawn buffers disagree in length.
	ErrLengthMismatch = errors.New("position and velocity buffers differ in length")
)

// Density holds the density pair of a particle.
type Density struct {
	Rho  float32 // standard density
	Near float32 // near density
}

// ParticleStore owns the per-particle buffers as parallel arrays.
// Every slice has exactly Count() elements for the lifetime of the store.
type ParticleStore struct {
	positions  []Vec2
	predicted  []Vec2
	velocities []Vec2
	densities  []Density

	// velocitySnapshot holds the committed velocities at the start of
	// the viscosity stage so neighbours read a consistent snapshot.
	velocitySnapshot []Vec2
}

// NewParticleStore seeds a store from spawn data. Both slices are copied.
// Predicted positions start equal to positions; densities start at zero.
func NewParticleStore(positions, velocities []Vec2) (*ParticleStore, error) {
	if len(positions) == 0 {
		return nil, ErrNoParticles
	}
	if len(positions) != len(velocities) {
		return nil, fmt.Errorf("%w: %d positions, %d velocities", ErrLengthMismatch, len(positions), len(velocities))
	}

	n := len(positions)
	s := &ParticleStore{
		positions:        make([]Vec2, n),
		predicted:        make([]Vec2, n),
		velocities:       make([]Vec2, n),
		densities:        make([]Density, n),
		velocitySnapshot: make([]Vec2, n),
	}
	copy(s.positions, positions)
	copy(s.predicted, positions)
	copy(s.velocities, velocities)
	return s, nil
}

// Count returns the fixed particle count.
func (s *ParticleStore) Count() int {
	return len(s.positions)
}

// Positions returns the position buffer by reference. Callers must not write it.
func (s *ParticleStore) Positions() []Vec2 {
	return s.positions
}

// PredictedPositions returns the predicted position buffer by reference.
func (s *ParticleStore) PredictedPositions() []Vec2 {
	return s.predicted
}

// Velocities returns the velocity buffer by reference. Callers must not write it.
func (s *ParticleStore) Velocities() []Vec2 {
	return s.velocities
}

// Densities returns the density buffer by reference. Callers must not write it.
func (s *ParticleStore) Densities() []Density {
	return s.densities
}

// Snapshot copies the store buffers, for comparisons between runs.
func (s *ParticleStore) Snapshot() (positions, velocities []Vec2, densities []Density) {
	positions = append([]Vec2(nil), s.positions...)
	velocities = append([]Vec2(nil), s.velocities...)
	densities = append([]Density(nil), s.densities...)
	return positions, velocities, densities
}
