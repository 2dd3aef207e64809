// Package systems implements the SPH fluid solver: particle buffers, the
// hashed neighbour grid, the parallel sort, and the force and integration
// stages that make up one substep.
package systems

import "fmt"

// Solver runs the per-substep pipeline over a ParticleStore:
//
//	ExternalForces -> SpatialHash -> Sort -> Offsets -> Density -> Pressure -> Viscosity -> Integrate
//
// Each stage is a Dispatch call, so every stage boundary is a barrier and
// reads within a stage observe only values committed by earlier stages.
// A Solver is not safe for concurrent use.
type Solver struct {
	store      *ParticleStore
	grid       *SpatialHashGrid
	params     Parameters
	scales     KernelScales
	dispatcher Dispatcher
	timer      PhaseTimer
}

// NewSolver creates a solver over store. A nil dispatcher runs serially.
func NewSolver(store *ParticleStore, params Parameters, d Dispatcher) (*Solver, error) {
	if store == nil || store.Count() == 0 {
		return nil, ErrNoParticles
	}
	if d == nil {
		d = Serial{}
	}
	s := &Solver{
		store:      store,
		grid:       NewSpatialHashGrid(store.Count(), params.SmoothingRadius),
		dispatcher: d,
	}
	if err := s.SetParameters(params); err != nil {
		return nil, err
	}
	return s, nil
}

// SetParameters uploads a new parameter record and recomputes the kernel
// scaling constants. Call between substeps only.
func (s *Solver) SetParameters(p Parameters) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("setting solver parameters: %w", err)
	}
	s.params = p
	s.scales = p.Scales()
	s.grid.SetRadius(p.SmoothingRadius)
	return nil
}

// SetPhaseTimer attaches a timer notified at each stage boundary. nil disables timing.
func (s *Solver) SetPhaseTimer(t PhaseTimer) {
	s.timer = t
}

// Parameters returns the active parameter record.
func (s *Solver) Parameters() Parameters {
	return s.params
}

// Scales returns the active kernel scaling constants.
func (s *Solver) Scales() KernelScales {
	return s.scales
}

// Store returns the particle store.
func (s *Solver) Store() *ParticleStore {
	return s.store
}

// Grid returns the spatial hash grid.
func (s *Solver) Grid() *SpatialHashGrid {
	return s.grid
}

// Step runs one full substep with time step dt.
func (s *Solver) Step(dt float32) {
	s.ExternalForces(dt)
	s.BuildSpatialHash()
	s.SortSpatialIndex()
	s.ComputeOffsets()
	s.Density()
	s.Pressure(dt)
	s.Viscosity(dt)
	s.Integrate(dt)
}

// ExternalForces applies gravity and writes predicted positions.
func (s *Solver) ExternalForces(dt float32) {
	s.phase(PhaseExternalForces)
	s.dispatcher.Dispatch(s.store.Count(), func(start, end int) {
		s.externalForcesRange(start, end, dt)
	})
}

// BuildSpatialHash writes one spatial entry per particle from predicted positions.
func (s *Solver) BuildSpatialHash() {
	s.phase(PhaseSpatialHash)
	s.grid.Build(s.store.predicted, s.dispatcher)
}

// SortSpatialIndex sorts the spatial entries by cell key.
func (s *Solver) SortSpatialIndex() {
	s.phase(PhaseSort)
	s.grid.Sort(s.dispatcher)
}

// ComputeOffsets rebuilds the key to start-offset table.
func (s *Solver) ComputeOffsets() {
	s.phase(PhaseOffsets)
	s.grid.ComputeOffsets(s.dispatcher)
}

// Density recomputes (rho, rho_near) for every particle.
func (s *Solver) Density() {
	s.phase(PhaseDensity)
	s.dispatcher.Dispatch(s.store.Count(), s.densityRange)
}

// Pressure applies pressure accelerations using this substep's densities.
func (s *Solver) Pressure(dt float32) {
	s.phase(PhasePressure)
	s.dispatcher.Dispatch(s.store.Count(), func(start, end int) {
		s.pressureRange(start, end, dt)
	})
}

// Viscosity smooths velocities among neighbours.
func (s *Solver) Viscosity(dt float32) {
	s.phase(PhaseViscosity)
	n := s.store.Count()
	s.dispatcher.Dispatch(n, s.snapshotVelocitiesRange)
	s.dispatcher.Dispatch(n, func(start, end int) {
		s.viscosityRange(start, end, dt)
	})
}

// Integrate advances positions and applies boundary collisions.
func (s *Solver) Integrate(dt float32) {
	s.phase(PhaseIntegrate)
	s.dispatcher.Dispatch(s.store.Count(), func(start, end int) {
		s.integrateRange(start, end, dt)
	})
}

// Neighbors returns the particles within the smoothing radius of particle i's
// predicted position, as of the last grid rebuild.
func (s *Solver) Neighbors(i int) []Neighbor {
	pred := s.store.predicted
	return s.grid.QueryInto(nil, pred[i], pred)
}

func (s *Solver) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}
