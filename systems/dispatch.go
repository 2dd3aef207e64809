package systems

// Dispatcher runs a data-parallel pass over the index range [0, n).
// fn receives disjoint [start, end) chunks; Dispatch returns only after
// every chunk has completed, so each call is a barrier.
type Dispatcher interface {
	Dispatch(n int, fn func(start, end int))
}

// Serial is a Dispatcher that runs the whole range on the calling goroutine.
type Serial struct{}

// Dispatch runs fn over [0, n) in one chunk.
func (Serial) Dispatch(n int, fn func(start, end int)) {
	if n > 0 {
		fn(0, n)
	}
}

// PhaseTimer receives stage boundaries for performance accounting.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Stage names, in pipeline order.
const (
	PhaseExternalForces = "external_forces"
	PhaseSpatialHash    = "spatial_hash"
	PhaseSort           = "sort"
	PhaseOffsets        = "offsets"
	PhaseDensity        = "density"
	PhasePressure       = "pressure"
	PhaseViscosity      = "viscosity"
	PhaseIntegrate      = "integrate"
)

// Phases lists the stage names in pipeline order.
var Phases = []string{
	PhaseExternalForces, PhaseSpatialHash, PhaseSort, PhaseOffsets,
	PhaseDensity, PhasePressure, PhaseViscosity, PhaseIntegrate,
}
