package systems

// SystemInfo describes a solver stage for UI display.
type SystemInfo struct {
	ID          string // Stage identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this stage does
	Category    string // Grouping (e.g., "neighbours", "forces")
}

// SystemRegistry holds metadata about all stages.
// This centralizes stage naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all solver stages in pipeline order.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the solver stages. Update this when adding stages.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: PhaseExternalForces, Name: "External Forces", Description: "Applies gravity and predicts positions", Category: "forces"})

	// Neighbour search
	r.Register(SystemInfo{ID: PhaseSpatialHash, Name: "Spatial Hash", Description: "Hashes predicted positions into cells", Category: "neighbours"})
	r.Register(SystemInfo{ID: PhaseSort, Name: "Sort", Description: "Orders particles by cell key", Category: "neighbours"})
	r.Register(SystemInfo{ID: PhaseOffsets, Name: "Offsets", Description: "Finds each key's first sorted slot", Category: "neighbours"})

	// Forces
	r.Register(SystemInfo{ID: PhaseDensity, Name: "Density", Description: "Sums density and near density", Category: "forces"})
	r.Register(SystemInfo{ID: PhasePressure, Name: "Pressure", Description: "Applies symmetric pressure forces", Category: "forces"})
	r.Register(SystemInfo{ID: PhaseViscosity, Name: "Viscosity", Description: "Smooths velocity toward neighbours", Category: "forces"})

	r.Register(SystemInfo{ID: PhaseIntegrate, Name: "Integrate", Description: "Moves particles and resolves walls", Category: "integration"})
}

// Register adds a stage to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns stage info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a stage ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered stages.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// IDs returns all stage IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
