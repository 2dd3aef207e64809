package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/sphfluid/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when loading a snapshot in an unknown format.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot holds the particle state and parameters needed to resume a run.
type Snapshot struct {
	Version int `json:"version"`

	Frame      int     `json:"frame"`
	SimTimeSec float64 `json:"sim_time"`

	Parameters ParameterState  `json:"parameters"`
	Particles  []ParticleState `json:"particles"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ParameterState is the JSON form of systems.Parameters.
type ParameterState struct {
	SmoothingRadius        float32    `json:"smoothing_radius"`
	TargetDensity          float32    `json:"target_density"`
	PressureMultiplier     float32    `json:"pressure_multiplier"`
	NearPressureMultiplier float32    `json:"near_pressure_multiplier"`
	ViscosityStrength      float32    `json:"viscosity_strength"`
	Gravity                float32    `json:"gravity"`
	CollisionDamping       float32    `json:"collision_damping"`
	BoundBox               [2]float32 `json:"bound_box"`
}

// ParticleState holds one particle's position and velocity.
type ParticleState struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	VelX float32 `json:"vel_x"`
	VelY float32 `json:"vel_y"`
}

// NewSnapshot captures the given state. The slices are copied.
func NewSnapshot(frame int, simTime float64, p systems.Parameters, pos, vel []systems.Vec2) *Snapshot {
	particles := make([]ParticleState, len(pos))
	for i := range pos {
		particles[i] = ParticleState{X: pos[i].X, Y: pos[i].Y, VelX: vel[i].X, VelY: vel[i].Y}
	}
	return &Snapshot{
		Version:    SnapshotVersion,
		Frame:      frame,
		SimTimeSec: simTime,
		Parameters: ParameterState{
			SmoothingRadius:        p.SmoothingRadius,
			TargetDensity:          p.TargetDensity,
			PressureMultiplier:     p.PressureMultiplier,
			NearPressureMultiplier: p.NearPressureMultiplier,
			ViscosityStrength:      p.ViscosityStrength,
			Gravity:                p.Gravity,
			CollisionDamping:       p.CollisionDamping,
			BoundBox:               [2]float32{p.BoundBox.X, p.BoundBox.Y},
		},
		Particles: particles,
	}
}

// SolverParameters converts the stored parameters back to a record.
func (s *Snapshot) SolverParameters() systems.Parameters {
	p := s.Parameters
	return systems.Parameters{
		SmoothingRadius:        p.SmoothingRadius,
		TargetDensity:          p.TargetDensity,
		PressureMultiplier:     p.PressureMultiplier,
		NearPressureMultiplier: p.NearPressureMultiplier,
		ViscosityStrength:      p.ViscosityStrength,
		Gravity:                p.Gravity,
		CollisionDamping:       p.CollisionDamping,
		BoundBox:               systems.Vec2{X: p.BoundBox[0], Y: p.BoundBox[1]},
	}
}

// State returns the stored positions and velocities.
func (s *Snapshot) State() (pos, vel []systems.Vec2) {
	pos = make([]systems.Vec2, len(s.Particles))
	vel = make([]systems.Vec2, len(s.Particles))
	for i, p := range s.Particles {
		pos[i] = systems.Vec2{X: p.X, Y: p.Y}
		vel[i] = systems.Vec2{X: p.VelX, Y: p.VelY}
	}
	return pos, vel
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Frame)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Frame, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, snapshot.Version)
	}

	return &snapshot, nil
}
