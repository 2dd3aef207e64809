package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func defaultParams() Parameters {
	return Parameters{
		SmoothingRadius:        0.35,
		TargetDensity:          55,
		PressureMultiplier:     500,
		NearPressureMultiplier: 18,
		ViscosityStrength:      0.06,
		Gravity:                -12,
		CollisionDamping:       0.95,
		BoundBox:               Vec2{17, 9},
	}
}

func newTestSolver(t *testing.T, pos, vel []Vec2, p Parameters, d Dispatcher) *Solver {
	t.Helper()
	store, err := NewParticleStore(pos, vel)
	if err != nil {
		t.Fatalf("NewParticleStore: %v", err)
	}
	s, err := NewSolver(store, p, d)
	if err != nil {
		t.Fatalf("NewSolver: %v", err)
	}
	return s
}

func blockOfParticles(rng *rand.Rand, n int, p Parameters) (pos, vel []Vec2) {
	half := p.HalfBoundBox()
	pos = randomPositions(rng, n, half.X*0.6, half.Y*0.6)
	vel = make([]Vec2, n)
	for i := range vel {
		vel[i] = Vec2{rng.Float32()*2 - 1, rng.Float32()*2 - 1}
	}
	return pos, vel
}

func kineticEnergy(vel []Vec2) float64 {
	var ke float64
	for _, v := range vel {
		ke += 0.5 * float64(v.LengthSq())
	}
	return ke
}

func TestNewParticleStoreErrors(t *testing.T) {
	if _, err := NewParticleStore(nil, nil); !errors.Is(err, ErrNoParticles) {
		t.Errorf("empty store: got %v, want ErrNoParticles", err)
	}
	_, err := NewParticleStore(make([]Vec2, 3), make([]Vec2, 2))
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("mismatch: got %v, want ErrLengthMismatch", err)
	}
}

func TestNewParticleStoreCopiesSpawnData(t *testing.T) {
	pos := []Vec2{{1, 2}, {3, 4}}
	vel := []Vec2{{5, 6}, {7, 8}}
	s, err := NewParticleStore(pos, vel)
	if err != nil {
		t.Fatal(err)
	}
	pos[0] = Vec2{}
	vel[0] = Vec2{}

	if s.Positions()[0] != (Vec2{1, 2}) || s.Velocities()[0] != (Vec2{5, 6}) {
		t.Error("store aliases spawn slices")
	}
	if s.PredictedPositions()[1] != (Vec2{3, 4}) {
		t.Error("predicted positions should start at spawn positions")
	}
	if s.Densities()[1] != (Density{}) {
		t.Error("densities should start at zero")
	}
}

func TestNewSolverRejectsInvalidParameters(t *testing.T) {
	store, _ := NewParticleStore([]Vec2{{0, 0}}, []Vec2{{0, 0}})
	p := defaultParams()
	p.CollisionDamping = 2
	if _, err := NewSolver(store, p, nil); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("got %v, want ErrInvalidParameters", err)
	}
}

func TestSingleParticleHasOnlySelfDensity(t *testing.T) {
	p := defaultParams()
	p.Gravity = 0
	s := newTestSolver(t, []Vec2{{0.2, -0.1}}, []Vec2{{0.5, 0.25}}, p, nil)

	s.ExternalForces(0.01)
	s.BuildSpatialHash()
	s.SortSpatialIndex()
	s.ComputeOffsets()
	s.Density()

	h := p.SmoothingRadius
	sc := p.Scales()
	want := Density{Rho: Poly6Kernel(0, h, sc.Poly6), Near: SpikyPow3Kernel(0, h, sc.SpikyPow3)}
	if got := s.Store().Densities()[0]; got != want {
		t.Errorf("density = %+v, want self contribution %+v", got, want)
	}

	before := s.Store().Velocities()[0]
	s.Pressure(0.01)
	if got := s.Store().Velocities()[0]; got != before {
		t.Errorf("pressure changed a lone particle's velocity: %v -> %v", before, got)
	}
	s.Viscosity(0.01)
	if got := s.Store().Velocities()[0]; got != before {
		t.Errorf("viscosity changed a lone particle's velocity: %v -> %v", before, got)
	}
}

func TestPositionsStayInsideBox(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p := defaultParams()
	pos, vel := blockOfParticles(rng, 400, p)
	for i := range vel {
		vel[i] = vel[i].Scale(40)
	}
	s := newTestSolver(t, pos, vel, p, chunkedDispatcher{chunks: 4})
	half := p.HalfBoundBox()

	for step := 0; step < 60; step++ {
		s.Step(1.0 / 120)
		for i, q := range s.Store().Positions() {
			if math.Abs(float64(q.X)) > float64(half.X) || math.Abs(float64(q.Y)) > float64(half.Y) {
				t.Fatalf("step %d: particle %d at %v outside ±%v", step, i, q, half)
			}
		}
	}
}

func TestStepIsDeterministic(t *testing.T) {
	p := defaultParams()
	pos, vel := blockOfParticles(rand.New(rand.NewSource(9)), 500, p)

	a := newTestSolver(t, pos, vel, p, Serial{})
	b := newTestSolver(t, pos, vel, p, chunkedDispatcher{chunks: 7})

	for step := 0; step < 5; step++ {
		a.Step(1.0 / 120)
		b.Step(1.0 / 120)
	}

	posA, velA, densA := a.Store().Snapshot()
	posB, velB, densB := b.Store().Snapshot()
	for i := range posA {
		if posA[i] != posB[i] || velA[i] != velB[i] || densA[i] != densB[i] {
			t.Fatalf("particle %d differs: %v/%v/%v vs %v/%v/%v",
				i, posA[i], velA[i], densA[i], posB[i], velB[i], densB[i])
		}
	}
}

func TestKineticEnergyNonIncreasingWithoutForces(t *testing.T) {
	p := defaultParams()
	p.Gravity = 0
	p.ViscosityStrength = 0
	p.PressureMultiplier = 0
	p.NearPressureMultiplier = 0
	p.CollisionDamping = 1

	rng := rand.New(rand.NewSource(21))
	pos, vel := blockOfParticles(rng, 300, p)
	for i := range vel {
		vel[i] = vel[i].Scale(20)
	}
	s := newTestSolver(t, pos, vel, p, chunkedDispatcher{chunks: 3})

	prev := kineticEnergy(s.Store().Velocities())
	for step := 0; step < 100; step++ {
		s.Step(1.0 / 60)
		ke := kineticEnergy(s.Store().Velocities())
		if ke > prev*(1+1e-5) {
			t.Fatalf("step %d: kinetic energy rose from %v to %v", step, prev, ke)
		}
		prev = ke
	}
}

func TestUnitSquareUnderGravity(t *testing.T) {
	p := Parameters{
		SmoothingRadius:        2,
		TargetDensity:          0.1,
		PressureMultiplier:     10,
		NearPressureMultiplier: 1,
		ViscosityStrength:      0.5,
		Gravity:                -10,
		CollisionDamping:       0.5,
		BoundBox:               Vec2{10, 10},
	}
	pos := []Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	vel := make([]Vec2, len(pos))
	s := newTestSolver(t, pos, vel, p, nil)
	dt := float32(0.01)

	s.ExternalForces(dt)
	wantVY := float32(0) + p.Gravity*dt
	for i, v := range s.Store().Velocities() {
		if math.Abs(float64(v.Y-wantVY)) > 1e-6 || v.X != 0 {
			t.Errorf("after gravity, particle %d velocity = %v, want (0, %v)", i, v, wantVY)
		}
	}

	s.BuildSpatialHash()
	s.SortSpatialIndex()
	s.ComputeOffsets()
	for i := range pos {
		if got := len(s.Neighbors(i)); got != 4 {
			t.Errorf("particle %d has %d neighbours, want 4", i, got)
		}
	}

	s.Density()
	dens := s.Store().Densities()
	for i := 1; i < len(dens); i++ {
		if math.Abs(float64(dens[i].Rho-dens[0].Rho)) > 1e-5 {
			t.Errorf("densities not symmetric: %v vs %v", dens[i], dens[0])
		}
	}

	s.Pressure(dt)
	s.Viscosity(dt)

	// Interaction forces cancel pairwise, so the mean velocity is gravity only
	var sum Vec2
	for _, v := range s.Store().Velocities() {
		sum = sum.Add(v)
	}
	mean := sum.Scale(1.0 / float32(len(pos)))
	if math.Abs(float64(mean.X)) > 1e-5 || math.Abs(float64(mean.Y-wantVY)) > 1e-5 {
		t.Errorf("mean velocity = %v, want (0, %v)", mean, wantVY)
	}
}

func TestSetParametersUpdatesScalesAndGrid(t *testing.T) {
	p := defaultParams()
	s := newTestSolver(t, []Vec2{{0, 0}}, []Vec2{{0, 0}}, p, nil)

	p.SmoothingRadius = 0.5
	if err := s.SetParameters(p); err != nil {
		t.Fatal(err)
	}
	if s.Grid().Radius() != 0.5 {
		t.Errorf("grid radius = %v, want 0.5", s.Grid().Radius())
	}
	if s.Scales() != p.Scales() {
		t.Error("scales not recomputed")
	}

	bad := p
	bad.SmoothingRadius = 0
	if err := s.SetParameters(bad); err == nil {
		t.Error("expected error for zero radius")
	}
	if s.Parameters() != p {
		t.Error("rejected parameters must not replace the active record")
	}
}

type recordingTimer struct {
	phases []string
}

func (r *recordingTimer) StartPhase(phase string) {
	r.phases = append(r.phases, phase)
}

func TestStepRunsStagesInOrder(t *testing.T) {
	s := newTestSolver(t, []Vec2{{0, 0}, {0.1, 0}}, make([]Vec2, 2), defaultParams(), nil)
	timer := &recordingTimer{}
	s.SetPhaseTimer(timer)
	s.Step(0.01)

	if len(timer.phases) != len(Phases) {
		t.Fatalf("got phases %v, want %v", timer.phases, Phases)
	}
	for i := range Phases {
		if timer.phases[i] != Phases[i] {
			t.Errorf("phase %d = %s, want %s", i, timer.phases[i], Phases[i])
		}
	}
}

func BenchmarkSolverStep(b *testing.B) {
	p := defaultParams()
	pos, vel := blockOfParticles(rand.New(rand.NewSource(1)), 4096, p)
	store, _ := NewParticleStore(pos, vel)
	s, _ := NewSolver(store, p, chunkedDispatcher{chunks: 8})

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		s.Step(1.0 / 120)
	}
}
