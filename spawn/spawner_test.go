package spawn

import (
	"testing"

	"github.com/pthm-cable/sphfluid/systems"
)

func testSpawner(n int) Spawner {
	return Spawner{
		Count:           n,
		InitialVelocity: systems.Vec2{X: 0.5, Y: -1},
		Centre:          systems.Vec2{X: 1, Y: 2},
		Size:            systems.Vec2{X: 6, Y: 4},
		Jitter:          0.1,
		Seed:            42,
	}
}

func TestGridDims(t *testing.T) {
	tests := []struct {
		n    int
		size systems.Vec2
	}{
		{1, systems.Vec2{X: 1, Y: 1}},
		{100, systems.Vec2{X: 1, Y: 1}},
		{4000, systems.Vec2{X: 6.42, Y: 4.39}},
		{37, systems.Vec2{X: 10, Y: 1}},
		{37, systems.Vec2{X: 1, Y: 10}},
	}

	for _, tt := range tests {
		cols, rows := GridDims(tt.n, tt.size)
		if cols < 1 || rows < 1 {
			t.Errorf("GridDims(%d, %v) = %d x %d, want positive", tt.n, tt.size, cols, rows)
		}
		if cols*rows < tt.n {
			t.Errorf("GridDims(%d, %v) = %d x %d holds fewer than n", tt.n, tt.size, cols, rows)
		}
		if cols*(rows-1) >= tt.n {
			t.Errorf("GridDims(%d, %v) = %d x %d has an empty row", tt.n, tt.size, cols, rows)
		}
	}

	if cols, rows := GridDims(100, systems.Vec2{X: 1, Y: 1}); cols != 10 || rows != 10 {
		t.Errorf("square of 100 = %d x %d, want 10 x 10", cols, rows)
	}
}

func TestSpawnCountAndVelocity(t *testing.T) {
	for _, n := range []int{1, 7, 250} {
		s := testSpawner(n)
		data := s.Spawn()
		if data.Count() != n || len(data.Velocities) != n {
			t.Fatalf("n=%d: got %d positions, %d velocities", n, data.Count(), len(data.Velocities))
		}
		for i, v := range data.Velocities {
			if v != s.InitialVelocity {
				t.Errorf("n=%d: velocity[%d] = %v, want %v", n, i, v, s.InitialVelocity)
			}
		}
	}
}

func TestSpawnWithinRectangle(t *testing.T) {
	s := testSpawner(500)
	data := s.Spawn()

	reach := s.Jitter / 2
	minX := s.Centre.X - s.Size.X/2 - reach
	maxX := s.Centre.X + s.Size.X/2 + reach
	minY := s.Centre.Y - s.Size.Y/2 - reach
	maxY := s.Centre.Y + s.Size.Y/2 + reach

	for i, p := range data.Positions {
		if p.X < minX || p.X > maxX || p.Y < minY || p.Y > maxY {
			t.Errorf("particle %d at %v outside [%v,%v]x[%v,%v]", i, p, minX, maxX, minY, maxY)
		}
	}
}

func TestSpawnDeterministicForSeed(t *testing.T) {
	a := testSpawner(300).Spawn()
	b := testSpawner(300).Spawn()
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("particle %d differs: %v vs %v", i, a.Positions[i], b.Positions[i])
		}
	}

	other := testSpawner(300)
	other.Seed = 7
	c := other.Spawn()
	same := true
	for i := range a.Positions {
		if a.Positions[i] != c.Positions[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestSpawnWithoutJitterIsRegular(t *testing.T) {
	s := Spawner{Count: 4, Size: systems.Vec2{X: 2, Y: 2}}
	data := s.Spawn()
	want := []systems.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: 1, Y: 1}}
	for i, p := range data.Positions {
		if p != want[i] {
			t.Errorf("particle %d at %v, want %v", i, p, want[i])
		}
	}
}

func TestSpawnSingleParticleAtCentre(t *testing.T) {
	s := Spawner{Count: 1, Centre: systems.Vec2{X: 3, Y: -2}, Size: systems.Vec2{X: 5, Y: 5}}
	data := s.Spawn()
	if data.Positions[0] != s.Centre {
		t.Errorf("lone particle at %v, want centre %v", data.Positions[0], s.Centre)
	}
}

func TestSpawnDrainsInParticleIDOrder(t *testing.T) {
	s := Spawner{Count: 50, Size: systems.Vec2{X: 4, Y: 2}}
	data := s.Spawn()
	cols, rows := GridDims(s.Count, s.Size)

	for i, p := range data.Positions {
		x, y := i%cols, i/cols
		want := systems.Vec2{
			X: (float32(x)/float32(cols-1) - 0.5) * s.Size.X,
			Y: (float32(y)/float32(rows-1) - 0.5) * s.Size.Y,
		}
		if p != want {
			t.Errorf("particle %d at %v, want grid slot (%d, %d) at %v", i, p, x, y, want)
		}
	}
}
