// Package spawn lays out the initial particle block.
package spawn

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sphfluid/components"
	"github.com/pthm-cable/sphfluid/config"
	"github.com/pthm-cable/sphfluid/systems"
)

// Data is the spawn output consumed once by the solver.
type Data struct {
	Positions  []systems.Vec2
	Velocities []systems.Vec2
}

// Count returns the number of spawned particles.
func (d Data) Count() int {
	return len(d.Positions)
}

// Spawner places particles on a jittered grid inside a rectangle.
type Spawner struct {
	Count           int
	InitialVelocity systems.Vec2
	Centre          systems.Vec2
	Size            systems.Vec2
	Jitter          float32
	Seed            int64
}

// FromConfig builds a spawner from the spawn section.
func FromConfig(c config.SpawnConfig) Spawner {
	return Spawner{
		Count:           c.Count,
		InitialVelocity: systems.Vec2{X: float32(c.InitialVelocity[0]), Y: float32(c.InitialVelocity[1])},
		Centre:          systems.Vec2{X: float32(c.Centre[0]), Y: float32(c.Centre[1])},
		Size:            systems.Vec2{X: float32(c.Size[0]), Y: float32(c.Size[1])},
		Jitter:          float32(c.Jitter),
		Seed:            c.Seed,
	}
}

// GridDims returns the column and row counts used to lay out n particles in
// a rectangle of the given size. Columns are chosen so the spacing is close
// to equal on both axes.
func GridDims(n int, size systems.Vec2) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	sx, sy := float64(size.X), float64(size.Y)
	if sx <= 0 || sy <= 0 {
		return n, 1
	}
	d := sx - sy
	cols = int(math.Ceil(math.Sqrt(sx/sy*float64(n)+d*d/(4*sy*sy)) - d/(2*sy)))
	cols = max(cols, 1)
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return cols, rows
}

// Spawn creates the particles as ECS entities and drains them into solver
// buffers ordered by particle ID.
//
// The world lives only for this call. It stages the block in the same
// component layout the rest of the codebase spawns with, and each entity
// carries its Particle ID so the drain fills slots in row-major order
// whatever order the query yields them in.
func (s Spawner) Spawn() Data {
	world := ecs.NewWorld()
	mapper := ecs.NewMap3[components.Particle, components.Position, components.Velocity](world)

	rng := rand.New(rand.NewSource(s.Seed))
	cols, rows := GridDims(s.Count, s.Size)
	vel := components.Velocity{X: s.InitialVelocity.X, Y: s.InitialVelocity.Y}

	id := uint32(0)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if int(id) >= s.Count {
				break
			}

			tx, ty := float32(0.5), float32(0.5)
			if cols > 1 {
				tx = float32(x) / float32(cols-1)
			}
			if rows > 1 {
				ty = float32(y) / float32(rows-1)
			}

			angle := rng.Float64() * 2 * math.Pi
			mag := s.Jitter * (rng.Float32() - 0.5)
			pos := components.Position{
				X: (tx-0.5)*s.Size.X + float32(math.Cos(angle))*mag + s.Centre.X,
				Y: (ty-0.5)*s.Size.Y + float32(math.Sin(angle))*mag + s.Centre.Y,
			}
			p := components.Particle{ID: id}
			v := vel
			mapper.NewEntity(&p, &pos, &v)
			id++
		}
	}

	return drain(world, s.Count)
}

// drain copies every spawned entity into the slot named by its particle ID.
func drain(world *ecs.World, n int) Data {
	data := Data{
		Positions:  make([]systems.Vec2, n),
		Velocities: make([]systems.Vec2, n),
	}

	filter := ecs.NewFilter3[components.Particle, components.Position, components.Velocity](world)
	query := filter.Query()
	for query.Next() {
		p, pos, vel := query.Get()
		data.Positions[p.ID] = systems.Vec2{X: pos.X, Y: pos.Y}
		data.Velocities[p.ID] = systems.Vec2{X: vel.X, Y: vel.Y}
	}
	return data
}
