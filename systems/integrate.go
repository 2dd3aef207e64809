package systems

// integrateRange advances positions and resolves box collisions.
func (s *Solver) integrateRange(start, end int, dt float32) {
	pos := s.store.positions
	vel := s.store.velocities
	half := s.params.HalfBoundBox()
	damping := s.params.CollisionDamping

	for i := start; i < end; i++ {
		v := vel[i]
		p := pos[i].Add(v.Scale(dt))

		p.X, v.X = collideAxis(p.X, v.X, half.X, damping)
		p.Y, v.Y = collideAxis(p.Y, v.Y, half.Y, damping)

		pos[i] = p
		vel[i] = v
	}
}

// collideAxis clamps a coordinate to [-half, half], reflecting and damping
// the velocity component when it was outside.
func collideAxis(p, v, half, damping float32) (float32, float32) {
	if p > half {
		return half, -v * damping
	}
	if p < -half {
		return -half, -v * damping
	}
	return p, v
}
