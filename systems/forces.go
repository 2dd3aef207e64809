package systems

// densityEpsilon guards divisions by density. Neighbours at or below it
// contribute nothing to the pressure force.
const densityEpsilon = 1e-6

// neighborScratchSize is the initial capacity of per-chunk neighbour buffers.
const neighborScratchSize = 64

// externalForcesRange applies gravity and predicts the next position.
func (s *Solver) externalForcesRange(start, end int, dt float32) {
	pos := s.store.positions
	vel := s.store.velocities
	pred := s.store.predicted
	gravity := Vec2{0, s.params.Gravity}

	for i := start; i < end; i++ {
		vel[i] = vel[i].Add(gravity.Scale(dt))
		pred[i] = pos[i].Add(vel[i].Scale(dt))
	}
}

// densityRange sums kernel contributions from every neighbour, self included.
func (s *Solver) densityRange(start, end int) {
	pred := s.store.predicted
	dens := s.store.densities
	h := s.params.SmoothingRadius
	poly6 := s.scales.Poly6
	spiky3 := s.scales.SpikyPow3

	neighbors := make([]Neighbor, 0, neighborScratchSize)
	for i := start; i < end; i++ {
		neighbors = s.grid.QueryInto(neighbors[:0], pred[i], pred)

		var rho, near float32
		for _, nb := range neighbors {
			rho += Poly6Kernel(nb.Dst, h, poly6)
			near += SpikyPow3Kernel(nb.Dst, h, spiky3)
		}
		dens[i] = Density{Rho: rho, Near: near}
	}
}

// pressureRange accumulates the symmetric pressure force from neighbours
// and applies the resulting acceleration to the particle's velocity.
func (s *Solver) pressureRange(start, end int, dt float32) {
	pred := s.store.predicted
	dens := s.store.densities
	vel := s.store.velocities
	p := s.params
	h := p.SmoothingRadius
	d2 := s.scales.SpikyPow2Derivative
	d3 := s.scales.SpikyPow3Derivative

	neighbors := make([]Neighbor, 0, neighborScratchSize)
	for i := start; i < end; i++ {
		own := dens[i]
		if own.Rho <= densityEpsilon {
			continue
		}
		pressure := p.PressureFromDensity(own.Rho)
		nearPressure := p.NearPressureFromDensity(own.Near)

		neighbors = s.grid.QueryInto(neighbors[:0], pred[i], pred)

		var force Vec2
		for _, nb := range neighbors {
			if nb.Index == i {
				continue
			}

			// Coincident particles get pushed apart along +y
			dir := Vec2{0, 1}
			if nb.Dst > 0 {
				dir = nb.Offset.Scale(1 / nb.Dst)
			}

			other := dens[nb.Index]
			if other.Rho > densityEpsilon {
				shared := (pressure + p.PressureFromDensity(other.Rho)) * 0.5
				force = force.Add(dir.Scale(DerivativeSpikyPow2(nb.Dst, h, d2) * shared / other.Rho))
			}
			if other.Near > densityEpsilon {
				sharedNear := (nearPressure + p.NearPressureFromDensity(other.Near)) * 0.5
				force = force.Add(dir.Scale(DerivativeSpikyPow3(nb.Dst, h, d3) * sharedNear / other.Near))
			}
		}

		accel := force.Scale(1 / own.Rho)
		vel[i] = vel[i].Add(accel.Scale(dt))
	}
}

// snapshotVelocitiesRange copies committed velocities for the viscosity pass.
func (s *Solver) snapshotVelocitiesRange(start, end int) {
	copy(s.store.velocitySnapshot[start:end], s.store.velocities[start:end])
}

// viscosityRange pulls each velocity toward its neighbours' velocities.
// Neighbour velocities are read from the snapshot, never the live buffer.
func (s *Solver) viscosityRange(start, end int, dt float32) {
	pred := s.store.predicted
	snap := s.store.velocitySnapshot
	vel := s.store.velocities
	h := s.params.SmoothingRadius
	poly6 := s.scales.Poly6
	strength := s.params.ViscosityStrength

	neighbors := make([]Neighbor, 0, neighborScratchSize)
	for i := start; i < end; i++ {
		neighbors = s.grid.QueryInto(neighbors[:0], pred[i], pred)

		vi := snap[i]
		var force Vec2
		for _, nb := range neighbors {
			if nb.Index == i {
				continue
			}
			force = force.Add(snap[nb.Index].Sub(vi).Scale(Poly6Kernel(nb.Dst, h, poly6)))
		}
		vel[i] = vel[i].Add(force.Scale(strength * dt))
	}
}
