package systems

// Hash multipliers for combining cell coordinates.
const (
	hashK1 uint32 = 15823
	hashK2 uint32 = 9737333
)

// cellOffsets is the 3x3 neighbourhood around a cell.
var cellOffsets = [9][2]int32{
	{-1, 1}, {0, 1}, {1, 1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, -1}, {0, -1}, {1, -1},
}

// SpatialEntry maps one particle to its grid cell.
type SpatialEntry struct {
	Hash  uint32 // full cell hash, used to reject bucket collisions
	Key   uint32 // Hash mod N, the sort key and offset-table index
	Index uint32 // particle id
}

// Neighbor holds a particle found within the smoothing radius,
// with the precomputed offset and distance from the query point.
type Neighbor struct {
	Index  int
	Offset Vec2    // neighbour position minus query position
	Dst    float32 // Euclidean distance
}

// SpatialHashGrid provides neighbour lookup over a uniform grid whose cell
// size equals the smoothing radius. Cells are hashed into N buckets, the
// entries are sorted by bucket, and an offset table points at the first
// entry of each bucket.
type SpatialHashGrid struct {
	radius  float32
	entries []SpatialEntry
	offsets []uint32
	sorter  *BitonicSorter
}

// NewSpatialHashGrid allocates a grid for n particles.
func NewSpatialHashGrid(n int, radius float32) *SpatialHashGrid {
	return &SpatialHashGrid{
		radius:  radius,
		entries: make([]SpatialEntry, n),
		offsets: make([]uint32, n),
		sorter:  NewBitonicSorter(n),
	}
}

// SetRadius changes the cell size. Takes effect at the next Build.
func (g *SpatialHashGrid) SetRadius(radius float32) {
	g.radius = radius
}

// Radius returns the cell size.
func (g *SpatialHashGrid) Radius() float32 {
	return g.radius
}

// Entries returns the spatial index (sorted by Key after Sort).
func (g *SpatialHashGrid) Entries() []SpatialEntry {
	return g.entries
}

// Offsets returns the per-key start offsets. Unused keys hold N.
func (g *SpatialHashGrid) Offsets() []uint32 {
	return g.offsets
}

// CellCoord returns the integer cell containing p.
func CellCoord(p Vec2, radius float32) (int32, int32) {
	return floorToInt(p.X / radius), floorToInt(p.Y / radius)
}

// CellHash combines cell coordinates into a hash. Distinct cells may collide.
func CellHash(cx, cy int32) uint32 {
	a := uint32(cx) * hashK1
	b := uint32(cy) * hashK2
	return a + b
}

// CellKey reduces a hash to a bucket index in [0, N).
func (g *SpatialHashGrid) CellKey(hash uint32) uint32 {
	return hash % uint32(len(g.entries))
}

// Build writes one entry per particle from its predicted position.
func (g *SpatialHashGrid) Build(predicted []Vec2, d Dispatcher) {
	radius := g.radius
	d.Dispatch(len(g.entries), func(start, end int) {
		for i := start; i < end; i++ {
			cx, cy := CellCoord(predicted[i], radius)
			hash := CellHash(cx, cy)
			g.entries[i] = SpatialEntry{Hash: hash, Key: g.CellKey(hash), Index: uint32(i)}
		}
	})
}

// Sort orders the entries by Key. This is a global barrier.
func (g *SpatialHashGrid) Sort(d Dispatcher) {
	g.sorter.Sort(g.entries, d)
}

// ComputeOffsets rebuilds the offset table from the sorted entries.
// Only the first entry of each run writes its key's slot.
func (g *SpatialHashGrid) ComputeOffsets(d Dispatcher) {
	n := len(g.entries)
	unused := uint32(n)

	d.Dispatch(n, func(start, end int) {
		for i := start; i < end; i++ {
			g.offsets[i] = unused
		}
	})

	d.Dispatch(n, func(start, end int) {
		for i := start; i < end; i++ {
			key := g.entries[i].Key
			if i == 0 || g.entries[i-1].Key != key {
				g.offsets[key] = uint32(i)
			}
		}
	})
}

// QueryInto appends every particle within the radius of p to dst and
// returns the updated slice. Reuse dst across calls to avoid allocations.
// positions must be the buffer the grid was built from.
func (g *SpatialHashGrid) QueryInto(dst []Neighbor, p Vec2, positions []Vec2) []Neighbor {
	n := uint32(len(g.entries))
	radiusSq := g.radius * g.radius
	cx, cy := CellCoord(p, g.radius)

	for _, off := range cellOffsets {
		hash := CellHash(cx+off[0], cy+off[1])
		key := g.CellKey(hash)

		for k := g.offsets[key]; k < n; k++ {
			e := g.entries[k]
			if e.Key != key {
				break
			}
			// Same bucket, different cell
			if e.Hash != hash {
				continue
			}

			offset := positions[e.Index].Sub(p)
			dstSq := offset.LengthSq()
			if dstSq > radiusSq {
				continue
			}
			dst = append(dst, Neighbor{Index: int(e.Index), Offset: offset, Dst: sqrtf(dstSq)})
		}
	}

	return dst
}

// Rebuild runs Build, Sort and ComputeOffsets in order.
func (g *SpatialHashGrid) Rebuild(predicted []Vec2, d Dispatcher) {
	g.Build(predicted, d)
	g.Sort(d)
	g.ComputeOffsets(d)
}
