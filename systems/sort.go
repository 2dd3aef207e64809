package systems

import "math"

// sentinelKey pads the sort buffer; it orders after every real key.
const sentinelKey = math.MaxUint32

// BitonicSorter sorts spatial entries by Key with a bitonic network.
// The network runs over a buffer padded to the next power of two, and each
// (k, j) stage is a single parallel dispatch over disjoint compare pairs.
// Order among equal keys is unspecified.
type BitonicSorter struct {
	buf []SpatialEntry
}

// NewBitonicSorter allocates a sorter for n entries.
func NewBitonicSorter(n int) *BitonicSorter {
	return &BitonicSorter{buf: make([]SpatialEntry, nextPow2(n))}
}

// Sort reorders entries ascending by Key. len(entries) must not exceed the
// size the sorter was created with.
func (s *BitonicSorter) Sort(entries []SpatialEntry, d Dispatcher) {
	n := len(entries)
	size := len(s.buf)
	buf := s.buf

	d.Dispatch(size, func(start, end int) {
		for i := start; i < end; i++ {
			if i < n {
				buf[i] = entries[i]
			} else {
				buf[i] = SpatialEntry{Hash: sentinelKey, Key: sentinelKey, Index: sentinelKey}
			}
		}
	})

	for k := 2; k <= size; k <<= 1 {
		for j := k >> 1; j > 0; j >>= 1 {
			d.Dispatch(size, func(start, end int) {
				compareAndSwapRange(buf, start, end, j, k)
			})
		}
	}

	d.Dispatch(n, func(start, end int) {
		copy(entries[start:end], buf[start:end])
	})
}

// compareAndSwapRange runs one bitonic stage for indices [start, end).
// Only the lower index of each pair writes, so chunks never overlap.
func compareAndSwapRange(buf []SpatialEntry, start, end, j, k int) {
	for i := start; i < end; i++ {
		l := i ^ j
		if l <= i {
			continue
		}
		a, b := buf[i], buf[l]
		ascending := i&k == 0
		if (ascending && a.Key > b.Key) || (!ascending && a.Key < b.Key) {
			buf[i], buf[l] = b, a
		}
	}
}
