package space

// Region is a box produced by recursive bisection of a Space.
//
// Region is a value type: copying it snapshots the cursor, so a decomposition
// can queue copies while it keeps refining the original.
type Region struct {
	space    *Space
	lo, hi   [MaxDimensions]uint64
	consumed [MaxDimensions]int
	level    int
	payload  uint64
}

// RootRegion returns the region covering the whole space.
func (s *Space) RootRegion() Region {
	r := Region{space: s}
	for d := 0; d < s.dims; d++ {
		r.hi[d] = s.MaxCoord(d)
	}
	return r
}

// CellRegion returns the single-cell region at the given grid coordinates.
func (s *Space) CellRegion(coords []uint64) Region {
	r := Region{
		space:   s,
		level:   s.totalBits,
		payload: uint64(s.Shuffle(coords, s.totalBits)) &^ lengthMask,
	}
	for d := 0; d < s.dims; d++ {
		r.lo[d] = coords[d]
		r.hi[d] = coords[d]
		r.consumed[d] = s.bits[d]
	}
	return r
}

// Space returns the space the region belongs to.
func (r *Region) Space() *Space { return r.space }

// Level returns the recursion depth, which is also the z-value length.
func (r *Region) Level() int { return r.level }

// Lo returns the lowest grid coordinate of dimension d.
func (r *Region) Lo(d int) uint64 { return r.lo[d] }

// Hi returns the highest grid coordinate of dimension d, inclusive.
func (r *Region) Hi(d int) uint64 { return r.hi[d] }

// Z returns the z-value identifying the region.
func (r *Region) Z() ZValue { return ZValue(r.payload | uint64(r.level)) }

// IsCell reports whether the region is a single grid cell.
func (r *Region) IsCell() bool { return r.level == r.space.totalBits }

// IsRoot reports whether the region is the whole space.
func (r *Region) IsRoot() bool { return r.level == 0 }

// DownLeft narrows the region to the lower half of its next split dimension.
func (r *Region) DownLeft() {
	d := r.split()
	size := uint64(1) << (r.space.bits[d] - r.consumed[d])
	r.hi[d] = r.lo[d] + size - 1
	r.level++
}

// DownRight narrows the region to the upper half of its next split dimension.
func (r *Region) DownRight() {
	d := r.split()
	size := uint64(1) << (r.space.bits[d] - r.consumed[d])
	r.lo[d] += size
	r.payload |= bitAt(r.level)
	r.level++
}

// Up widens the region to its parent.
func (r *Region) Up() {
	if r.level == 0 {
		panic("space: up from root region")
	}
	r.level--
	d := r.space.interleave[r.level]
	r.consumed[d]--
	size := uint64(1) << (r.space.bits[d] - r.consumed[d])
	r.lo[d] &^= size - 1
	r.hi[d] = r.lo[d] + size - 1
	r.payload &^= bitAt(r.level)
}

func (r *Region) split() int {
	if r.level == r.space.totalBits {
		panic("space: split of single-cell region")
	}
	d := r.space.interleave[r.level]
	r.consumed[d]++
	return d
}
