package space

import (
	"math"
	"slices"
)

// Options configures a Space.
type Options struct {
	// Interleave lists, for each z-value bit position from the most
	// significant, the dimension that contributes its next bit. If nil, the
	// default round-robin interleave is used.
	Interleave []int

	// Lo and Hi bound the application coordinate space per dimension. If both
	// are nil, application coordinates equal grid coordinates.
	Lo []float64
	Hi []float64
}

// DefaultOptions uses the round-robin interleave and no application space.
var DefaultOptions = Options{}

// Space is a D-dimensional integer grid with a bit-interleaving order.
//
// A Space is immutable after construction and safe for concurrent use.
type Space struct {
	dims       int
	bits       [MaxDimensions]int
	totalBits  int
	interleave []int

	// shuffle[d][b][v] is the payload contribution of byte b (0 = least
	// significant) of dimension d's coordinate when that byte has value v.
	shuffle [][8][256]uint64

	lo    [MaxDimensions]float64
	hi    [MaxDimensions]float64
	cells [MaxDimensions]float64
}

// New creates a Space with the given per-dimension bit widths.
func New(bits []int, optFns ...func(o *Options)) (*Space, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	dims := len(bits)
	if dims < 1 || dims > MaxDimensions {
		return nil, configErrorf("dimensions must be in [1, %d], got %d", MaxDimensions, dims)
	}

	s := &Space{dims: dims}
	for d, b := range bits {
		if b < 1 {
			return nil, configErrorf("dimension %d has %d bits", d, b)
		}
		s.bits[d] = b
		s.totalBits += b
	}
	if s.totalBits > MaxZBits {
		return nil, configErrorf("total bits %d exceeds %d", s.totalBits, MaxZBits)
	}

	if opts.Interleave == nil {
		s.interleave = defaultInterleave(bits)
	} else {
		if err := validateInterleave(bits, s.totalBits, opts.Interleave); err != nil {
			return nil, err
		}
		s.interleave = slices.Clone(opts.Interleave)
	}

	if err := s.initApplicationSpace(opts.Lo, opts.Hi); err != nil {
		return nil, err
	}

	s.initShuffleTables()
	return s, nil
}

// MustNew is like New but panics on error.
func MustNew(bits []int, optFns ...func(o *Options)) *Space {
	s, err := New(bits, optFns...)
	if err != nil {
		panic(err)
	}
	return s
}

// defaultInterleave takes one bit per dimension in turn, skipping dimensions
// whose bits are exhausted.
func defaultInterleave(bits []int) []int {
	total := 0
	for _, b := range bits {
		total += b
	}
	remaining := slices.Clone(bits)
	interleave := make([]int, 0, total)
	for len(interleave) < total {
		for d := range remaining {
			if remaining[d] > 0 {
				interleave = append(interleave, d)
				remaining[d]--
			}
		}
	}
	return interleave
}

func validateInterleave(bits []int, total int, interleave []int) error {
	if len(interleave) != total {
		return configErrorf("interleave has %d positions, total bits is %d", len(interleave), total)
	}
	counts := make([]int, len(bits))
	for p, d := range interleave {
		if d < 0 || d >= len(bits) {
			return configErrorf("interleave position %d names dimension %d", p, d)
		}
		counts[d]++
	}
	for d, c := range counts {
		if c != bits[d] {
			return configErrorf("interleave gives dimension %d %d bits, configured %d", d, c, bits[d])
		}
	}
	return nil
}

func (s *Space) initApplicationSpace(lo, hi []float64) error {
	if lo == nil && hi == nil {
		for d := 0; d < s.dims; d++ {
			s.lo[d] = 0
			s.hi[d] = float64(uint64(1) << s.bits[d])
			s.cells[d] = s.hi[d]
		}
		return nil
	}
	if len(lo) != s.dims || len(hi) != s.dims {
		return configErrorf("application space needs %d bounds per side, got %d and %d", s.dims, len(lo), len(hi))
	}
	for d := 0; d < s.dims; d++ {
		if !(lo[d] < hi[d]) || math.IsInf(lo[d], 0) || math.IsInf(hi[d], 0) {
			return configErrorf("dimension %d has invalid bounds [%v, %v]", d, lo[d], hi[d])
		}
		s.lo[d] = lo[d]
		s.hi[d] = hi[d]
		s.cells[d] = float64(uint64(1) << s.bits[d])
	}
	return nil
}

func (s *Space) initShuffleTables() {
	// position[d][k] is the z position of dimension d's k-th bit from the top.
	position := make([][]int, s.dims)
	for p, d := range s.interleave {
		position[d] = append(position[d], p)
	}

	s.shuffle = make([][8][256]uint64, s.dims)
	for d := 0; d < s.dims; d++ {
		width := s.bits[d]
		for b := 0; b < 8; b++ {
			for v := 0; v < 256; v++ {
				var out uint64
				for k := 0; k < 8; k++ {
					if v&(1<<k) == 0 {
						continue
					}
					c := 8*b + k
					if c >= width {
						break
					}
					out |= bitAt(position[d][width-1-c])
				}
				s.shuffle[d][b][v] = out
			}
		}
	}
}

// Dimensions returns the number of dimensions.
func (s *Space) Dimensions() int { return s.dims }

// Bits returns the bit width of dimension d.
func (s *Space) Bits(d int) int { return s.bits[d] }

// TotalBits returns the sum of all bit widths, the length of a single-cell
// z-value.
func (s *Space) TotalBits() int { return s.totalBits }

// Interleave returns a copy of the interleave order.
func (s *Space) Interleave() []int { return slices.Clone(s.interleave) }

// Shuffle interleaves the grid coordinates and truncates the result to length
// bits. It panics if length is outside [0, TotalBits()].
func (s *Space) Shuffle(coords []uint64, length int) ZValue {
	if length < 0 || length > s.totalBits {
		panic("space: shuffle length out of range")
	}
	var z uint64
	for d := 0; d < s.dims; d++ {
		x := coords[d]
		t := &s.shuffle[d]
		z |= t[0][x&0xff] |
			t[1][(x>>8)&0xff] |
			t[2][(x>>16)&0xff] |
			t[3][(x>>24)&0xff] |
			t[4][(x>>32)&0xff] |
			t[5][(x>>40)&0xff] |
			t[6][(x>>48)&0xff] |
			t[7][(x>>56)&0xff]
	}
	return ZValue(z&prefixMask(length) | uint64(length))
}

// MaxCoord returns the largest grid coordinate of dimension d.
func (s *Space) MaxCoord(d int) uint64 {
	return uint64(1)<<s.bits[d] - 1
}

// AppLo returns the lower application bound of dimension d.
func (s *Space) AppLo(d int) float64 { return s.lo[d] }

// AppHi returns the upper application bound of dimension d.
func (s *Space) AppHi(d int) float64 { return s.hi[d] }

// ContainsApp reports whether x lies within the application bounds of
// dimension d.
func (s *Space) ContainsApp(d int, x float64) bool {
	return x >= s.lo[d] && x <= s.hi[d]
}

// AppToGrid maps an application coordinate to its grid cell. Coordinates
// outside the bounds are clamped; x == AppHi(d) falls into the last cell.
func (s *Space) AppToGrid(d int, x float64) uint64 {
	if !(x > s.lo[d]) {
		return 0
	}
	// Multiply before dividing so that bounds on the cell grid map exactly.
	g := math.Floor((x - s.lo[d]) * s.cells[d] / (s.hi[d] - s.lo[d]))
	maxCoord := s.MaxCoord(d)
	if g >= float64(maxCoord) {
		return maxCoord
	}
	return uint64(g)
}

// GridToApp returns the application coordinate of the low edge of cell g.
func (s *Space) GridToApp(d int, g uint64) float64 {
	return s.lo[d] + float64(g)*(s.hi[d]-s.lo[d])/s.cells[d]
}

// Equal reports whether both spaces produce identical z-values for identical
// inputs.
func (s *Space) Equal(other *Space) bool {
	if s == other {
		return true
	}
	if other == nil || s.dims != other.dims || s.bits != other.bits {
		return false
	}
	return slices.Equal(s.interleave, other.interleave) && s.lo == other.lo && s.hi == other.hi
}
