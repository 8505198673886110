package space

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// naiveShuffle interleaves one bit at a time.
func naiveShuffle(s *Space, coords []uint64, length int) ZValue {
	var taken [MaxDimensions]int
	var z uint64
	for p, d := range s.interleave {
		k := taken[d]
		taken[d]++
		if p >= length {
			continue
		}
		if (coords[d]>>(s.bits[d]-1-k))&1 == 1 {
			z |= bitAt(p)
		}
	}
	return ZValue(z | uint64(length))
}

func TestNew_DefaultInterleave(t *testing.T) {
	tests := []struct {
		name string
		bits []int
		want []int
	}{
		{"single", []int{4}, []int{0, 0, 0, 0}},
		{"equal", []int{2, 2}, []int{0, 1, 0, 1}},
		{"uneven", []int{3, 1, 2}, []int{0, 1, 2, 0, 2, 0}},
		{"short first", []int{1, 3}, []int{0, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.bits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Interleave())
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		bits  []int
		optFn func(o *Options)
	}{
		{"no dimensions", []int{}, nil},
		{"too many dimensions", []int{1, 1, 1, 1, 1, 1, 1}, nil},
		{"zero bits", []int{4, 0}, nil},
		{"too many bits", []int{30, 30}, nil},
		{"short interleave", []int{2, 2}, func(o *Options) { o.Interleave = []int{0, 1, 0} }},
		{"unbalanced interleave", []int{2, 2}, func(o *Options) { o.Interleave = []int{0, 0, 0, 1} }},
		{"unknown dimension", []int{2, 2}, func(o *Options) { o.Interleave = []int{0, 1, 2, 1} }},
		{"bounds count", []int{2, 2}, func(o *Options) { o.Lo = []float64{0}; o.Hi = []float64{1, 1} }},
		{"empty bounds", []int{2, 2}, func(o *Options) { o.Lo = []float64{0, 1}; o.Hi = []float64{1, 1} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var optFns []func(o *Options)
			if tt.optFn != nil {
				optFns = append(optFns, tt.optFn)
			}
			_, err := New(tt.bits, optFns...)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)

			var ce *ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestShuffle_MatchesNaive(t *testing.T) {
	spaces := []*Space{
		MustNew([]int{10, 10}),
		MustNew([]int{3, 1, 2}),
		MustNew([]int{20, 17, 20}),
		MustNew([]int{9, 9, 9, 9, 9, 9}),
		MustNew([]int{4, 4}, func(o *Options) { o.Interleave = []int{0, 0, 1, 1, 0, 1, 0, 1} }),
		MustNew([]int{57}),
	}
	rng := rand.New(rand.NewSource(4))
	for _, s := range spaces {
		coords := make([]uint64, s.Dimensions())
		for i := 0; i < 2000; i++ {
			for d := range coords {
				coords[d] = uint64(rng.Int63()) & s.MaxCoord(d)
			}
			length := rng.Intn(s.TotalBits() + 1)
			require.Equal(t, naiveShuffle(s, coords, length), s.Shuffle(coords, length))
		}
	}
}

func TestShuffle_FollowsBisectionOrder(t *testing.T) {
	s := MustNew([]int{3, 3})
	// Descending the bisection tree toward a cell yields the same z-values as
	// shuffling the cell with shorter lengths.
	for x := uint64(0); x < 8; x++ {
		for y := uint64(0); y < 8; y++ {
			coords := []uint64{x, y}
			r := s.RootRegion()
			for level := 0; level < s.TotalBits(); level++ {
				require.Equal(t, s.Shuffle(coords, level), r.Z())
				d := s.interleave[level]
				half := (r.Lo(d) + r.Hi(d) + 1) / 2
				if coords[d] < half {
					r.DownLeft()
				} else {
					r.DownRight()
				}
			}
			require.Equal(t, s.Shuffle(coords, s.TotalBits()), r.Z())
			require.Equal(t, x, r.Lo(0))
			require.Equal(t, y, r.Lo(1))
		}
	}

	// Pre-order: a cell that is visited later by the left-then-right descent
	// has a larger z-value.
	previous := NoRegion
	var visit func(r Region)
	visit = func(r Region) {
		if previous != NoRegion {
			require.Greater(t, uint64(r.Z()), uint64(previous))
		}
		previous = r.Z()
		if r.IsCell() {
			return
		}
		left, right := r, r
		left.DownLeft()
		right.DownRight()
		visit(left)
		visit(right)
	}
	visit(s.RootRegion())
}

func TestShuffle_InvalidLengthPanics(t *testing.T) {
	s := MustNew([]int{2, 2})
	assert.Panics(t, func() { s.Shuffle([]uint64{0, 0}, 5) })
	assert.Panics(t, func() { s.Shuffle([]uint64{0, 0}, -1) })
}

func TestApplicationSpace(t *testing.T) {
	s := MustNew([]int{10, 10}, func(o *Options) {
		o.Lo = []float64{0, 0}
		o.Hi = []float64{1000, 1000}
	})

	assert.Equal(t, uint64(0), s.AppToGrid(0, 0))
	assert.Equal(t, uint64(0), s.AppToGrid(0, -5))
	assert.Equal(t, uint64(10), s.AppToGrid(0, 10))
	assert.Equal(t, uint64(512), s.AppToGrid(1, 500))
	assert.Equal(t, uint64(1023), s.AppToGrid(0, 1000))
	assert.Equal(t, uint64(1023), s.AppToGrid(0, 2000))

	assert.True(t, s.ContainsApp(0, 1000))
	assert.False(t, s.ContainsApp(0, 1000.5))
	assert.InDelta(t, 500.0, s.GridToApp(0, 512), 1e-9)
}

func TestConfig_RoundTrip(t *testing.T) {
	s := MustNew([]int{3, 5}, func(o *Options) {
		o.Interleave = []int{1, 1, 0, 1, 0, 1, 0, 1}
		o.Lo = []float64{-10, -20}
		o.Hi = []float64{10, 20}
	})
	clone, err := FromConfig(s.Config())
	require.NoError(t, err)
	assert.True(t, s.Equal(clone))

	plain := MustNew([]int{3, 5})
	rebuilt, err := FromConfig(plain.Config())
	require.NoError(t, err)
	assert.True(t, plain.Equal(rebuilt))
	assert.False(t, plain.Equal(s))
	assert.False(t, plain.Equal(nil))
}
