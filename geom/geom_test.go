package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/decompose"
	"github.com/hupe1980/zspatial/space"
)

func appSpace(t *testing.T) *space.Space {
	t.Helper()
	s, err := space.New([]int{10, 10}, func(o *space.Options) {
		o.Lo = []float64{0, 0}
		o.Hi = []float64{1000, 1000}
	})
	require.NoError(t, err)
	return s
}

func TestPoint_Classification(t *testing.T) {
	s := appSpace(t)
	p := NewPoint(1, 250, 750)

	cells := make([]uint64, 2)
	p.ArbitraryPoint(s, cells)
	assert.Equal(t, []uint64{256, 768}, cells)

	cell := s.CellRegion(cells)
	assert.Equal(t, space.Inside, p.Compare(&cell))
	assert.True(t, p.ContainedBy(&cell))

	root := s.RootRegion()
	assert.Equal(t, space.Overlaps, p.Compare(&root))

	left := s.RootRegion()
	left.DownLeft() // x in [0, 511]
	right := s.RootRegion()
	right.DownRight()
	assert.Equal(t, space.Overlaps, p.Compare(&left))
	assert.Equal(t, space.Outside, p.Compare(&right))
	assert.False(t, p.ContainedBy(&right))

	assert.True(t, p.ContainedBySpace(s))
	assert.False(t, NewPoint(2, 1000.5, 0).ContainedBySpace(s))
	assert.False(t, NewPoint(3, 1, 2, 3).ContainedBySpace(s))
}

func TestBox_Classification(t *testing.T) {
	s := appSpace(t)
	b := NewBox(1, []float64{0, 0}, []float64{499.9, 1000})

	left := s.RootRegion()
	left.DownLeft()
	right := s.RootRegion()
	right.DownRight()
	assert.Equal(t, space.Inside, b.Compare(&left))
	assert.Equal(t, space.Outside, b.Compare(&right))
	assert.True(t, b.ContainedBy(&left))

	root := s.RootRegion()
	wide := NewBox(2, []float64{400, 0}, []float64{600, 10})
	assert.Equal(t, space.Overlaps, wide.Compare(&root))
	assert.False(t, wide.ContainedBy(&left))
	assert.True(t, wide.ContainedBy(&root))

	assert.True(t, b.ContainedBySpace(s))
	assert.False(t, NewBox(3, []float64{-1, 0}, []float64{5, 5}).ContainedBySpace(s))
	assert.False(t, NewBox(4, []float64{5, 5}, []float64{1, 1}).ContainedBySpace(s))
}

func TestBox_DecompositionCoversBox(t *testing.T) {
	s := appSpace(t)
	d := decompose.New(s)
	b := NewBox(1, []float64{120.5, 300}, []float64{480, 333.3})

	zs, err := d.Decompose(b, 16)
	require.NoError(t, err)
	require.LessOrEqual(t, len(zs), 16)

	for _, x := range []float64{120.5, 200, 480} {
		for _, y := range []float64{300, 310, 333.3} {
			cell := make([]uint64, 2)
			NewPoint(0, x, y).ArbitraryPoint(s, cell)
			z := s.Shuffle(cell, s.TotalBits())
			covered := false
			for _, c := range zs {
				covered = covered || c.Contains(z)
			}
			assert.True(t, covered, "(%v, %v) not covered", x, y)
		}
	}
}

func TestEqual(t *testing.T) {
	p := NewPoint(1, 3, 4)
	assert.True(t, p.Equal(NewPoint(99, 3, 4)))
	assert.False(t, p.Equal(NewPoint(1, 4, 3)))

	degenerate := NewBox(2, []float64{3, 4}, []float64{3, 4})
	assert.True(t, p.Equal(degenerate))
	assert.True(t, degenerate.Equal(p))

	b := NewBox(3, []float64{0, 0}, []float64{1, 1})
	assert.True(t, b.Equal(NewBox(4, []float64{0, 0}, []float64{1, 1})))
	assert.False(t, b.Equal(p))
}

func TestClone(t *testing.T) {
	b := NewBox(7, []float64{0, 1}, []float64{2, 3}).WithMaxZ(5)
	c := b.Clone().(*Box)
	assert.True(t, b.Equal(c))
	assert.Equal(t, 5, c.MaxZ())
	c.lo[0] = 100
	assert.Equal(t, 0.0, b.Lo()[0])

	p := NewPoint(8, 1, 2)
	assert.True(t, p.Equal(p.Clone()))
}

func TestIntersecting(t *testing.T) {
	a := NewBox(1, []float64{0, 0}, []float64{10, 10})
	b := NewBox(2, []float64{10, 10}, []float64{20, 20})
	c := NewBox(3, []float64{11, 0}, []float64{20, 5})

	assert.True(t, Intersecting(a, b))
	assert.False(t, Intersecting(a, c))
	assert.True(t, Intersecting(a, NewPoint(4, 5, 5)))
	assert.False(t, Intersecting(NewPoint(5, 50, 5), a))
	assert.True(t, a.ContainsPoint([]float64{10, 0}))
}

func TestRegister_EncodeDecode(t *testing.T) {
	r := codec.NewRegistry()
	require.NoError(t, Register(r))
	assert.ErrorIs(t, Register(r), codec.ErrDuplicateType)

	objs := []codec.Serializable{
		NewPoint(11, 1.5, -2.25, 3),
		NewBox(12, []float64{0, 1}, []float64{2, 3}).WithMaxZ(6),
	}
	var buf []byte
	for _, o := range objs {
		var err error
		buf, err = r.Encode(buf, o)
		require.NoError(t, err)
	}

	for _, want := range objs {
		got, n, err := r.Decode(buf)
		require.NoError(t, err)
		assert.Equal(t, want.ID(), got.ID())
		assert.True(t, want.Equal(got))
		assert.Equal(t, want.MaxZ(), got.MaxZ())
		buf = buf[n:]
	}
	assert.Empty(t, buf)
}

func TestUnmarshal_Truncated(t *testing.T) {
	p := NewPoint(1, 1, 2)
	data, err := p.AppendBinary(nil)
	require.NoError(t, err)
	assert.ErrorIs(t, new(Point).UnmarshalBinary(data[:len(data)-1]), codec.ErrBufferTooSmall)

	b := NewBox(1, []float64{0}, []float64{1})
	data, err = b.AppendBinary(nil)
	require.NoError(t, err)
	assert.ErrorIs(t, new(Box).UnmarshalBinary(data[:9]), codec.ErrBufferTooSmall)
	assert.ErrorIs(t, new(Box).UnmarshalBinary(nil), codec.ErrBufferTooSmall)
}
