package orbgeom

import (
	"context"
	"math/rand"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/decompose"
	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/index"
	"github.com/hupe1980/zspatial/join"
	"github.com/hupe1980/zspatial/space"
)

// unitSpace maps every grid cell to a unit square.
func unitSpace() *space.Space {
	return space.MustNew([]int{6, 6}, func(o *space.Options) {
		o.Lo = []float64{0, 0}
		o.Hi = []float64{64, 64}
	})
}

func triangle(id int64) *Polygon {
	return NewPolygon(id, orb.Polygon{{{5, 5}, {60, 10}, {20, 58}, {5, 5}}})
}

func square(lo, hi float64) orb.Ring {
	return orb.Ring{{lo, lo}, {hi, lo}, {hi, hi}, {lo, hi}, {lo, lo}}
}

func TestPolygon_DecompositionCoversOutline(t *testing.T) {
	s := unitSpace()
	d := decompose.New(s)
	polys := []*Polygon{
		triangle(1),
		NewPolygon(2, orb.Polygon{square(4, 60), square(20, 40)}),
		NewPolygon(3, orb.Polygon{{{0, 0}, {64, 0}, {64, 3}, {0, 0}}}),
	}

	for _, p := range polys {
		for _, budget := range []int{1, 2, 4, 8, 16, 64} {
			zs, err := d.Decompose(p, budget)
			require.NoError(t, err)
			require.LessOrEqual(t, len(zs), budget)

			vertexCells := map[[2]uint64]bool{}
			for _, ring := range p.poly {
				for _, v := range ring {
					vertexCells[[2]uint64{s.AppToGrid(0, v[0]), s.AppToGrid(1, v[1])}] = true
				}
			}
			for x := uint64(0); x < 64; x++ {
				for y := uint64(0); y < 64; y++ {
					center := orb.Point{float64(x) + 0.5, float64(y) + 0.5}
					if !vertexCells[[2]uint64{x, y}] && !planar.PolygonContains(p.poly, center) {
						continue
					}
					z := s.Shuffle([]uint64{x, y}, s.TotalBits())
					covered := false
					for _, c := range zs {
						if c.Contains(z) {
							covered = true
							break
						}
					}
					require.True(t, covered, "polygon %d budget %d: cell (%d,%d) not covered", p.ID(), budget, x, y)
				}
			}
		}
	}
}

func TestPolygon_FinerThanBoundingBox(t *testing.T) {
	s := unitSpace()
	d := decompose.New(s)
	p := triangle(1)
	b := geom.NewBox(1, []float64{5, 5}, []float64{60, 58})

	area := func(obj space.Object) int {
		zs, err := d.Decompose(obj, 256)
		require.NoError(t, err)
		cells := 0
		for _, z := range zs {
			cells += 1 << (s.TotalBits() - z.Length())
		}
		return cells
	}
	assert.Less(t, area(p), area(b))
}

func TestPolygon_Classification(t *testing.T) {
	s := unitSpace()
	holed := NewPolygon(1, orb.Polygon{square(0, 64), square(16, 48)})

	cell := func(x, y uint64) *space.Region {
		r := s.CellRegion([]uint64{x, y})
		return &r
	}

	assert.Equal(t, space.Inside, holed.Compare(cell(5, 5)))
	assert.Equal(t, space.Outside, holed.Compare(cell(30, 30)), "inside the hole")
	assert.Equal(t, space.Overlaps, holed.Compare(cell(16, 30)), "on the hole's border")

	root := s.RootRegion()
	assert.Equal(t, space.Overlaps, holed.Compare(&root))
	assert.True(t, holed.ContainedBy(&root))
	assert.True(t, holed.ContainedBySpace(s))

	outside := NewPolygon(2, orb.Polygon{square(60, 70)})
	assert.False(t, outside.ContainedBySpace(s))
	assert.False(t, triangle(3).ContainedBySpace(space.MustNew([]int{4, 4, 4})))
}

func TestBound_MatchesBox(t *testing.T) {
	s := unitSpace()
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		x, y := rng.Float64()*50, rng.Float64()*50
		ob := orb.Bound{Min: orb.Point{x, y}, Max: orb.Point{x + rng.Float64()*14, y + rng.Float64()*14}}
		b := NewBound(int64(i), ob)
		box := geom.NewBox(int64(i), []float64{ob.Min[0], ob.Min[1]}, []float64{ob.Max[0], ob.Max[1]})

		r := s.CellRegion([]uint64{uint64(rng.Intn(64)), uint64(rng.Intn(64))})
		for level := s.TotalBits(); level >= 0; level-- {
			require.Equal(t, box.Compare(&r), b.Compare(&r))
			require.Equal(t, box.ContainedBy(&r), b.ContainedBy(&r))
			if level > 0 {
				r.Up()
			}
		}
		assert.True(t, b.Equal(box))
	}
}

func TestIntersecting(t *testing.T) {
	tri := triangle(1)
	tests := []struct {
		name string
		a, b space.Object
		want bool
	}{
		{"point in triangle", tri, geom.NewPoint(2, 20, 20), true},
		{"point outside triangle", geom.NewPoint(2, 50, 50), tri, false},
		{"bound crossing edge", tri, NewBound(2, orb.Bound{Min: orb.Point{50, 0}, Max: orb.Point{62, 9.5}}), true},
		{"bound near corner", NewBound(2, orb.Bound{Min: orb.Point{50, 40}, Max: orb.Point{63, 63}}), tri, false},
		{"box inside triangle", tri, geom.NewBox(2, []float64{15, 15}, []float64{18, 18}), true},
		{"disjoint bounds", NewBound(1, orb.Bound{Max: orb.Point{1, 1}}), NewBound(2, orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{3, 3}}), false},
		{"touching bounds", NewBound(1, orb.Bound{Max: orb.Point{2, 2}}), NewBound(2, orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{3, 3}}), true},
		{"polygon in polygon", tri, NewPolygon(2, orb.Polygon{{{15, 15}, {18, 15}, {16, 18}, {15, 15}}}), true},
		{"disjoint polygons", tri, NewPolygon(2, orb.Polygon{square(50, 60)}), false},
		{"polygon in hole", NewPolygon(1, orb.Polygon{square(0, 64), square(16, 48)}), NewPolygon(2, orb.Polygon{square(20, 30)}), false},
		{"three-dimensional box passes", tri, geom.NewBox(2, []float64{0, 0, 0}, []float64{1, 1, 1}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Intersecting(tt.a, tt.b))
			assert.Equal(t, tt.want, Intersecting(tt.b, tt.a))
		})
	}
}

func TestRegistry_RoundTrip(t *testing.T) {
	r := codec.NewRegistry()
	require.NoError(t, geom.Register(r))
	require.NoError(t, Register(r))
	assert.ErrorIs(t, Register(r), codec.ErrDuplicateType)

	objs := []space.Object{
		NewBound(7, orb.Bound{Min: orb.Point{1, 2}, Max: orb.Point{3, 4}}).WithMaxZ(5),
		NewPolygon(8, orb.Polygon{square(0, 64), square(16, 48)}).WithMaxZ(12),
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
		buf = buf[n:]
		assert.Equal(t, want.ID(), got.ID())
		assert.Equal(t, want.MaxZ(), got.MaxZ())
		assert.True(t, want.Equal(got))
	}
	assert.Empty(t, buf)

	var p Polygon
	assert.ErrorIs(t, p.UnmarshalBinary([]byte{1, 0}), codec.ErrBufferTooSmall)
}

func TestJoin_PolygonsAgainstQuery(t *testing.T) {
	s := unitSpace()
	idx := index.New(s, func(o *index.Options) { o.MaxZ = 12 })

	rng := rand.New(rand.NewSource(3))
	var polys []*Polygon
	for i := 0; i < 60; i++ {
		x, y := rng.Float64()*54, rng.Float64()*54
		p := NewPolygon(int64(i), orb.Polygon{{{x, y}, {x + rng.Float64()*10, y}, {x, y + rng.Float64()*10}, {x, y}}})
		polys = append(polys, p)
		require.NoError(t, idx.Add(p))
	}

	query := NewBound(-1, orb.Bound{Min: orb.Point{10, 10}, Max: orb.Point{35, 30}})
	in, err := join.ObjectInput(s, query, 16)
	require.NoError(t, err)

	j, err := join.New(in, idx, func(o *join.Options) { o.Filter = Intersecting })
	require.NoError(t, err)
	pairs, _, err := j.Collect(context.Background())
	require.NoError(t, err)

	got := map[int64]bool{}
	for _, p := range pairs {
		require.Equal(t, int64(-1), p.Left.ID())
		got[p.Right.ID()] = true
	}
	for _, p := range polys {
		assert.Equal(t, Intersecting(query, p), got[p.ID()], "polygon %d", p.ID())
	}
}
