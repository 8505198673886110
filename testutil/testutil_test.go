package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/join"
	"github.com/hupe1980/zspatial/space"
)

var (
	lo = []float64{0, 0}
	hi = []float64{100, 50}
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	pts := rng.UniformPoints(200, lo, hi)

	require.Len(t, pts, 200)
	for i, o := range pts {
		p := o.(*geom.Point)
		assert.Equal(t, int64(i), p.ID())
		for d, c := range p.Coords() {
			assert.GreaterOrEqual(t, c, lo[d])
			assert.Less(t, c, hi[d])
		}
	}
}

func TestUniformBoxes(t *testing.T) {
	rng := NewRNG(4711)

	boxes := rng.UniformBoxes(200, lo, hi, 10)

	require.Len(t, boxes, 200)
	for _, o := range boxes {
		b := o.(*geom.Box)
		for d := range lo {
			assert.LessOrEqual(t, b.Lo()[d], b.Hi()[d])
			assert.LessOrEqual(t, b.Hi()[d]-b.Lo()[d], 10.0)
			assert.LessOrEqual(t, b.Hi()[d], hi[d])
		}
	}
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)

	pts := rng.ClusteredPoints(500, 3, lo, hi, 0.5)

	require.Len(t, pts, 500)
	for _, o := range pts {
		for d, c := range o.(*geom.Point).Coords() {
			assert.GreaterOrEqual(t, c, lo[d])
			assert.Less(t, c, hi[d])
		}
	}
}

func TestZipf(t *testing.T) {
	rng := NewRNG(42)
	counts := make([]int, 10)
	for i := 0; i < 10000; i++ {
		v := rng.Zipf(10, 1.5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 10)
		counts[v]++
	}
	assert.Greater(t, counts[0], counts[9])
	assert.Equal(t, 0, rng.Zipf(1, 1.5))
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	p1 := rng.UniformPoints(3, lo, hi)

	rng.Reset()
	p2 := rng.UniformPoints(3, lo, hi)

	assert.Equal(t, p1, p2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestBruteForceJoinAndRecall(t *testing.T) {
	left := []space.Object{
		geom.NewBox(1, []float64{0, 0}, []float64{10, 10}),
		geom.NewBox(2, []float64{20, 20}, []float64{30, 30}),
	}
	right := []space.Object{
		geom.NewPoint(7, 5, 5),
		geom.NewPoint(8, 25, 25),
		geom.NewPoint(9, 40, 40),
	}

	want := BruteForceJoin(left, right, geom.Intersecting)
	assert.Equal(t, map[PairKey]struct{}{{1, 7}: {}, {2, 8}: {}}, want)

	got := PairSet([]join.Pair{{Left: left[0], Right: right[0]}})
	assert.InDelta(t, 0.5, ComputeRecall(want, got), 1e-9)
	assert.Equal(t, []PairKey{{2, 8}}, Missing(want, got))
	assert.Equal(t, 1.0, ComputeRecall(nil, got))
}
