package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/join"
	"github.com/hupe1980/zspatial/space"
)

// PairKey identifies a join result by the ids of its objects.
type PairKey struct {
	Left, Right int64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// uniformLocked draws one coordinate per dimension in [lo, hi).
func (r *RNG) uniformLocked(lo, hi []float64) []float64 {
	c := make([]float64, len(lo))
	for d := range c {
		c[d] = lo[d] + r.rand.Float64()*(hi[d]-lo[d])
	}
	return c
}

// UniformPoints generates num points uniformly distributed in [lo, hi).
// Ids are 0..num-1.
func (r *RNG) UniformPoints(num int, lo, hi []float64) []space.Object {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]space.Object, num)
	for i := range out {
		out[i] = geom.NewPoint(int64(i), r.uniformLocked(lo, hi)...)
	}
	return out
}

// UniformBoxes generates num boxes with a lower corner uniformly
// distributed in [lo, hi) and sides up to maxSide, clipped to hi.
// Ids are 0..num-1.
func (r *RNG) UniformBoxes(num int, lo, hi []float64, maxSide float64) []space.Object {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]space.Object, num)
	for i := range out {
		bl := r.uniformLocked(lo, hi)
		bh := make([]float64, len(bl))
		for d := range bh {
			bh[d] = math.Min(bl[d]+r.rand.Float64()*maxSide, hi[d])
		}
		out[i] = geom.NewBox(int64(i), bl, bh)
	}
	return out
}

// ClusteredPoints generates points scattered around random centers. spread
// is the standard deviation relative to the extent of each dimension.
// Useful for testing joins on skewed data.
func (r *RNG) ClusteredPoints(num, clusters int, lo, hi []float64, spread float64) []space.Object {
	r.mu.Lock()
	defer r.mu.Unlock()

	centers := make([][]float64, clusters)
	for i := range centers {
		centers[i] = r.uniformLocked(lo, hi)
	}

	out := make([]space.Object, num)
	for i := range out {
		center := centers[r.rand.Intn(clusters)]
		c := make([]float64, len(center))
		for d := range c {
			v := center[d] + r.rand.NormFloat64()*spread*(hi[d]-lo[d])
			c[d] = math.Max(lo[d], math.Min(v, math.Nextafter(hi[d], lo[d])))
		}
		out[i] = geom.NewPoint(int64(i), c...)
	}
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, larger s gives a heavier head.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n <= 1 {
		return 0
	}
	z := rand.NewZipf(r.rand, math.Max(s, 1.0001), 1, uint64(n-1))
	return int(z.Uint64())
}

// BruteForceJoin compares every pair and returns those accepted by
// intersects.
func BruteForceJoin(left, right []space.Object, intersects func(a, b space.Object) bool) map[PairKey]struct{} {
	out := make(map[PairKey]struct{})
	for _, a := range left {
		for _, b := range right {
			if intersects(a, b) {
				out[PairKey{Left: a.ID(), Right: b.ID()}] = struct{}{}
			}
		}
	}
	return out
}

// PairSet returns the ids of pairs as a set.
func PairSet(pairs []join.Pair) map[PairKey]struct{} {
	out := make(map[PairKey]struct{}, len(pairs))
	for _, p := range pairs {
		out[PairKey{Left: p.Left.ID(), Right: p.Right.ID()}] = struct{}{}
	}
	return out
}

// ComputeRecall returns the share of groundTruth found in result. An empty
// ground truth has recall 1.
func ComputeRecall(groundTruth, result map[PairKey]struct{}) float64 {
	if len(groundTruth) == 0 {
		return 1
	}
	hits := 0
	for k := range groundTruth {
		if _, ok := result[k]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(groundTruth))
}

// Missing returns the pairs of groundTruth absent from result.
func Missing(groundTruth, result map[PairKey]struct{}) []PairKey {
	var out []PairKey
	for k := range groundTruth {
		if _, ok := result[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}
