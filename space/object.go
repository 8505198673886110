package space

// Relation classifies a region against a spatial object.
type Relation int

const (
	// Outside means the region and the object are disjoint.
	Outside Relation = iota
	// Inside means the region lies entirely inside the object.
	Inside
	// Overlaps means the region is partially covered by the object.
	Overlaps
)

func (r Relation) String() string {
	switch r {
	case Outside:
		return "OUTSIDE"
	case Inside:
		return "INSIDE"
	case Overlaps:
		return "OVERLAPS"
	default:
		return "UNKNOWN"
	}
}

// Object is a spatial object that can be decomposed and joined.
//
// Equality is geometric: two objects are equal when they occupy identical
// point sets, independent of their ids.
type Object interface {
	// ID returns the caller-assigned identifier, unique per index and
	// non-negative.
	ID() int64

	// ArbitraryPoint writes the grid coordinates of some point of the object
	// into out, which has s.Dimensions() elements.
	ArbitraryPoint(s *Space, out []uint64)

	// MaxZ returns the maximum number of z-values the object should be
	// decomposed into.
	MaxZ() int

	// Compare classifies r against the object.
	Compare(r *Region) Relation

	// ContainedBy reports whether the object lies entirely within r.
	ContainedBy(r *Region) bool

	// ContainedBySpace reports whether the object lies within the space's
	// bounds.
	ContainedBySpace(s *Space) bool

	// Equal reports whether other occupies the same point set.
	Equal(other Object) bool
}
