package geom

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/space"
)

// Box is a closed axis-aligned box in application coordinates.
type Box struct {
	id     int64
	lo, hi []float64
	maxZ   int
}

var _ codec.Serializable = (*Box)(nil)

// NewBox creates a box. lo and hi must have the same length and
// lo[d] <= hi[d].
func NewBox(id int64, lo, hi []float64) *Box {
	if len(lo) != len(hi) {
		panic(fmt.Sprintf("geom: box bounds have %d and %d dimensions", len(lo), len(hi)))
	}
	return &Box{id: id, lo: slices.Clone(lo), hi: slices.Clone(hi)}
}

// WithMaxZ sets the decomposition budget and returns b. Zero uses the
// index default.
func (b *Box) WithMaxZ(n int) *Box {
	b.maxZ = n
	return b
}

// ID returns the box's id.
func (b *Box) ID() int64 { return b.id }

// SetID sets the box's id.
func (b *Box) SetID(id int64) { b.id = id }

// Lo returns the lower corner. The slice must not be modified.
func (b *Box) Lo() []float64 { return b.lo }

// Hi returns the upper corner. The slice must not be modified.
func (b *Box) Hi() []float64 { return b.hi }

// ArbitraryPoint writes the grid cell of the lower corner.
func (b *Box) ArbitraryPoint(s *space.Space, out []uint64) {
	for d, x := range b.lo {
		out[d] = s.AppToGrid(d, x)
	}
}

// MaxZ returns the decomposition budget.
func (b *Box) MaxZ() int { return b.maxZ }

// Compare classifies r against the grid cells the box touches.
func (b *Box) Compare(r *space.Region) space.Relation {
	s := r.Space()
	inside := true
	for d := range b.lo {
		lo, hi := s.AppToGrid(d, b.lo[d]), s.AppToGrid(d, b.hi[d])
		if r.Hi(d) < lo || r.Lo(d) > hi {
			return space.Outside
		}
		if r.Lo(d) < lo || r.Hi(d) > hi {
			inside = false
		}
	}
	if inside {
		return space.Inside
	}
	return space.Overlaps
}

// ContainedBy reports whether every cell the box touches lies in r.
func (b *Box) ContainedBy(r *space.Region) bool {
	s := r.Space()
	for d := range b.lo {
		if s.AppToGrid(d, b.lo[d]) < r.Lo(d) || s.AppToGrid(d, b.hi[d]) > r.Hi(d) {
			return false
		}
	}
	return true
}

// ContainedBySpace reports whether the box lies within the application
// bounds.
func (b *Box) ContainedBySpace(s *space.Space) bool {
	if len(b.lo) != s.Dimensions() {
		return false
	}
	for d := range b.lo {
		if b.lo[d] > b.hi[d] || !s.ContainsApp(d, b.lo[d]) || !s.ContainsApp(d, b.hi[d]) {
			return false
		}
	}
	return true
}

// Equal reports whether other covers the same point set.
func (b *Box) Equal(other space.Object) bool {
	switch o := other.(type) {
	case *Box:
		return slices.Equal(b.lo, o.lo) && slices.Equal(b.hi, o.hi)
	case *Point:
		return slices.Equal(b.lo, o.coords) && slices.Equal(b.hi, o.coords)
	default:
		return false
	}
}

// ContainsPoint reports whether coords lie in the box.
func (b *Box) ContainsPoint(coords []float64) bool {
	for d, x := range coords {
		if x < b.lo[d] || x > b.hi[d] {
			return false
		}
	}
	return true
}

// Intersects reports whether the boxes share at least one point.
func (b *Box) Intersects(other *Box) bool {
	for d := range b.lo {
		if b.hi[d] < other.lo[d] || b.lo[d] > other.hi[d] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (b *Box) Clone() space.Object {
	return NewBox(b.id, b.lo, b.hi).WithMaxZ(b.maxZ)
}

// TypeID returns TypeBox.
func (b *Box) TypeID() uint16 { return TypeBox }

// AppendBinary appends the dimension count, the budget and both corners.
func (b *Box) AppendBinary(dst []byte) ([]byte, error) {
	dst = append(dst, byte(len(b.lo)))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(b.maxZ))
	dst = appendFloats(dst, b.lo)
	return appendFloats(dst, b.hi), nil
}

// UnmarshalBinary decodes what AppendBinary wrote.
func (b *Box) UnmarshalBinary(data []byte) error {
	if len(data) < 5 {
		return codec.ErrBufferTooSmall
	}
	dims := int(data[0])
	b.maxZ = int(binary.LittleEndian.Uint32(data[1:]))
	lo, rest, err := readFloats(data[5:], dims)
	if err != nil {
		return err
	}
	hi, _, err := readFloats(rest, dims)
	if err != nil {
		return err
	}
	b.lo, b.hi = lo, hi
	return nil
}

func (b *Box) String() string {
	return fmt.Sprintf("Box(%d %v-%v)", b.id, b.lo, b.hi)
}
