package geom

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/space"
)

// Point is a point in application coordinates.
type Point struct {
	id     int64
	coords []float64
}

var _ codec.Serializable = (*Point)(nil)

// NewPoint creates a point.
func NewPoint(id int64, coords ...float64) *Point {
	return &Point{id: id, coords: slices.Clone(coords)}
}

// ID returns the point's id.
func (p *Point) ID() int64 { return p.id }

// SetID sets the point's id.
func (p *Point) SetID(id int64) { p.id = id }

// Coords returns the point's coordinates. The slice must not be modified.
func (p *Point) Coords() []float64 { return p.coords }

// ArbitraryPoint writes the grid cell of the point.
func (p *Point) ArbitraryPoint(s *space.Space, out []uint64) {
	for d, x := range p.coords {
		out[d] = s.AppToGrid(d, x)
	}
}

// MaxZ is one: a point always decomposes into its grid cell.
func (p *Point) MaxZ() int { return 1 }

// Compare returns Inside only for the point's own cell.
func (p *Point) Compare(r *space.Region) space.Relation {
	if !p.ContainedBy(r) {
		return space.Outside
	}
	if r.IsCell() {
		return space.Inside
	}
	return space.Overlaps
}

// ContainedBy reports whether the point's cell lies in r.
func (p *Point) ContainedBy(r *space.Region) bool {
	s := r.Space()
	for d, x := range p.coords {
		g := s.AppToGrid(d, x)
		if g < r.Lo(d) || g > r.Hi(d) {
			return false
		}
	}
	return true
}

// ContainedBySpace reports whether the point lies within the application
// bounds.
func (p *Point) ContainedBySpace(s *space.Space) bool {
	if len(p.coords) != s.Dimensions() {
		return false
	}
	for d, x := range p.coords {
		if !s.ContainsApp(d, x) {
			return false
		}
	}
	return true
}

// Equal reports whether other is a point, or a degenerate box, at the same
// location.
func (p *Point) Equal(other space.Object) bool {
	switch o := other.(type) {
	case *Point:
		return slices.Equal(p.coords, o.coords)
	case *Box:
		return o.Equal(p)
	default:
		return false
	}
}

// Clone returns a deep copy.
func (p *Point) Clone() space.Object { return NewPoint(p.id, p.coords...) }

// TypeID returns TypePoint.
func (p *Point) TypeID() uint16 { return TypePoint }

// AppendBinary appends the dimension count and coordinates.
func (p *Point) AppendBinary(dst []byte) ([]byte, error) {
	dst = append(dst, byte(len(p.coords)))
	return appendFloats(dst, p.coords), nil
}

// UnmarshalBinary decodes what AppendBinary wrote.
func (p *Point) UnmarshalBinary(data []byte) error {
	if len(data) < 1 {
		return codec.ErrBufferTooSmall
	}
	dims := int(data[0])
	coords, _, err := readFloats(data[1:], dims)
	if err != nil {
		return err
	}
	p.coords = coords
	return nil
}

func (p *Point) String() string {
	return fmt.Sprintf("Point(%d %v)", p.id, p.coords)
}

func appendFloats(dst []byte, fs []float64) []byte {
	for _, f := range fs {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(f))
	}
	return dst
}

func readFloats(src []byte, n int) ([]float64, []byte, error) {
	if len(src) < 8*n {
		return nil, nil, codec.ErrBufferTooSmall
	}
	fs := make([]float64, n)
	for i := range fs {
		fs[i] = math.Float64frombits(binary.LittleEndian.Uint64(src[8*i:]))
	}
	return fs, src[8*n:], nil
}
