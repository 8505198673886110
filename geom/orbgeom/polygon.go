package orbgeom

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/space"
)

// ErrNotPolygon is returned when a decoded geometry is not a polygon.
var ErrNotPolygon = errors.New("orbgeom: geometry is not a polygon")

// Polygon is a polygon with optional holes. The first ring is the outline.
type Polygon struct {
	id    int64
	poly  orb.Polygon
	bound orb.Bound
	maxZ  int
}

var _ codec.Serializable = (*Polygon)(nil)

// NewPolygon creates a Polygon. The polygon must have at least one ring and
// every ring must be closed.
func NewPolygon(id int64, p orb.Polygon) *Polygon {
	if len(p) == 0 {
		panic("orbgeom: polygon without rings")
	}
	return &Polygon{id: id, poly: p, bound: p.Bound()}
}

// WithMaxZ sets the decomposition budget and returns p.
func (p *Polygon) WithMaxZ(n int) *Polygon {
	p.maxZ = n
	return p
}

// Polygon returns the wrapped orb.Polygon. It must not be modified.
func (p *Polygon) Polygon() orb.Polygon { return p.poly }

func (p *Polygon) ID() int64 { return p.id }

func (p *Polygon) SetID(id int64) { p.id = id }

func (p *Polygon) MaxZ() int { return p.maxZ }

// ArbitraryPoint writes the cell of the first outline vertex.
func (p *Polygon) ArbitraryPoint(s *space.Space, out []uint64) {
	v := p.poly[0][0]
	out[0] = s.AppToGrid(0, v[0])
	out[1] = s.AppToGrid(1, v[1])
}

// Compare classifies r by its closed rectangle in application coordinates.
// A polygon touching a region only along its border counts as overlapping.
func (p *Polygon) Compare(r *space.Region) space.Relation {
	rect := regionBound(r)
	if !p.bound.Intersects(rect) || !intersectsBound(p.poly, rect) {
		return space.Outside
	}
	if containsBound(p.poly, rect) {
		return space.Inside
	}
	return space.Overlaps
}

// ContainedBy reports whether every cell the polygon's bounding box touches
// lies in r.
func (p *Polygon) ContainedBy(r *space.Region) bool {
	s := r.Space()
	for d := 0; d < 2; d++ {
		if s.AppToGrid(d, p.bound.Min[d]) < r.Lo(d) || s.AppToGrid(d, p.bound.Max[d]) > r.Hi(d) {
			return false
		}
	}
	return true
}

// ContainedBySpace reports whether s is two-dimensional and holds the
// polygon.
func (p *Polygon) ContainedBySpace(s *space.Space) bool {
	if s.Dimensions() != 2 {
		return false
	}
	for d := 0; d < 2; d++ {
		if !s.ContainsApp(d, p.bound.Min[d]) || !s.ContainsApp(d, p.bound.Max[d]) {
			return false
		}
	}
	return true
}

// Equal reports whether other is a polygon with the same rings.
func (p *Polygon) Equal(other space.Object) bool {
	o, ok := other.(*Polygon)
	return ok && p.poly.Equal(o.poly)
}

// Clone returns a deep copy.
func (p *Polygon) Clone() space.Object {
	return NewPolygon(p.id, p.poly.Clone()).WithMaxZ(p.maxZ)
}

// TypeID returns TypePolygon.
func (p *Polygon) TypeID() uint16 { return TypePolygon }

// AppendBinary appends the budget followed by the WKB encoding.
func (p *Polygon) AppendBinary(dst []byte) ([]byte, error) {
	data, err := wkb.Marshal(p.poly)
	if err != nil {
		return dst, err
	}
	dst = binary.LittleEndian.AppendUint32(dst, uint32(p.maxZ))
	return append(dst, data...), nil
}

// UnmarshalBinary decodes what AppendBinary wrote.
func (p *Polygon) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return codec.ErrBufferTooSmall
	}
	g, err := wkb.Unmarshal(data[4:])
	if err != nil {
		return err
	}
	poly, ok := g.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return fmt.Errorf("%w: %s", ErrNotPolygon, g.GeoJSONType())
	}
	p.maxZ = int(binary.LittleEndian.Uint32(data))
	p.poly = poly
	p.bound = poly.Bound()
	return nil
}

func (p *Polygon) String() string {
	return fmt.Sprintf("Polygon(%d %d rings %v-%v)", p.id, len(p.poly), p.bound.Min, p.bound.Max)
}

// regionBound returns the closed application rectangle of r's cells.
func regionBound(r *space.Region) orb.Bound {
	s := r.Space()
	return orb.Bound{
		Min: orb.Point{s.GridToApp(0, r.Lo(0)), s.GridToApp(1, r.Lo(1))},
		Max: orb.Point{s.GridToApp(0, r.Hi(0)+1), s.GridToApp(1, r.Hi(1)+1)},
	}
}
