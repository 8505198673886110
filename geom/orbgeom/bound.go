package orbgeom

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/space"
)

// Bound is an axis-aligned rectangle.
type Bound struct {
	id  int64
	b   orb.Bound
	box *geom.Box
}

var _ codec.Serializable = (*Bound)(nil)

// NewBound creates a Bound.
func NewBound(id int64, b orb.Bound) *Bound {
	return &Bound{id: id, b: b, box: toBox(id, b)}
}

func toBox(id int64, b orb.Bound) *geom.Box {
	return geom.NewBox(id, []float64{b.Min[0], b.Min[1]}, []float64{b.Max[0], b.Max[1]})
}

// WithMaxZ sets the decomposition budget and returns b.
func (b *Bound) WithMaxZ(n int) *Bound {
	b.box.WithMaxZ(n)
	return b
}

// Bound returns the wrapped orb.Bound.
func (b *Bound) Bound() orb.Bound { return b.b }

func (b *Bound) ID() int64 { return b.id }

func (b *Bound) SetID(id int64) {
	b.id = id
	if b.box != nil {
		b.box.SetID(id)
	}
}

func (b *Bound) ArbitraryPoint(s *space.Space, out []uint64) { b.box.ArbitraryPoint(s, out) }

func (b *Bound) MaxZ() int { return b.box.MaxZ() }

func (b *Bound) Compare(r *space.Region) space.Relation { return b.box.Compare(r) }

func (b *Bound) ContainedBy(r *space.Region) bool { return b.box.ContainedBy(r) }

func (b *Bound) ContainedBySpace(s *space.Space) bool { return b.box.ContainedBySpace(s) }

// Equal reports whether other is a Bound or geom.Box with the same corners.
func (b *Bound) Equal(other space.Object) bool {
	switch o := other.(type) {
	case *Bound:
		return b.b.Equal(o.b)
	default:
		return b.box.Equal(other)
	}
}

// Clone returns a deep copy.
func (b *Bound) Clone() space.Object {
	return NewBound(b.id, b.b).WithMaxZ(b.MaxZ())
}

// TypeID returns TypeBound.
func (b *Bound) TypeID() uint16 { return TypeBound }

// AppendBinary appends the budget and the min and max corners.
func (b *Bound) AppendBinary(dst []byte) ([]byte, error) {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(b.MaxZ()))
	for _, f := range [4]float64{b.b.Min[0], b.b.Min[1], b.b.Max[0], b.b.Max[1]} {
		dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(f))
	}
	return dst, nil
}

// UnmarshalBinary decodes what AppendBinary wrote.
func (b *Bound) UnmarshalBinary(data []byte) error {
	if len(data) < 4+4*8 {
		return codec.ErrBufferTooSmall
	}
	maxZ := int(binary.LittleEndian.Uint32(data))
	var f [4]float64
	for i := range f {
		f[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[4+8*i:]))
	}
	b.b = orb.Bound{Min: orb.Point{f[0], f[1]}, Max: orb.Point{f[2], f[3]}}
	b.box = toBox(b.id, b.b).WithMaxZ(maxZ)
	return nil
}

func (b *Bound) String() string {
	return fmt.Sprintf("Bound(%d %v-%v)", b.id, b.b.Min, b.b.Max)
}
