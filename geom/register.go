package geom

import (
	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/space"
)

// Type ids of the geometries in this package.
const (
	TypePoint uint16 = 1
	TypeBox   uint16 = 2
)

// Register adds Point and Box to r.
func Register(r *codec.Registry) error {
	if err := r.Register(TypePoint, func() codec.Serializable { return &Point{} }); err != nil {
		return err
	}
	return r.Register(TypeBox, func() codec.Serializable { return &Box{} })
}

// Intersecting reports whether two boxes or points share a point. Pairs
// involving other object types are accepted. It has the signature of a join
// filter.
func Intersecting(a, b space.Object) bool {
	ba, okA := asBox(a)
	bb, okB := asBox(b)
	if !okA || !okB {
		return true
	}
	return ba.Intersects(bb)
}

func asBox(v space.Object) (*Box, bool) {
	switch o := v.(type) {
	case *Box:
		return o, true
	case *Point:
		return &Box{id: o.id, lo: o.coords, hi: o.coords}, true
	default:
		return nil, false
	}
}
