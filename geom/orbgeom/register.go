package orbgeom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/space"
)

// Type ids of the geometries in this package.
const (
	TypeBound   uint16 = 16
	TypePolygon uint16 = 17
)

// Register adds Bound and Polygon to r.
func Register(r *codec.Registry) error {
	if err := r.Register(TypeBound, func() codec.Serializable { return &Bound{} }); err != nil {
		return err
	}
	return r.Register(TypePolygon, func() codec.Serializable { return &Polygon{} })
}

// Intersecting reports whether two objects share a point. It understands
// this package's types as well as geom.Point and two-dimensional geom.Box;
// pairs involving any other type are accepted. It has the signature of a
// join filter.
func Intersecting(a, b space.Object) bool {
	ga, okA := toOrb(a)
	gb, okB := toOrb(b)
	if !okA || !okB {
		return true
	}

	switch x := ga.(type) {
	case orb.Point:
		return containsPoint(gb, x)
	case orb.Bound:
		switch y := gb.(type) {
		case orb.Point:
			return x.Contains(y)
		case orb.Bound:
			return x.Intersects(y)
		case orb.Polygon:
			return x.Intersects(y.Bound()) && intersectsBound(y, x)
		}
	case orb.Polygon:
		switch y := gb.(type) {
		case orb.Point:
			return planar.PolygonContains(x, y)
		case orb.Bound:
			return y.Intersects(x.Bound()) && intersectsBound(x, y)
		case orb.Polygon:
			return polygonsIntersect(x, y)
		}
	}
	return true
}

func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch y := g.(type) {
	case orb.Point:
		return y.Equal(p)
	case orb.Bound:
		return y.Contains(p)
	case orb.Polygon:
		return planar.PolygonContains(y, p)
	default:
		return true
	}
}

func toOrb(o space.Object) (orb.Geometry, bool) {
	switch v := o.(type) {
	case *Bound:
		return v.b, true
	case *Polygon:
		return v.poly, true
	case *geom.Point:
		c := v.Coords()
		if len(c) != 2 {
			return nil, false
		}
		return orb.Point{c[0], c[1]}, true
	case *geom.Box:
		lo, hi := v.Lo(), v.Hi()
		if len(lo) != 2 {
			return nil, false
		}
		return orb.Bound{Min: orb.Point{lo[0], lo[1]}, Max: orb.Point{hi[0], hi[1]}}, true
	default:
		return nil, false
	}
}
