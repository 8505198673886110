package orbgeom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// intersectsBound reports whether the polygon and the closed rectangle share
// a point.
func intersectsBound(poly orb.Polygon, rect orb.Bound) bool {
	for _, v := range poly[0] {
		if rect.Contains(v) {
			return true
		}
	}
	for _, c := range corners(rect) {
		if planar.PolygonContains(poly, c) {
			return true
		}
	}
	return ringsCross(poly, rect)
}

// containsBound reports whether the rectangle lies in the polygon's interior
// without touching any ring.
func containsBound(poly orb.Polygon, rect orb.Bound) bool {
	for _, c := range corners(rect) {
		if !planar.PolygonContains(poly, c) {
			return false
		}
	}
	if ringsCross(poly, rect) {
		return false
	}
	// A hole strictly inside the rectangle crosses no edge.
	for _, hole := range poly[1:] {
		if len(hole) > 0 && rect.Contains(hole[0]) {
			return false
		}
	}
	return true
}

// ringsCross reports whether any ring segment touches an edge of rect.
func ringsCross(poly orb.Polygon, rect orb.Bound) bool {
	cs := corners(rect)
	for _, ring := range poly {
		for i := 0; i+1 < len(ring); i++ {
			a, b := ring[i], ring[i+1]
			for j := range cs {
				if segmentsIntersect(a, b, cs[j], cs[(j+1)%4]) {
					return true
				}
			}
		}
	}
	return false
}

// polygonsIntersect reports whether two polygons share a point.
func polygonsIntersect(p, q orb.Polygon) bool {
	if !p.Bound().Intersects(q.Bound()) {
		return false
	}
	if len(q[0]) > 0 && planar.PolygonContains(p, q[0][0]) {
		return true
	}
	if len(p[0]) > 0 && planar.PolygonContains(q, p[0][0]) {
		return true
	}
	for _, pr := range p {
		for i := 0; i+1 < len(pr); i++ {
			for _, qr := range q {
				for j := 0; j+1 < len(qr); j++ {
					if segmentsIntersect(pr[i], pr[i+1], qr[j], qr[j+1]) {
						return true
					}
				}
			}
		}
	}
	return false
}

func corners(b orb.Bound) [4]orb.Point {
	return [4]orb.Point{
		b.Min,
		{b.Max[0], b.Min[1]},
		b.Max,
		{b.Min[0], b.Max[1]},
	}
}

// segmentsIntersect reports whether the closed segments ab and cd share a
// point.
func segmentsIntersect(a, b, c, d orb.Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(a, c, b):
		return true
	case o2 == 0 && onSegment(a, d, b):
		return true
	case o3 == 0 && onSegment(c, a, d):
		return true
	case o4 == 0 && onSegment(c, b, d):
		return true
	}
	return false
}

func orientation(a, b, c orb.Point) int {
	v := (b[1]-a[1])*(c[0]-b[0]) - (b[0]-a[0])*(c[1]-b[1])
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether q lies in the bounding box of pr, given that
// the three points are collinear.
func onSegment(p, q, r orb.Point) bool {
	return q[0] <= max(p[0], r[0]) && q[0] >= min(p[0], r[0]) &&
		q[1] <= max(p[1], r[1]) && q[1] >= min(p[1], r[1])
}
