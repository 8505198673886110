// Package orbgeom indexes github.com/paulmach/orb geometries in
// two-dimensional spaces.
//
// Bound wraps an orb.Bound and behaves like a geom.Box. Polygon wraps an
// orb.Polygon (holes included) and classifies regions against its exact
// outline, so its decomposition hugs the shape instead of its bounding box.
//
//	r := codec.NewRegistry()
//	_ = geom.Register(r)
//	_ = orbgeom.Register(r)
package orbgeom
