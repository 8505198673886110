// Package geom provides points and axis-aligned boxes in application
// coordinates for spaces of any dimensionality.
//
// Classification against regions happens on the grid: a box covers every
// grid cell its application bounds touch, so the join reports a superset of
// the pairs that overlap exactly. Use Box.Intersects or Box.ContainsPoint as
// the join filter to get exact answers.
package geom
