// Package join finds all pairs of overlapping objects between two z-ordered
// inputs.
//
// The join is a merge over both inputs in z-value order. Every record is an
// interval [z, z.Hi()] on the z axis and two regions overlap exactly when
// their intervals intersect, so the merge keeps, per side, a nest of open
// intervals and emits a candidate pair whenever an interval closes while the
// other side has open intervals. Records that cannot overlap anything on the
// other side are skipped with a random access into the store instead of a
// forward scan.
//
// Candidates are a superset of the geometrically overlapping pairs; pass an
// exact predicate as Options.Filter to remove the false positives.
//
// Example:
//
//	j, err := join.New(left, right, func(o *join.Options) {
//		o.Filter = geom.Intersecting
//	})
//	if err != nil {
//		return err
//	}
//	it := j.Iter(ctx)
//	defer it.Close()
//	for it.Next() {
//		p := it.Pair()
//		fmt.Println(p.Left.ID(), p.Right.ID())
//	}
//	return it.Err()
package join
