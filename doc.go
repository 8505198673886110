// Package zspatial provides an embedded spatial index and spatial join for Go.
//
// Objects are approximated by a bounded number of z-values, the pre-order
// positions of regions in a recursive bisection of a grid. Two sets of
// z-values are joined by a single merge over both sorted sets, which finds
// every pair of overlapping regions without comparing all pairs.
//
// # Quick Start
//
//	s, _ := space.New([]int{10, 10}, func(o *space.Options) {
//	    o.Lo = []float64{0, 0}
//	    o.Hi = []float64{1000, 1000}
//	})
//	idx, _ := zspatial.New(s)
//	_ = idx.Add(ctx, geom.NewPoint(1, 120, 340))
//
//	query := geom.NewBox(-1, []float64{100, 300}, []float64{200, 400})
//	hits, _ := idx.Search(ctx, query, func(o *join.Options) {
//	    o.Filter = geom.Intersecting
//	})
//
// # Joins
//
// Join pairs the objects of two indexes over the same space:
//
//	pairs, _ := parcels.Join(ctx, roads, func(o *join.Options) {
//	    o.Filter = orbgeom.Intersecting
//	})
//
// Without a filter, pairs are candidates: their regions overlap but the
// objects may not. JoinMany runs independent joins concurrently.
//
// # Snapshots
//
// An index is saved to and loaded from any blobstore.BlobStore, such as a
// local directory, S3 or MinIO:
//
//	bs := blobstore.NewLocalStore("./data")
//	_, _ = idx.Save(ctx, bs, "parcels.zsp")
//	idx, _ = zspatial.Load(ctx, bs, "parcels.zsp")
//
// # Packages
//
//   - space: grid spaces, z-values and regions
//   - decompose: object approximation
//   - store: ordered record stores
//   - index: objects stored under their z-values
//   - join: the spatial join
//   - geom, geom/orbgeom: geometry types
//   - snapshot, blobstore: persistence
//   - resource: memory, concurrency and IO limits
//   - prommetrics: Prometheus metrics
package zspatial
