package zspatial

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/zspatial/blobstore"
	"github.com/hupe1980/zspatial/codec"
	"github.com/hupe1980/zspatial/geom"
	"github.com/hupe1980/zspatial/geom/orbgeom"
	"github.com/hupe1980/zspatial/index"
	"github.com/hupe1980/zspatial/join"
	"github.com/hupe1980/zspatial/snapshot"
	"github.com/hupe1980/zspatial/space"
)

// Index is a spatial index with logging, metrics and snapshots. It is safe
// for concurrent use.
type Index struct {
	idx    *index.Index
	opts   options
	closed atomic.Bool
}

// New creates an empty Index over s.
func New(s *space.Space, optFns ...Option) (*Index, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil space", ErrInvalidSpace)
	}
	opts, err := resolveOptions(optFns)
	if err != nil {
		return nil, err
	}

	idx := index.New(s, func(o *index.Options) {
		o.Store = opts.newStore()
		if opts.maxZ > 0 {
			o.MaxZ = opts.maxZ
		}
	})
	return &Index{idx: idx, opts: opts}, nil
}

func resolveOptions(optFns []Option) (options, error) {
	opts := applyOptions(optFns)
	if opts.registry == nil {
		r, err := DefaultRegistry()
		if err != nil {
			return opts, err
		}
		opts.registry = r
	}
	return opts, nil
}

// DefaultRegistry returns a registry that knows the geom and orbgeom types.
func DefaultRegistry() (*codec.Registry, error) {
	r := codec.NewRegistry()
	if err := geom.Register(r); err != nil {
		return nil, err
	}
	if err := orbgeom.Register(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Space returns the index's space.
func (x *Index) Space() *space.Space { return x.idx.Space() }

// Len returns the number of indexed objects.
func (x *Index) Len() int { return x.idx.Len() }

// RecordCount returns the number of z-value records.
func (x *Index) RecordCount() int { return x.idx.RecordCount() }

// Unwrap returns the underlying index. It implements join.Input.
func (x *Index) Unwrap() *index.Index { return x.idx }

// Add indexes obj. Adding an object with the same id and decomposition
// twice fails with ErrDuplicate.
func (x *Index) Add(ctx context.Context, obj space.Object) error {
	if x.closed.Load() {
		return ErrClosed
	}
	start := time.Now()

	records, err := x.idx.Insert(obj)
	err = objectError("add", obj.ID(), err)

	x.opts.metricsCollector.RecordAdd(time.Since(start), err)
	x.opts.logger.LogAdd(ctx, obj.ID(), records, err)
	return err
}

// Remove deletes the object with obj's id that is geometrically equal to
// obj. It reports whether an object was removed.
func (x *Index) Remove(ctx context.Context, obj space.Object) (bool, error) {
	if x.closed.Load() {
		return false, ErrClosed
	}
	start := time.Now()

	removed, err := x.idx.Remove(obj)
	err = objectError("remove", obj.ID(), err)

	x.opts.metricsCollector.RecordRemove(time.Since(start), err)
	x.opts.logger.LogRemove(ctx, obj.ID(), removed, err)
	return removed, err
}

// Search returns the indexed objects whose regions overlap those of query.
// Without a filter in optFns the result may contain false positives. Like
// Join, the search holds a join slot of the resource controller.
func (x *Index) Search(ctx context.Context, query space.Object, optFns ...func(o *join.Options)) ([]space.Object, error) {
	if x.closed.Load() {
		return nil, ErrClosed
	}
	in, err := join.ObjectInput(x.Space(), query, x.idx.MaxZ())
	if err != nil {
		return nil, objectError("search", query.ID(), err)
	}

	rc := x.opts.resources
	if err := rc.AcquireJoin(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseJoin()

	pairs, err := x.run(ctx, in, x.idx, optFns)
	if err != nil {
		return nil, err
	}
	out := make([]space.Object, len(pairs))
	for i, p := range pairs {
		out[i] = p.Right
	}
	return out, nil
}

// Join returns the pairs of objects from x (left) and other (right) whose
// regions overlap. The join waits for a slot of the resource controller.
func (x *Index) Join(ctx context.Context, other *Index, optFns ...func(o *join.Options)) ([]join.Pair, error) {
	if x.closed.Load() || other.closed.Load() {
		return nil, ErrClosed
	}
	rc := x.opts.resources
	if err := rc.AcquireJoin(ctx); err != nil {
		return nil, err
	}
	defer rc.ReleaseJoin()

	return x.run(ctx, x.idx, other.idx, optFns)
}

func (x *Index) run(ctx context.Context, left, right join.Input, optFns []func(o *join.Options)) ([]join.Pair, error) {
	start := time.Now()

	j, err := join.New(left, right, optFns...)
	if err != nil {
		err = translateError(err)
		x.opts.metricsCollector.RecordJoin(join.Stats{}, time.Since(start), err)
		x.opts.logger.LogJoin(ctx, join.Stats{}, err)
		return nil, err
	}

	pairs, stats, err := j.Collect(ctx)
	x.opts.metricsCollector.RecordJoin(stats, time.Since(start), err)
	x.opts.logger.LogJoin(ctx, stats, err)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// JoinRequest is one join of JoinMany.
type JoinRequest struct {
	Left, Right *Index
	Options     []func(o *join.Options)
}

// JoinMany runs independent joins concurrently and returns their results
// in request order. At most GOMAXPROCS joins run at once, and each one
// also holds a join slot of its left index's resource controller. The first
// error cancels the remaining joins.
func JoinMany(ctx context.Context, reqs []JoinRequest) ([][]join.Pair, error) {
	results := make([][]join.Pair, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, req := range reqs {
		g.Go(func() error {
			pairs, err := req.Left.Join(ctx, req.Right, req.Options...)
			if err != nil {
				return fmt.Errorf("join %d: %w", i, err)
			}
			results[i] = pairs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Save writes a snapshot of the index to bs under name.
func (x *Index) Save(ctx context.Context, bs blobstore.BlobStore, name string) (snapshot.Info, error) {
	if x.closed.Load() {
		return snapshot.Info{}, ErrClosed
	}
	start := time.Now()

	info, err := snapshot.Save(ctx, bs, name, x.idx, x.snapshotOptions)

	x.opts.metricsCollector.RecordSnapshot("save", info.Size, time.Since(start), err)
	x.opts.logger.LogSnapshot(ctx, name, info.Size, err)
	return info, err
}

func (x *Index) snapshotOptions(o *snapshot.Options) {
	o.Codec = x.opts.codec
	o.Registry = x.opts.registry
	o.Compression = x.opts.compression
	o.Resources = x.opts.resources
}

// Load reads an index saved with Save. The space and decomposition budget
// come from the snapshot; optFns configure everything else.
func Load(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*Index, error) {
	opts, err := resolveOptions(optFns)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	idx, info, err := snapshot.Load(ctx, bs, name, func(o *snapshot.Options) {
		o.Registry = opts.registry
		o.Resources = opts.resources
		o.IndexOptions = append(o.IndexOptions, func(ixo *index.Options) {
			ixo.Store = opts.newStore()
		})
	})
	err = translateError(err)

	objects := 0
	if idx != nil {
		objects = idx.Len()
	}
	opts.metricsCollector.RecordSnapshot("load", info.Size, time.Since(start), err)
	opts.logger.LogLoad(ctx, name, objects, err)
	if err != nil {
		return nil, err
	}
	return &Index{idx: idx, opts: opts}, nil
}

// Close marks the index closed. Later operations fail with ErrClosed.
func (x *Index) Close() error {
	x.closed.Store(true)
	return nil
}
