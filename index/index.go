// Package index stores spatial objects under their z-value decompositions.
//
// Every object is decomposed into at most MaxZ regions and one record per
// region is added to an ordered store. Two indexes over the same space can
// then be joined with package join.
package index

import (
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/zspatial/decompose"
	"github.com/hupe1980/zspatial/space"
	"github.com/hupe1980/zspatial/store"
)

// ErrInvalidID is returned for objects with a negative id.
var ErrInvalidID = errors.New("index: object id must be non-negative")

// Options configures an Index.
type Options struct {
	// Store holds the records. If nil, a TreeStore with default options is
	// created.
	Store store.Store

	// MaxZ is the decomposition budget for objects whose MaxZ returns zero
	// or less.
	MaxZ int
}

// DefaultOptions are the options New starts from.
var DefaultOptions = Options{
	MaxZ: 8,
}

// Index is a spatial index over one Space. It is safe for concurrent use if
// its store is.
type Index struct {
	space *space.Space
	store store.Store
	maxZ  int

	decomposers sync.Pool

	objects  atomic.Int64
	nonPoint atomic.Int64
}

// New creates an Index over s.
func New(s *space.Space, optFns ...func(o *Options)) *Index {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Store == nil {
		opts.Store = store.NewTreeStore()
	}
	if opts.MaxZ < 1 {
		opts.MaxZ = DefaultOptions.MaxZ
	}

	idx := &Index{
		space: s,
		store: opts.Store,
		maxZ:  opts.MaxZ,
	}
	idx.decomposers.New = func() any { return decompose.New(s) }
	return idx
}

// Space returns the index's space.
func (idx *Index) Space() *space.Space { return idx.space }

// Store returns the underlying record store.
func (idx *Index) Store() store.Store { return idx.store }

// MaxZ returns the default decomposition budget.
func (idx *Index) MaxZ() int { return idx.maxZ }

// Decompose returns the z-values obj is indexed under.
func (idx *Index) Decompose(obj space.Object) ([]space.ZValue, error) {
	d := idx.decomposers.Get().(*decompose.Decomposer)
	defer idx.decomposers.Put(d)

	budget := obj.MaxZ()
	if budget < 1 {
		budget = idx.maxZ
	}
	return d.Decompose(obj, budget)
}

// Add decomposes obj and stores one record per z-value. On failure no
// record of obj remains in the store.
func (idx *Index) Add(obj space.Object) error {
	_, err := idx.Insert(obj)
	return err
}

// Insert is like Add and also returns the number of records stored.
func (idx *Index) Insert(obj space.Object) (int, error) {
	if obj.ID() < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidID, obj.ID())
	}
	zs, err := idx.Decompose(obj)
	if err != nil {
		return 0, err
	}

	for i, z := range zs {
		if err := idx.store.Add(store.Record{Key: store.Key{Z: z, ID: obj.ID()}, Object: obj}); err != nil {
			idx.rollback(obj, zs[:i])
			return 0, fmt.Errorf("index: add object %d at %s: %w", obj.ID(), z, err)
		}
	}

	idx.objects.Add(1)
	if !idx.isPoint(zs) {
		idx.nonPoint.Add(1)
	}
	return len(zs), nil
}

func (idx *Index) rollback(obj space.Object, zs []space.ZValue) {
	for _, z := range zs {
		_, _ = idx.store.Remove(z, func(r store.Record) bool { return r.ID == obj.ID() })
	}
}

// Remove deletes the records of the stored object geometrically equal to
// obj and carrying its id. It reports whether anything was removed.
func (idx *Index) Remove(obj space.Object) (bool, error) {
	return idx.RemoveFunc(obj, func(r store.Record) bool { return r.Object.Equal(obj) })
}

// RemoveFunc is like Remove but lets pred decide which stored object with
// obj's id to delete. Every record of that object is removed, or none.
//
// The stored object is found through the cell of an arbitrary point of obj,
// since every cover of the object contains that cell. Its records are then
// taken from its own decomposition, so obj's budget does not matter.
func (idx *Index) RemoveFunc(obj space.Object, pred func(store.Record) bool) (bool, error) {
	if !obj.ContainedBySpace(idx.space) {
		return false, fmt.Errorf("object %d: %w", obj.ID(), space.ErrOutsideSpace)
	}
	match := func(r store.Record) bool {
		return r.ID == obj.ID() && (pred == nil || pred(r))
	}

	stored, ok, err := idx.findStored(obj, match)
	if err != nil || !ok {
		return false, err
	}
	zs, err := idx.Decompose(stored.Object)
	if err != nil {
		return false, err
	}
	same := func(r store.Record) bool { return r.ID == stored.ID }

	for i, z := range zs {
		ok, err := idx.store.Remove(z, same)
		if err == nil && !ok {
			err = fmt.Errorf("index: object %d has no record at %s", obj.ID(), z)
		}
		if err != nil {
			idx.restore(stored.Object, zs[:i])
			return false, fmt.Errorf("index: remove object %d at %s: %w", obj.ID(), z, err)
		}
	}

	idx.objects.Add(-1)
	if !idx.isPoint(zs) {
		idx.nonPoint.Add(-1)
	}
	return true, nil
}

// findStored probes the ancestors of obj's arbitrary cell, innermost first,
// for a record with obj's id accepted by match.
func (idx *Index) findStored(obj space.Object, match func(store.Record) bool) (store.Record, bool, error) {
	point := make([]uint64, idx.space.Dimensions())
	obj.ArbitraryPoint(idx.space, point)
	cell := idx.space.Shuffle(point, idx.space.TotalBits())

	c, err := idx.store.Cursor()
	if err != nil {
		return store.Record{}, false, err
	}
	defer c.Close()

	for l := cell.Length(); l >= 0; l-- {
		key := store.Key{Z: cell.Ancestor(l), ID: obj.ID()}
		if err := c.GoTo(key); err != nil {
			return store.Record{}, false, err
		}
		r, ok, err := c.Next()
		if err != nil {
			return store.Record{}, false, err
		}
		if ok && r.Key == key && match(r) {
			return r, true, nil
		}
	}
	return store.Record{}, false, nil
}

// restore re-adds records taken out by a failed removal.
func (idx *Index) restore(obj space.Object, zs []space.ZValue) {
	for _, z := range zs {
		_ = idx.store.Add(store.Record{Key: store.Key{Z: z, ID: obj.ID()}, Object: obj})
	}
}

// AddRecords adds precomputed records, as read back from a snapshot. The
// z-values are trusted; nothing is decomposed.
func (idx *Index) AddRecords(recs []store.Record) error {
	perObject := make(map[int64][]space.ZValue)
	for _, r := range recs {
		if r.ID < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidID, r.ID)
		}
		if err := idx.store.Add(r); err != nil {
			return fmt.Errorf("index: add record %s: %w", r.Key, err)
		}
		perObject[r.ID] = append(perObject[r.ID], r.Z)
	}
	for _, zs := range perObject {
		idx.objects.Add(1)
		if !idx.isPoint(zs) {
			idx.nonPoint.Add(1)
		}
	}
	return nil
}

// isPoint reports whether a decomposition is a single grid cell.
func (idx *Index) isPoint(zs []space.ZValue) bool {
	return len(zs) == 1 && zs[0].Length() == idx.space.TotalBits()
}

// SingleCell reports whether every stored object occupies one grid cell.
// Joins skip the ancestor search on such inputs.
func (idx *Index) SingleCell() bool { return idx.nonPoint.Load() == 0 }

// Stable reports whether records read from the store stay valid.
func (idx *Index) Stable() bool { return idx.store.Stable() }

// Cursor opens a cursor over the index records.
func (idx *Index) Cursor() (store.Cursor, error) { return idx.store.Cursor() }

// Len returns the number of indexed objects.
func (idx *Index) Len() int { return int(idx.objects.Load()) }

// RecordCount returns the number of stored records.
func (idx *Index) RecordCount() int { return idx.store.Len() }

// Records iterates over all records in key order.
func (idx *Index) Records() iter.Seq2[store.Record, error] {
	return func(yield func(store.Record, error) bool) {
		c, err := idx.store.Cursor()
		if err != nil {
			yield(store.Record{}, err)
			return
		}
		defer c.Close()

		for {
			r, ok, err := c.Next()
			if err != nil {
				yield(store.Record{}, err)
				return
			}
			if !ok {
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// Objects iterates over the distinct objects in the index, each once, in
// the order of their first record.
func (idx *Index) Objects() iter.Seq2[space.Object, error] {
	return func(yield func(space.Object, error) bool) {
		seen := roaring64.New()
		for r, err := range idx.Records() {
			if err != nil {
				yield(nil, err)
				return
			}
			if !seen.CheckedAdd(uint64(r.ID)) {
				continue
			}
			if !yield(r.Object, nil) {
				return
			}
		}
	}
}
