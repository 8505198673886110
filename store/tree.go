package store

import (
	"sync"

	"github.com/google/btree"

	"github.com/hupe1980/zspatial/space"
)

// TreeStore is a Store backed by an in-memory B-tree.
type TreeStore struct {
	mu        sync.RWMutex
	tree      *btree.BTreeG[Record]
	overwrite bool
}

var _ Store = (*TreeStore)(nil)

func recordLess(a, b Record) bool { return a.Key.Less(b.Key) }

// NewTreeStore creates an empty TreeStore.
func NewTreeStore(optFns ...func(o *Options)) *TreeStore {
	opts := applyOptions(optFns)
	return &TreeStore{
		tree:      btree.NewG(opts.Degree, recordLess),
		overwrite: opts.Overwrite,
	}
}

// Add inserts rec.
func (s *TreeStore) Add(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.overwrite && s.tree.Has(rec) {
		return ErrDuplicateKey
	}
	s.tree.ReplaceOrInsert(rec)
	return nil
}

// Remove deletes the first record at z accepted by pred.
func (s *TreeStore) Remove(z space.ZValue, pred func(Record) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		victim Record
		found  bool
	)
	s.tree.AscendGreaterOrEqual(Record{Key: Key{Z: z, ID: MinKey.ID}}, func(r Record) bool {
		if r.Z != z {
			return false
		}
		if pred == nil || pred(r) {
			victim, found = r, true
			return false
		}
		return true
	})
	if found {
		s.tree.Delete(victim)
	}
	return found, nil
}

// Cursor opens a cursor over the tree.
func (s *TreeStore) Cursor() (Cursor, error) {
	return newCursor(s), nil
}

// Stable is true: the tree hands out the objects it was given.
func (s *TreeStore) Stable() bool { return true }

// Len returns the number of records.
func (s *TreeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

func (s *TreeStore) after(k Key, inclusive bool) (rec Record, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.tree.AscendGreaterOrEqual(Record{Key: k}, func(r Record) bool {
		if !inclusive && r.Key == k {
			return true
		}
		rec, ok = r, true
		return false
	})
	return rec, ok
}

func (s *TreeStore) before(k Key, inclusive bool) (rec Record, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.tree.DescendLessOrEqual(Record{Key: k}, func(r Record) bool {
		if !inclusive && r.Key == k {
			return true
		}
		rec, ok = r, true
		return false
	})
	return rec, ok
}

func (s *TreeStore) delete(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tree.Delete(Record{Key: k})
	return ok
}
