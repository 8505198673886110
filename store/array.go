package store

import (
	"slices"
	"sync"

	"github.com/hupe1980/zspatial/space"
)

// ArrayStore is a Store backed by a sorted slice. Lookups are binary
// searches; inserts and deletes shift the tail. It suits small or bulk-built
// inputs such as the decomposition of a single query object.
type ArrayStore struct {
	mu        sync.RWMutex
	recs      []Record
	overwrite bool
}

var _ Store = (*ArrayStore)(nil)

// NewArrayStore creates an empty ArrayStore.
func NewArrayStore(optFns ...func(o *Options)) *ArrayStore {
	opts := applyOptions(optFns)
	return &ArrayStore{overwrite: opts.Overwrite}
}

// NewArrayStoreFrom builds an ArrayStore from recs in one sort. recs is
// taken over by the store.
func NewArrayStoreFrom(recs []Record, optFns ...func(o *Options)) (*ArrayStore, error) {
	s := NewArrayStore(optFns...)
	slices.SortStableFunc(recs, func(a, b Record) int { return a.Key.Compare(b.Key) })

	out := recs[:0]
	for _, r := range recs {
		if len(out) > 0 && out[len(out)-1].Key == r.Key {
			if !s.overwrite {
				return nil, ErrDuplicateKey
			}
			out[len(out)-1] = r
			continue
		}
		out = append(out, r)
	}
	s.recs = out
	return s, nil
}

func (s *ArrayStore) search(k Key) (int, bool) {
	return slices.BinarySearchFunc(s.recs, k, func(r Record, k Key) int { return r.Key.Compare(k) })
}

// Add inserts rec at its sorted position.
func (s *ArrayStore) Add(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := s.search(rec.Key)
	if found {
		if !s.overwrite {
			return ErrDuplicateKey
		}
		s.recs[i] = rec
		return nil
	}
	s.recs = slices.Insert(s.recs, i, rec)
	return nil
}

// Remove deletes the first record at z accepted by pred.
func (s *ArrayStore) Remove(z space.ZValue, pred func(Record) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, _ := s.search(Key{Z: z, ID: MinKey.ID})
	for ; i < len(s.recs) && s.recs[i].Z == z; i++ {
		if pred == nil || pred(s.recs[i]) {
			s.recs = slices.Delete(s.recs, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

// Cursor opens a cursor over the slice.
func (s *ArrayStore) Cursor() (Cursor, error) {
	return newCursor(s), nil
}

// Stable is true.
func (s *ArrayStore) Stable() bool { return true }

// Len returns the number of records.
func (s *ArrayStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

func (s *ArrayStore) after(k Key, inclusive bool) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, found := s.search(k)
	if found && !inclusive {
		i++
	}
	if i >= len(s.recs) {
		return Record{}, false
	}
	return s.recs[i], true
}

func (s *ArrayStore) before(k Key, inclusive bool) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, found := s.search(k)
	// i is the first index >= k.
	if found && inclusive {
		return s.recs[i], true
	}
	if i == 0 {
		return Record{}, false
	}
	return s.recs[i-1], true
}

func (s *ArrayStore) delete(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := s.search(k)
	if !found {
		return false
	}
	s.recs = slices.Delete(s.recs, i, i+1)
	return true
}
