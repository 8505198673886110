package store

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/zspatial/space"
)

type stubObject struct{ id int64 }

func (o *stubObject) ID() int64                                { return o.id }
func (o *stubObject) ArbitraryPoint(_ *space.Space, _ []uint64) {}
func (o *stubObject) MaxZ() int                                { return 1 }
func (o *stubObject) Compare(_ *space.Region) space.Relation    { return space.Overlaps }
func (o *stubObject) ContainedBy(_ *space.Region) bool          { return true }
func (o *stubObject) ContainedBySpace(_ *space.Space) bool      { return true }
func (o *stubObject) Equal(other space.Object) bool             { return other.ID() == o.id }
func (o *stubObject) Clone() space.Object                       { c := *o; return &c }

func rec(z space.ZValue, id int64) Record {
	return Record{Key: Key{Z: z, ID: id}, Object: &stubObject{id: id}}
}

type storeFactory struct {
	name string
	new  func(optFns ...func(o *Options)) Store
}

var factories = []storeFactory{
	{"tree", func(optFns ...func(o *Options)) Store { return NewTreeStore(optFns...) }},
	{"array", func(optFns ...func(o *Options)) Store { return NewArrayStore(optFns...) }},
}

func forEachStore(t *testing.T, fn func(t *testing.T, newStore func(optFns ...func(o *Options)) Store)) {
	for _, f := range factories {
		t.Run(f.name, func(t *testing.T) { fn(t, f.new) })
	}
}

func keysOf(t *testing.T, c Cursor, forward bool) []Key {
	t.Helper()
	var keys []Key
	for {
		var (
			r   Record
			ok  bool
			err error
		)
		if forward {
			r, ok, err = c.Next()
		} else {
			r, ok, err = c.Previous()
		}
		require.NoError(t, err)
		if !ok {
			return keys
		}
		keys = append(keys, r.Key)
	}
}

func TestKey_Order(t *testing.T) {
	a := Key{Z: space.Z(0, 1), ID: 5}
	b := Key{Z: space.Z(0, 1), ID: 6}
	c := Key{Z: space.Z(0x8000000000000000, 1), ID: 0}

	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, MinKey.Less(Key{}))
	assert.True(t, c.Less(MaxKey))
	assert.Equal(t, "z(0/1)#5", a.String())
}

func TestRecord_Clone(t *testing.T) {
	r := rec(space.Z(0, 2), 9)
	c := r.Clone()
	assert.Equal(t, r.Key, c.Key)
	assert.NotSame(t, r.Object, c.Object)
	assert.True(t, r.Object.Equal(c.Object))
}

func TestStore_OrderedScan(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore func(optFns ...func(o *Options)) Store) {
		s := newStore()
		rng := rand.New(rand.NewSource(1))
		want := make([]Key, 0, 500)
		for len(want) < 500 {
			r := rec(space.Z(rng.Uint64(), rng.Intn(10)), rng.Int63n(50))
			if err := s.Add(r); err != nil {
				require.ErrorIs(t, err, ErrDuplicateKey)
				continue
			}
			want = append(want, r.Key)
		}
		slices.SortFunc(want, Key.Compare)
		require.Equal(t, 500, s.Len())

		c, err := s.Cursor()
		require.NoError(t, err)
		defer c.Close()
		assert.Equal(t, want, keysOf(t, c, true))

		// After EOF the cursor can walk back over everything.
		got := keysOf(t, c, false)
		slices.Reverse(got)
		assert.Equal(t, want, got)
	})
}

func TestCursor_GoTo(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore func(optFns ...func(o *Options)) Store) {
		s := newStore()
		z1 := space.Z(0x4000000000000000, 2)
		z2 := space.Z(0x8000000000000000, 2)
		for _, r := range []Record{rec(z1, 1), rec(z1, 3), rec(z2, 2)} {
			require.NoError(t, s.Add(r))
		}
		c, err := s.Cursor()
		require.NoError(t, err)

		// Next returns the first record >= the target.
		require.NoError(t, c.GoTo(Key{Z: z1, ID: 2}))
		r, ok, err := c.Next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Key{Z: z1, ID: 3}, r.Key)

		// Exact hits are included both ways.
		require.NoError(t, c.GoTo(Key{Z: z1, ID: 3}))
		r, ok, _ = c.Next()
		require.True(t, ok)
		assert.Equal(t, Key{Z: z1, ID: 3}, r.Key)
		require.NoError(t, c.GoTo(Key{Z: z1, ID: 3}))
		r, ok, _ = c.Previous()
		require.True(t, ok)
		assert.Equal(t, Key{Z: z1, ID: 3}, r.Key)

		// Previous returns the last record <= the target.
		require.NoError(t, c.GoTo(Key{Z: z2, ID: 0}))
		r, ok, _ = c.Previous()
		require.True(t, ok)
		assert.Equal(t, Key{Z: z1, ID: 3}, r.Key)
		r, ok, _ = c.Previous()
		require.True(t, ok)
		assert.Equal(t, Key{Z: z1, ID: 1}, r.Key)
		_, ok, _ = c.Previous()
		assert.False(t, ok)

		// Direction changes move relative to the last record returned.
		require.NoError(t, c.GoTo(MinKey))
		r, _, _ = c.Next()
		r, _, _ = c.Next()
		assert.Equal(t, Key{Z: z1, ID: 3}, r.Key)
		r, ok, _ = c.Previous()
		require.True(t, ok)
		assert.Equal(t, Key{Z: z1, ID: 1}, r.Key)

		require.NoError(t, c.GoTo(Key{Z: space.Z(0xC000000000000000, 2)}))
		_, ok, _ = c.Next()
		assert.False(t, ok)
	})
}

func TestStore_Duplicates(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore func(optFns ...func(o *Options)) Store) {
		s := newStore()
		require.NoError(t, s.Add(rec(space.Z(0, 3), 1)))
		assert.ErrorIs(t, s.Add(rec(space.Z(0, 3), 1)), ErrDuplicateKey)
		require.NoError(t, s.Add(rec(space.Z(0, 3), 2)))

		o := newStore(func(o *Options) { o.Overwrite = true })
		require.NoError(t, o.Add(rec(space.Z(0, 3), 1)))
		replacement := Record{Key: Key{Z: space.Z(0, 3), ID: 1}, Object: &stubObject{id: 100}}
		require.NoError(t, o.Add(replacement))
		assert.Equal(t, 1, o.Len())

		c, _ := o.Cursor()
		r, ok, _ := c.Next()
		require.True(t, ok)
		assert.Equal(t, int64(100), r.Object.ID())
	})
}

func TestStore_Remove(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore func(optFns ...func(o *Options)) Store) {
		s := newStore()
		z := space.Z(0xA000000000000000, 3)
		for id := int64(0); id < 4; id++ {
			require.NoError(t, s.Add(rec(z, id)))
		}
		require.NoError(t, s.Add(rec(z.Parent(), 2)))

		removed, err := s.Remove(z, func(r Record) bool { return r.ID == 2 })
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, 4, s.Len())

		removed, err = s.Remove(z, func(r Record) bool { return r.ID == 2 })
		require.NoError(t, err)
		assert.False(t, removed)

		// A nil predicate removes one record.
		removed, _ = s.Remove(z, nil)
		assert.True(t, removed)
		assert.Equal(t, 3, s.Len())

		removed, _ = s.Remove(space.Z(0, 5), nil)
		assert.False(t, removed)
	})
}

func TestCursor_DeleteCurrent(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore func(optFns ...func(o *Options)) Store) {
		s := newStore()
		for id := int64(0); id < 6; id++ {
			require.NoError(t, s.Add(rec(space.Z(0, 1), id)))
		}
		c, _ := s.Cursor()
		assert.ErrorIs(t, c.DeleteCurrent(), ErrNoCurrent)

		// Delete every even id while scanning.
		for {
			r, ok, err := c.Next()
			require.NoError(t, err)
			if !ok {
				break
			}
			if r.ID%2 == 0 {
				require.NoError(t, c.DeleteCurrent())
				assert.ErrorIs(t, c.DeleteCurrent(), ErrNoCurrent)
			}
		}
		require.NoError(t, c.GoTo(MinKey))
		assert.Equal(t, []Key{{Z: space.Z(0, 1), ID: 1}, {Z: space.Z(0, 1), ID: 3}, {Z: space.Z(0, 1), ID: 5}}, keysOf(t, c, true))

		require.NoError(t, c.Close())
		_, _, err := c.Next()
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, c.GoTo(MinKey), ErrClosed)
	})
}

func TestStore_ConcurrentReaders(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore func(optFns ...func(o *Options)) Store) {
		s := newStore()
		for id := int64(0); id < 200; id++ {
			require.NoError(t, s.Add(rec(space.Z(uint64(id)<<56, 8), id)))
		}

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c, _ := s.Cursor()
				n := 0
				for {
					_, ok, err := c.Next()
					if err != nil || !ok {
						break
					}
					n++
				}
				assert.Equal(t, 200, n)
			}()
		}
		wg.Wait()
	})
}

func TestNewArrayStoreFrom(t *testing.T) {
	recs := []Record{rec(space.Z(0x8000000000000000, 1), 1), rec(space.Z(0, 1), 2), rec(space.Z(0, 0), 3)}
	s, err := NewArrayStoreFrom(recs)
	require.NoError(t, err)
	c, _ := s.Cursor()
	assert.Equal(t, []Key{{space.Z(0, 0), 3}, {space.Z(0, 1), 2}, {space.Z(0x8000000000000000, 1), 1}}, keysOf(t, c, true))

	_, err = NewArrayStoreFrom([]Record{rec(space.Z(0, 1), 1), rec(space.Z(0, 1), 1)})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func BenchmarkTreeStore_Add(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	for _, degree := range []int{8, 32, 128} {
		b.Run(fmt.Sprintf("degree=%d", degree), func(b *testing.B) {
			s := NewTreeStore(func(o *Options) { o.Degree = degree; o.Overwrite = true })
			b.ReportAllocs()
			for b.Loop() {
				_ = s.Add(rec(space.Z(rng.Uint64(), 40), rng.Int63()))
			}
		})
	}
}
