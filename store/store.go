// Package store defines the ordered record store that spatial indexes are
// built on, together with two in-memory implementations.
//
// Records are ordered by (z-value, object id). The z-value order is a
// pre-order walk of the bisection tree, so a range scan visits a region
// before everything it contains.
package store

import (
	"cmp"
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/zspatial/space"
)

var (
	// ErrDuplicateKey is returned by Add when a record with the same key is
	// already stored and the store does not overwrite.
	ErrDuplicateKey = errors.New("store: duplicate key")

	// ErrNoCurrent is returned by Cursor.DeleteCurrent when the cursor has not
	// returned a record since it was positioned.
	ErrNoCurrent = errors.New("store: cursor has no current record")

	// ErrClosed is returned by operations on a closed cursor.
	ErrClosed = errors.New("store: cursor closed")
)

// Key orders index records: by z-value first, then by object id.
type Key struct {
	Z  space.ZValue
	ID int64
}

var (
	// MinKey sorts before every valid key.
	MinKey = Key{Z: 0, ID: math.MinInt64}

	// MaxKey sorts after every valid key.
	MaxKey = Key{Z: space.NoRegion, ID: math.MaxInt64}
)

// Compare returns -1, 0 or +1.
func (k Key) Compare(other Key) int {
	if c := cmp.Compare(k.Z, other.Z); c != 0 {
		return c
	}
	return cmp.Compare(k.ID, other.ID)
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool { return k.Compare(other) < 0 }

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Z, k.ID)
}

// Record is one z-value of one object.
type Record struct {
	Key
	Object space.Object
}

// Cloner is implemented by objects that can be copied. Records read from an
// unstable store are cloned before they are retained.
type Cloner interface {
	Clone() space.Object
}

// Clone returns a record whose object does not alias r's.
func (r Record) Clone() Record {
	if c, ok := r.Object.(Cloner); ok {
		r.Object = c.Clone()
	}
	return r
}

// Store is an ordered collection of records.
//
// Implementations must be safe for concurrent use: many cursors may read
// while writers add and remove records.
type Store interface {
	// Add inserts rec. It returns ErrDuplicateKey if the key exists, unless
	// the store overwrites.
	Add(rec Record) error

	// Remove deletes at most one record with z-value z for which pred
	// returns true. It reports whether a record was removed.
	Remove(z space.ZValue, pred func(Record) bool) (bool, error)

	// Cursor opens a cursor positioned before the first record.
	Cursor() (Cursor, error)

	// Stable reports whether returned objects stay valid after the cursor
	// moves. Callers must clone records from unstable stores before keeping
	// them.
	Stable() bool

	// Len returns the number of records.
	Len() int
}

// Cursor walks a Store in key order.
//
// After GoTo(k), Next returns the first record >= k and Previous the last
// record <= k. Afterwards both move relative to the last returned record.
// EOF in either direction is reported by ok == false.
type Cursor interface {
	GoTo(k Key) error
	Next() (rec Record, ok bool, err error)
	Previous() (rec Record, ok bool, err error)

	// DeleteCurrent removes the record most recently returned.
	DeleteCurrent() error

	Close() error
}

// Options configures the in-memory stores.
type Options struct {
	// Degree is the B-tree degree of a TreeStore.
	Degree int

	// Overwrite makes Add replace an existing record with the same key
	// instead of failing.
	Overwrite bool
}

// DefaultOptions are used when no option function changes them.
var DefaultOptions = Options{
	Degree: 32,
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Degree < 2 {
		opts.Degree = DefaultOptions.Degree
	}
	return opts
}
