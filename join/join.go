package join

import (
	"context"
	"errors"

	"github.com/hupe1980/zspatial/space"
	"github.com/hupe1980/zspatial/store"
)

// ErrSpaceMismatch is returned when the inputs of a join use different
// spaces.
var ErrSpaceMismatch = errors.New("join: inputs use different spaces")

// Input is one side of a join. *index.Index implements Input.
type Input interface {
	Space() *space.Space

	// Cursor opens an independent cursor over the input's records.
	Cursor() (store.Cursor, error)

	// SingleCell reports whether every record is a whole grid cell. Such an
	// input has no ancestors to search for during skip-ahead.
	SingleCell() bool

	// Stable reports whether records stay valid after the cursor moves.
	Stable() bool
}

// Filter decides whether a candidate pair is part of the result.
type Filter func(left, right space.Object) bool

// Duplicates selects how repeated pairs are handled.
type Duplicates int

const (
	// Exclude reports every pair once. The join remembers every emitted
	// pair, so memory grows with the number of distinct results.
	Exclude Duplicates = iota

	// Include reports a pair once per overlapping pair of regions.
	Include
)

func (d Duplicates) String() string {
	switch d {
	case Exclude:
		return "exclude"
	case Include:
		return "include"
	default:
		return "unknown"
	}
}

// Options configures a join.
type Options struct {
	// Filter removes false positives. Nil accepts every candidate.
	Filter Filter

	// Duplicates selects duplicate handling. Default Exclude.
	Duplicates Duplicates

	// BatchSize is the number of pairs the iterator computes ahead.
	BatchSize int
}

// DefaultOptions are the options New starts from.
var DefaultOptions = Options{
	Duplicates: Exclude,
	BatchSize:  256,
}

// Pair is one result: an object from the left input and one from the right
// input whose regions overlap.
type Pair struct {
	Left  space.Object
	Right space.Object
}

// Join is a configured join between two inputs. It holds no cursor state;
// every call to Iter runs the join from the start.
type Join struct {
	left, right Input
	opts        Options
}

// New prepares a join of left and right.
func New(left, right Input, optFns ...func(o *Options)) (*Join, error) {
	if !left.Space().Equal(right.Space()) {
		return nil, ErrSpaceMismatch
	}

	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = DefaultOptions.BatchSize
	}

	return &Join{left: left, right: right, opts: opts}, nil
}

// Iter starts the join. Errors opening the cursors are reported by the
// iterator's Err.
func (j *Join) Iter(ctx context.Context) *Iterator {
	it := &Iterator{
		ctx:       ctx,
		batchSize: j.opts.BatchSize,
	}
	it.engine, it.err = newEngine(j.left, j.right, j.opts, &it.stats)
	if it.err != nil {
		it.done = true
	}
	return it
}

// Collect runs the join to completion and returns all pairs.
func (j *Join) Collect(ctx context.Context) ([]Pair, Stats, error) {
	it := j.Iter(ctx)
	defer it.Close()

	var pairs []Pair
	for it.Next() {
		pairs = append(pairs, it.Pair())
	}
	return pairs, it.Stats(), it.Err()
}
