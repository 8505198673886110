package join

import (
	"context"
	"iter"
)

// Iterator pulls pairs from a running join. It is not safe for concurrent
// use.
type Iterator struct {
	ctx       context.Context
	engine    *engine
	batchSize int

	buf   []Pair
	pos   int
	pair  Pair
	stats Stats
	err   error
	done  bool
}

// Next advances to the next pair. It returns false when the join is
// exhausted or failed; check Err afterwards.
func (it *Iterator) Next() bool {
	for it.pos >= len(it.buf) {
		if it.done {
			it.pair = Pair{}
			return false
		}
		it.fill()
	}
	it.pair = it.buf[it.pos]
	it.buf[it.pos] = Pair{}
	it.pos++
	return true
}

// fill runs the merge until a batch of pairs is ready or the join ends.
func (it *Iterator) fill() {
	e := it.engine
	e.out = it.buf[:0]
	it.pos = 0

	for len(e.out) < it.batchSize {
		if err := it.ctx.Err(); err != nil {
			it.fail(err)
			break
		}
		more, err := e.step()
		if err != nil {
			it.fail(err)
			break
		}
		if !more {
			it.finish()
			break
		}
	}
	it.buf = e.out
	e.out = nil
}

func (it *Iterator) fail(err error) {
	it.err = err
	it.finish()
}

func (it *Iterator) finish() {
	if it.done {
		return
	}
	it.done = true
	if cerr := it.engine.close(); cerr != nil && it.err == nil {
		it.err = cerr
	}
}

// Pair returns the current pair.
func (it *Iterator) Pair() Pair { return it.pair }

// Err returns the error that stopped the iterator, if any.
func (it *Iterator) Err() error { return it.err }

// Stats returns the counters accumulated so far.
func (it *Iterator) Stats() Stats { return it.stats }

// Close stops the join and releases its cursors. Pairs computed but not yet
// returned are dropped.
func (it *Iterator) Close() error {
	if it.done {
		return nil
	}
	it.done = true
	it.buf, it.pos = nil, 0
	return it.engine.close()
}

// All adapts the iterator to a range-over-func sequence. A failure is
// yielded once as the last element. The iterator is closed when the loop
// ends.
func (it *Iterator) All() iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.Pair(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(Pair{}, err)
		}
	}
}
