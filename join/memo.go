package join

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/zspatial/space"
)

// ancestorMemo remembers, per z-value length, the last ancestor probed and
// whether the store held a record for it. The store must not change while
// the join runs.
type ancestorMemo struct {
	z      [space.MaxZBits + 1]space.ZValue
	valid  *bitset.BitSet
	exists *bitset.BitSet
}

func newAncestorMemo() *ancestorMemo {
	return &ancestorMemo{
		valid:  bitset.New(space.MaxZBits + 1),
		exists: bitset.New(space.MaxZBits + 1),
	}
}

func (m *ancestorMemo) lookup(z space.ZValue) (exists, ok bool) {
	l := uint(z.Length())
	if !m.valid.Test(l) || m.z[l] != z {
		return false, false
	}
	return m.exists.Test(l), true
}

func (m *ancestorMemo) store(z space.ZValue, exists bool) {
	l := uint(z.Length())
	m.z[l] = z
	m.valid.Set(l)
	m.exists.SetTo(l, exists)
}
