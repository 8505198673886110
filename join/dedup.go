package join

import "github.com/RoaringBitmap/roaring/v2/roaring64"

// seenPairs records emitted (left, right) id pairs.
type seenPairs struct {
	byLeft map[int64]*roaring64.Bitmap
}

func newSeenPairs() *seenPairs {
	return &seenPairs{byLeft: make(map[int64]*roaring64.Bitmap)}
}

// add records the pair and reports whether it was new.
func (s *seenPairs) add(left, right int64) bool {
	rights, ok := s.byLeft[left]
	if !ok {
		rights = roaring64.New()
		s.byLeft[left] = rights
	}
	return rights.CheckedAdd(uint64(right))
}
