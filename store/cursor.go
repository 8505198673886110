package store

// seeker is the lookup primitive both in-memory stores provide.
type seeker interface {
	// after returns the first record > k, or >= k if inclusive.
	after(k Key, inclusive bool) (Record, bool)
	// before returns the last record < k, or <= k if inclusive.
	before(k Key, inclusive bool) (Record, bool)
	// delete removes the record with key k.
	delete(k Key) bool
}

// cursor keeps its position as a key rather than a pointer into the store,
// so it survives concurrent inserts and deletes.
type cursor struct {
	s         seeker
	pos       Key
	inclusive bool
	current   Key
	hasCur    bool
	closed    bool
}

func newCursor(s seeker) *cursor {
	return &cursor{s: s, pos: MinKey, inclusive: true}
}

func (c *cursor) GoTo(k Key) error {
	if c.closed {
		return ErrClosed
	}
	c.pos = k
	c.inclusive = true
	c.hasCur = false
	return nil
}

func (c *cursor) Next() (Record, bool, error) {
	if c.closed {
		return Record{}, false, ErrClosed
	}
	rec, ok := c.s.after(c.pos, c.inclusive)
	if !ok {
		c.pos, c.inclusive, c.hasCur = MaxKey, true, false
		return Record{}, false, nil
	}
	c.moveTo(rec.Key)
	return rec, true, nil
}

func (c *cursor) Previous() (Record, bool, error) {
	if c.closed {
		return Record{}, false, ErrClosed
	}
	rec, ok := c.s.before(c.pos, c.inclusive)
	if !ok {
		c.pos, c.inclusive, c.hasCur = MinKey, true, false
		return Record{}, false, nil
	}
	c.moveTo(rec.Key)
	return rec, true, nil
}

func (c *cursor) moveTo(k Key) {
	c.pos = k
	c.inclusive = false
	c.current = k
	c.hasCur = true
}

func (c *cursor) DeleteCurrent() error {
	if c.closed {
		return ErrClosed
	}
	if !c.hasCur {
		return ErrNoCurrent
	}
	c.hasCur = false
	if !c.s.delete(c.current) {
		return ErrNoCurrent
	}
	return nil
}

func (c *cursor) Close() error {
	c.closed = true
	return nil
}
