package join

import (
	"fmt"

	"github.com/hupe1980/zspatial/space"
	"github.com/hupe1980/zspatial/store"
)

// side is the merge state of one input.
type side struct {
	name       string
	cursor     store.Cursor
	current    store.Record
	eof        bool
	nest       []store.Record
	singleCell bool
	stable     bool
	memo       *ancestorMemo
}

// nextEntry is where current starts, or +inf at EOF.
func (s *side) nextEntry() space.ZValue {
	if s.eof {
		return space.NoRegion
	}
	return s.current.Z
}

// nextExit is where the innermost open region ends, or +inf.
func (s *side) nextExit() space.ZValue {
	if len(s.nest) == 0 {
		return space.NoRegion
	}
	return s.nest[len(s.nest)-1].Z.Hi()
}

// nestOverlaps reports whether z overlaps any open region. The nest is a
// containment chain, so checking both ends suffices.
func (s *side) nestOverlaps(z space.ZValue) bool {
	if len(s.nest) == 0 {
		return false
	}
	return z.Contains(s.nest[len(s.nest)-1].Z) || s.nest[0].Z.Contains(z)
}

func (s *side) advance() error {
	rec, ok, err := s.cursor.Next()
	if err != nil {
		return s.wrap(err)
	}
	if !ok {
		s.eof = true
		s.current = store.Record{}
		return nil
	}
	s.current = rec
	return nil
}

func (s *side) push() {
	rec := s.current
	if !s.stable {
		rec = rec.Clone()
	}
	if n := len(s.nest); n > 0 && !s.nest[n-1].Z.Contains(rec.Z) {
		panic(fmt.Sprintf("join: %s nest top %s does not contain %s", s.name, s.nest[n-1].Key, rec.Key))
	}
	s.nest = append(s.nest, rec)
}

func (s *side) pop() store.Record {
	n := len(s.nest) - 1
	rec := s.nest[n]
	s.nest[n] = store.Record{}
	s.nest = s.nest[:n]
	return rec
}

func (s *side) wrap(err error) error {
	return fmt.Errorf("join: %s cursor: %w", s.name, err)
}

// engine runs the merge. It is driven by an Iterator.
type engine struct {
	left, right *side
	filter      Filter
	seen        *seenPairs
	stats       *Stats
	out         []Pair
}

func newEngine(left, right Input, opts Options, stats *Stats) (*engine, error) {
	e := &engine{
		filter: opts.Filter,
		stats:  stats,
	}
	if opts.Duplicates == Exclude {
		e.seen = newSeenPairs()
	}

	var err error
	if e.left, err = openSide("left", left); err != nil {
		return nil, err
	}
	if e.right, err = openSide("right", right); err != nil {
		_ = e.left.cursor.Close()
		return nil, err
	}
	if err := e.left.advance(); err != nil {
		e.close()
		return nil, err
	}
	if err := e.right.advance(); err != nil {
		e.close()
		return nil, err
	}
	return e, nil
}

func openSide(name string, in Input) (*side, error) {
	c, err := in.Cursor()
	if err != nil {
		return nil, fmt.Errorf("join: open %s cursor: %w", name, err)
	}
	return &side{
		name:       name,
		cursor:     c,
		singleCell: in.SingleCell(),
		stable:     in.Stable(),
		memo:       newAncestorMemo(),
	}, nil
}

// step performs one merge step. It reports false once every boundary is
// +inf.
func (e *engine) step() (bool, error) {
	le, re := e.left.nextEntry(), e.right.nextEntry()
	lx, rx := e.left.nextExit(), e.right.nextExit()

	// Entries win ties over exits, and the left side over the right.
	m := min(le, re, lx, rx)
	if m == space.NoRegion {
		return false, nil
	}
	e.stats.Steps++

	switch m {
	case le:
		return true, e.enter(e.left, e.right)
	case re:
		return true, e.enter(e.right, e.left)
	case lx:
		e.exit(e.left, e.right)
	default:
		e.exit(e.right, e.left)
	}
	return true, nil
}

func (e *engine) enter(this, other *side) error {
	cur := this.current.Z
	if other.nestOverlaps(cur) || (!other.eof && cur.Overlaps(other.current.Z)) {
		this.push()
		e.stats.Entries++
		return this.advance()
	}
	return e.skipAhead(this, other)
}

// skipAhead repositions this side's cursor past records that cannot overlap
// anything on the other side. The other side's nest is empty here: any open
// region there would contain this side's current record.
func (e *engine) skipAhead(this, other *side) error {
	e.stats.SkipAheads++
	if other.eof {
		this.eof = true
		this.current = store.Record{}
		return nil
	}

	target := other.current.Z
	resume := target
	if !this.singleCell {
		anc, found, err := e.shallowestAncestor(this, target, this.current.Z)
		if err != nil {
			return err
		}
		if found {
			resume = anc
		}
	}

	if err := this.cursor.GoTo(store.Key{Z: resume, ID: store.MinKey.ID}); err != nil {
		return this.wrap(err)
	}
	return this.advance()
}

// shallowestAncestor finds the shortest ancestor of target stored on this
// side that sorts after lower. Records of this side between lower and target
// only matter if they contain target, and the shortest such ancestor is the
// first of them in key order.
func (e *engine) shallowestAncestor(this *side, target, lower space.ZValue) (space.ZValue, bool, error) {
	var (
		best  space.ZValue
		found bool
	)
	for l := target.Length() - 1; l >= 0; l-- {
		anc := target.Ancestor(l)
		if anc <= lower {
			break
		}
		exists, err := e.probe(this, anc)
		if err != nil {
			return 0, false, err
		}
		if exists {
			best, found = anc, true
		}
	}
	return best, found, nil
}

func (e *engine) probe(this *side, anc space.ZValue) (bool, error) {
	if exists, ok := this.memo.lookup(anc); ok {
		e.stats.AncestorMemoHits++
		return exists, nil
	}
	e.stats.AncestorProbes++

	if err := this.cursor.GoTo(store.Key{Z: anc, ID: store.MinKey.ID}); err != nil {
		return false, this.wrap(err)
	}
	rec, ok, err := this.cursor.Next()
	if err != nil {
		return false, this.wrap(err)
	}
	exists := ok && rec.Z == anc
	this.memo.store(anc, exists)
	return exists, nil
}

// exit closes this side's innermost region and pairs it with every open
// region of the other side.
func (e *engine) exit(this, other *side) {
	rec := this.pop()
	e.stats.Exits++
	for i := range other.nest {
		if this == e.left {
			e.emit(rec.Object, other.nest[i].Object)
		} else {
			e.emit(other.nest[i].Object, rec.Object)
		}
	}
}

func (e *engine) emit(left, right space.Object) {
	e.stats.Candidates++
	if e.filter != nil && !e.filter(left, right) {
		e.stats.FilteredOut++
		return
	}
	if e.seen != nil && !e.seen.add(left.ID(), right.ID()) {
		e.stats.Duplicates++
		return
	}
	e.stats.Emitted++
	e.out = append(e.out, Pair{Left: left, Right: right})
}

func (e *engine) close() error {
	var err error
	for _, s := range []*side{e.left, e.right} {
		if s == nil {
			continue
		}
		if cerr := s.cursor.Close(); cerr != nil && err == nil {
			err = s.wrap(cerr)
		}
	}
	return err
}
