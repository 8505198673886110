// Package decompose approximates spatial objects by a bounded set of z-values.
//
// Decomposition starts at the smallest region containing the whole object and
// refines it breadth first, splitting regions the object partially covers,
// until the cell budget is used up. The result always covers the object; a
// smaller budget only makes the cover coarser.
package decompose

import (
	"fmt"
	"slices"

	"github.com/hupe1980/zspatial/space"
)

// Decomposer decomposes objects in one Space.
//
// A Decomposer reuses its work buffers between calls and is not safe for
// concurrent use. Create one per goroutine; the Space may be shared.
type Decomposer struct {
	space *space.Space
	queue []space.Region
	head  int
	out   []space.ZValue
	point []uint64
}

// New creates a Decomposer for s.
func New(s *space.Space) *Decomposer {
	return &Decomposer{
		space: s,
		point: make([]uint64, s.Dimensions()),
	}
}

// Space returns the space objects are decomposed in.
func (d *Decomposer) Space() *space.Space { return d.space }

// Decompose returns at most maxCells z-values, sorted ascending, whose
// regions cover obj. A budget below one is treated as one.
func (d *Decomposer) Decompose(obj space.Object, maxCells int) ([]space.ZValue, error) {
	if maxCells < 1 {
		maxCells = 1
	}
	if err := d.decompose(obj, maxCells); err != nil {
		return nil, err
	}
	return slices.Clone(d.out), nil
}

// DecomposeInto decomposes obj with a budget of len(out) cells and writes the
// z-values to out. Unused slots are set to space.NoRegion. It returns the
// number of z-values written.
func (d *Decomposer) DecomposeInto(obj space.Object, out []space.ZValue) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}
	if err := d.decompose(obj, len(out)); err != nil {
		return 0, err
	}
	n := copy(out, d.out)
	for i := n; i < len(out); i++ {
		out[i] = space.NoRegion
	}
	return n, nil
}

func (d *Decomposer) decompose(obj space.Object, maxCells int) error {
	d.queue = d.queue[:0]
	d.out = d.out[:0]

	if !obj.ContainedBySpace(d.space) {
		return fmt.Errorf("object %d: %w", obj.ID(), space.ErrOutsideSpace)
	}

	start, err := d.startRegion(obj)
	if err != nil {
		return err
	}

	if maxCells == 1 {
		d.out = append(d.out, start.Z())
		return nil
	}

	d.queue = append(d.queue, start)
	d.head = 0
	for d.pending() > 0 && len(d.out)+d.pending() < maxCells {
		region := d.queue[d.head]
		d.head++
		if region.IsCell() {
			d.out = append(d.out, region.Z())
			continue
		}
		d.refine(obj, region, maxCells)
	}

	// Budget exhausted: the remaining regions are emitted whole.
	for _, region := range d.queue[d.head:] {
		d.out = append(d.out, region.Z())
	}
	d.queue = d.queue[:0]

	d.out = MergeSiblings(d.out)
	return nil
}

// startRegion ascends from the cell of an arbitrary point of obj until the
// region contains obj.
func (d *Decomposer) startRegion(obj space.Object) (space.Region, error) {
	obj.ArbitraryPoint(d.space, d.point)
	r := d.space.CellRegion(d.point)
	for !obj.ContainedBy(&r) {
		if r.IsRoot() {
			return r, fmt.Errorf("object %d not contained by root region: %w", obj.ID(), space.ErrOutsideSpace)
		}
		r.Up()
	}
	return r, nil
}

// refine splits parent into halves and decides, per the classification of
// both halves, what to emit and what to queue.
func (d *Decomposer) refine(obj space.Object, parent space.Region, maxCells int) {
	left, right := parent, parent
	left.DownLeft()
	right.DownRight()
	cl := obj.Compare(&left)
	cr := obj.Compare(&right)

	// The parent has been taken off the queue; roomForTwo reports whether it
	// can be replaced by two entries.
	roomForTwo := len(d.out)+d.pending()+2 <= maxCells

	switch {
	case cl == space.Outside && cr == space.Outside:
		panic(fmt.Sprintf("decompose: object %d is outside both halves of %s", obj.ID(), parent.Z()))

	case cl == space.Outside:
		d.keep(right, cr)
	case cr == space.Outside:
		d.keep(left, cl)

	case cl == space.Inside && cr == space.Inside:
		d.out = append(d.out, parent.Z())

	case cl == space.Inside && cr == space.Overlaps:
		if roomForTwo {
			d.out = append(d.out, left.Z())
			d.queue = append(d.queue, right)
		} else {
			d.out = append(d.out, parent.Z())
		}
	case cl == space.Overlaps && cr == space.Inside:
		if roomForTwo {
			d.queue = append(d.queue, left)
			d.out = append(d.out, right.Z())
		} else {
			d.out = append(d.out, parent.Z())
		}

	default: // both overlap
		if roomForTwo {
			d.queue = append(d.queue, left, right)
		} else {
			d.out = append(d.out, parent.Z())
		}
	}
}

// keep handles the only half that intersects the object.
func (d *Decomposer) keep(half space.Region, rel space.Relation) {
	if rel == space.Inside {
		d.out = append(d.out, half.Z())
		return
	}
	d.queue = append(d.queue, half)
}

func (d *Decomposer) pending() int { return len(d.queue) - d.head }

// MergeSiblings sorts zs and replaces every pair of siblings by their parent,
// repeatedly, until no pair is left. The result is written over zs.
func MergeSiblings(zs []space.ZValue) []space.ZValue {
	slices.Sort(zs)
	out := zs[:0]
	for _, z := range zs {
		for len(out) > 0 && space.Siblings(out[len(out)-1], z) {
			z = z.Parent()
			out = out[:len(out)-1]
		}
		out = append(out, z)
	}
	return out
}
