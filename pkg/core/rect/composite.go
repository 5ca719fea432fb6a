package rect

import "math"

// Composite pairs two rectangles along one axis.
//
// A Horizontal composite places child1 left of child2 and forces both to the
// same height; a Vertical composite places child1 above child2 and forces both
// to the same width. Width and height are always derived from the children.
//
// The orientation is fixed at construction.
type Composite struct {
	node
	orientation    Orientation
	child1, child2 Rectangle
}

// NewComposite pairs r1 and r2 with the given orientation and equalizes their
// cross-axis size to the smaller of their two maxima.
//
// Either argument that already has a parent is detached from it first; the
// old parent is left with an empty slot that the caller must refill (see
// [Composite.SetChild1]). NewComposite panics if o is None, if either argument
// is nil, or if one argument contains the other.
func NewComposite(o Orientation, r1, r2 Rectangle) *Composite {
	if o != Horizontal && o != Vertical {
		panic("rect: composite orientation must be Horizontal or Vertical")
	}
	if r1 == nil || r2 == nil {
		panic("rect: composite children must not be nil")
	}
	if IsAncestor(r1, r2) || IsAncestor(r2, r1) {
		panic("rect: composite children must be disjoint subtrees")
	}

	c := &Composite{orientation: o, child1: r1, child2: r2}
	c.adopt(r1)
	c.adopt(r2)
	c.equalize()
	return c
}

// NewHorizontal pairs r1 and r2 side by side.
func NewHorizontal(r1, r2 Rectangle) *Composite { return NewComposite(Horizontal, r1, r2) }

// NewVertical stacks r1 above r2.
func NewVertical(r1, r2 Rectangle) *Composite { return NewComposite(Vertical, r1, r2) }

func (c *Composite) Orientation() Orientation { return c.orientation }
func (c *Composite) Child1() Rectangle        { return c.child1 }
func (c *Composite) Child2() Rectangle        { return c.child2 }

// Width is the sum of the children's widths for Horizontal, and child1's
// width for Vertical.
func (c *Composite) Width() float64 {
	if c.orientation == Horizontal {
		return c.child1.Width() + c.child2.Width()
	}
	return c.child1.Width()
}

// Height is child1's height for Horizontal, and the sum of the children's
// heights for Vertical.
func (c *Composite) Height() float64 {
	if c.orientation == Horizontal {
		return c.child1.Height()
	}
	return c.child1.Height() + c.child2.Height()
}

// AspectRatio returns Width()/Height().
func (c *Composite) AspectRatio() float64 { return c.Width() / c.Height() }

// SetWidth scales the whole subtree so the composite is w wide.
func (c *Composite) SetWidth(w float64) {
	if c.orientation == Horizontal {
		c.setCross(w / c.AspectRatio())
		return
	}
	c.setCross(w)
}

// SetHeight scales the whole subtree so the composite is h tall.
func (c *Composite) SetHeight(h float64) {
	if c.orientation == Horizontal {
		c.setCross(h)
		return
	}
	c.setCross(h * c.AspectRatio())
}

// MaxHeight is the smaller child ceiling for Horizontal, and derived from
// MaxWidth through the aspect ratio for Vertical.
func (c *Composite) MaxHeight() float64 {
	if c.orientation == Horizontal {
		return math.Min(c.child1.MaxHeight(), c.child2.MaxHeight())
	}
	return c.MaxWidth() / c.AspectRatio()
}

// MaxWidth is derived from MaxHeight through the aspect ratio for
// Horizontal, and the smaller child ceiling for Vertical.
func (c *Composite) MaxWidth() float64 {
	if c.orientation == Horizontal {
		return c.AspectRatio() * c.MaxHeight()
	}
	return math.Min(c.child1.MaxWidth(), c.child2.MaxWidth())
}

// SetChild1 replaces the first child and recalculates sizes up to the root.
func (c *Composite) SetChild1(r Rectangle) { c.setChild(&c.child1, r) }

// SetChild2 replaces the second child and recalculates sizes up to the root.
func (c *Composite) SetChild2(r Rectangle) { c.setChild(&c.child2, r) }

func (c *Composite) setChild(slot *Rectangle, r Rectangle) {
	if r == nil {
		panic("rect: composite children must not be nil")
	}
	if *slot == r {
		return
	}
	if r == c.child1 || r == c.child2 {
		panic("rect: node already fills the other slot")
	}
	if IsAncestor(r, c) {
		panic("rect: child would contain its own parent")
	}
	if old := *slot; old != nil && old.Parent() == c {
		old.setParent(nil)
	}
	*slot = r
	c.adopt(r)
	c.RecalculateSize()
}

// adopt points r's parent link at c, removing r from any other parent.
func (c *Composite) adopt(r Rectangle) {
	if p := r.Parent(); p != nil && p != c {
		p.orphanChild(r)
	}
	r.setParent(c)
}

// orphanChild clears whichever slot holds r and r's parent link.
func (c *Composite) orphanChild(r Rectangle) {
	switch r {
	case c.child1:
		c.child1 = nil
	case c.child2:
		c.child2 = nil
	default:
		return
	}
	if r.Parent() == c {
		r.setParent(nil)
	}
}

// replaceChild swaps old for r in place, keeping the slot.
func (c *Composite) replaceChild(old, r Rectangle) {
	switch old {
	case c.child1:
		c.SetChild1(r)
	case c.child2:
		c.SetChild2(r)
	default:
		panic("rect: composite does not hold child")
	}
}

// RecalculateSize re-runs equalization for c and then for every ancestor up
// to the root, so a local structural change is reflected in every derived
// size before it returns.
func (c *Composite) RecalculateSize() {
	for cur := c; cur != nil; cur = cur.parent {
		cur.equalize()
	}
}

// equalize sets both children's cross-axis size to the smaller of their
// maxima along that axis.
func (c *Composite) equalize() {
	if c.child1 == nil || c.child2 == nil {
		panic("rect: composite is missing a child")
	}
	if c.orientation == Horizontal {
		common := math.Min(c.child1.MaxHeight(), c.child2.MaxHeight())
		c.child1.SetHeight(common)
		c.child2.SetHeight(common)
		return
	}
	common := math.Min(c.child1.MaxWidth(), c.child2.MaxWidth())
	c.child1.SetWidth(common)
	c.child2.SetWidth(common)
}

func (c *Composite) setCross(v float64) {
	if c.orientation == Horizontal {
		c.child1.SetHeight(v)
		c.child2.SetHeight(v)
		return
	}
	c.child1.SetWidth(v)
	c.child2.SetWidth(v)
}

// Find descends into the child under (x, y). For Horizontal, points left of
// child1's right edge go to child1 and the rest to child2 with x shifted;
// Vertical is the same along y.
func (c *Composite) Find(x, y float64) Rectangle {
	if c.orientation == Horizontal {
		if w := c.child1.Width(); x >= w {
			return c.child2.Find(x-w, y)
		}
		return c.child1.Find(x, y)
	}
	if h := c.child1.Height(); y >= h {
		return c.child2.Find(x, y-h)
	}
	return c.child1.Find(x, y)
}

// Description returns "Horizontal" or "Vertical".
func (c *Composite) Description() string {
	if c.orientation == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}

// detachChildren clears both slots and the children's parent links, leaving
// c empty. Used when c is pruned from a tree.
func (c *Composite) detachChildren() {
	for _, ch := range []Rectangle{c.child1, c.child2} {
		if ch != nil && ch.Parent() == c {
			ch.setParent(nil)
		}
	}
	c.child1, c.child2 = nil, nil
}

// Release empties c and returns its former children as free-standing roots,
// each resized back to its largest layout. c must be a root.
func (c *Composite) Release() (Rectangle, Rectangle) {
	if c.parent != nil {
		panic("rect: release of a composite that still has a parent")
	}
	r1, r2 := c.child1, c.child2
	c.detachChildren()
	for _, r := range []Rectangle{r1, r2} {
		if r != nil {
			restore(r)
		}
	}
	return r1, r2
}

var _ Rectangle = (*Composite)(nil)
