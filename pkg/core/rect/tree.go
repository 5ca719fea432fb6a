package rect

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNotRoot is returned by [NewTree] when the proposed root has a parent.
var ErrNotRoot = errors.New("rectangle has a parent and cannot be a root")

// Side is the edge of a drop target that a moved node is attached to.
type Side int

const (
	Left Side = iota
	Right
	Top
	Bottom
)

var sideNames = [...]string{"left", "right", "top", "bottom"}

// String returns the lower-case name of the side.
func (s Side) String() string {
	if s < Left || s > Bottom {
		return fmt.Sprintf("Side(%d)", int(s))
	}
	return sideNames[s]
}

// Orientation returns the composite orientation that attaching on s creates.
func (s Side) Orientation() Orientation {
	if s == Left || s == Right {
		return Horizontal
	}
	return Vertical
}

// ParseSide parses "left", "right", "top" or "bottom" (case-insensitive).
func ParseSide(s string) (Side, error) {
	for i, name := range sideNames {
		if strings.EqualFold(s, name) {
			return Side(i), nil
		}
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

// SideAt picks the edge of t nearest to the point (x, y), given in the root's
// frame. Equal distances resolve in the order Left, Right, Top, Bottom.
func SideAt(t Rectangle, x, y float64) Side {
	ox, oy := Offset(t)
	lx, ly := x-ox, y-oy
	dist := [...]float64{
		Left:   math.Abs(lx),
		Right:  math.Abs(t.Width() - lx),
		Top:    math.Abs(ly),
		Bottom: math.Abs(t.Height() - ly),
	}
	best := Left
	for s := Right; s <= Bottom; s++ {
		if dist[s] < dist[best] {
			best = s
		}
	}
	return best
}

// Tree tracks the root of a rectangle tree across mutations.
//
// A Tree assumes exclusive access: it must not be used while a packer is
// still building the same nodes, and its methods are not reentrant.
type Tree struct {
	root Rectangle
}

// NewTree wraps root, which must not have a parent.
func NewTree(root Rectangle) (*Tree, error) {
	if root == nil {
		return nil, ErrNilRectangle
	}
	if root.Parent() != nil {
		return nil, ErrNotRoot
	}
	return &Tree{root: root}, nil
}

// Root returns the current root.
func (t *Tree) Root() Rectangle { return t.root }

// Contains reports whether r belongs to the tree.
func (t *Tree) Contains(r Rectangle) bool {
	return r != nil && Root(r) == t.root
}

// Find returns the leaf under (x, y) in the root's frame, or nil.
func (t *Tree) Find(x, y float64) Rectangle {
	return t.root.Find(x, y)
}

// Detach removes s from the tree. The composite that held s is discarded and
// s's former sibling takes its slot (becoming the root when that composite
// was the root). Ancestors are resized before Detach returns. s keeps its own
// subtree and becomes a free-standing root.
func (t *Tree) Detach(s Rectangle) error {
	if s == nil {
		return ErrNilRectangle
	}
	if !t.Contains(s) {
		return ErrNotInTree
	}
	if s == t.root {
		return ErrIsRoot
	}
	t.detach(s)
	return nil
}

func (t *Tree) detach(s Rectangle) {
	p := s.Parent()
	sib := Sibling(s)
	g := p.Parent()

	p.detachChildren()
	restore(s)
	if g == nil {
		t.root = sib
		restore(sib)
		return
	}
	g.replaceChild(p, sib)
}

// restore resizes a free-standing subtree back to its largest layout.
func restore(r Rectangle) {
	switch v := r.(type) {
	case *Leaf:
		v.Reset()
	case *Composite:
		v.RecalculateSize()
	}
}

// Move re-attaches s next to target on the given side.
//
// s is detached as in [Tree.Detach], then a new composite pairs it with
// target in target's former slot: Left gives Horizontal(s, target), Right
// Horizontal(target, s), Top Vertical(s, target), Bottom Vertical(target, s).
// The new composite is returned.
//
// Move returns [ErrCycle] when target is s or lies inside s, [ErrIsRoot] when
// s is the root, and [ErrNotInTree] when either node belongs elsewhere. The
// tree is unchanged on error. Dropping s onto its own parent attaches it to
// its sibling instead, since the parent disappears when s is detached.
// Dropping s onto any higher ancestor is allowed: after the detach that
// ancestor no longer contains s, so no cycle forms.
func (t *Tree) Move(s, target Rectangle, side Side) (*Composite, error) {
	if s == nil || target == nil {
		return nil, ErrNilRectangle
	}
	if side < Left || side > Bottom {
		return nil, fmt.Errorf("invalid side %v", side)
	}
	if !t.Contains(s) || !t.Contains(target) {
		return nil, ErrNotInTree
	}
	if IsAncestor(s, target) {
		return nil, ErrCycle
	}
	if s == t.root {
		return nil, ErrIsRoot
	}
	if target == s.Parent() {
		target = Sibling(s)
	}

	t.detach(s)

	g := target.Parent()
	inFirst := g != nil && g.child1 == target

	var c *Composite
	switch side {
	case Left:
		c = NewHorizontal(s, target)
	case Right:
		c = NewHorizontal(target, s)
	case Top:
		c = NewVertical(s, target)
	case Bottom:
		c = NewVertical(target, s)
	}

	switch {
	case g == nil:
		t.root = c
	case inFirst:
		g.SetChild1(c)
	default:
		g.SetChild2(c)
	}
	return c, nil
}

// MoveAt is [Tree.Move] with the side chosen by [SideAt] from a pointer
// position in the root's frame.
func (t *Tree) MoveAt(s, target Rectangle, x, y float64) (*Composite, error) {
	if target == nil {
		return nil, ErrNilRectangle
	}
	return t.Move(s, target, SideAt(target, x, y))
}
