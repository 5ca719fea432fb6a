package rect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tolerance is the slack allowed when comparing laid-out sizes. Resize
// requests that exceed a maximum by less than this are clamped silently.
const Tolerance = 1e-3

var (
	// ErrNilRectangle is returned when a required node argument is nil.
	ErrNilRectangle = errors.New("rectangle must not be nil")

	// ErrCycle is returned by [Tree.Move] when the drop target is the moved
	// node itself or one of its descendants.
	ErrCycle = errors.New("target is the moved node or one of its descendants")

	// ErrNotInTree is returned when a node does not belong to the tree it is
	// being used with.
	ErrNotInTree = errors.New("rectangle is not part of this tree")

	// ErrIsRoot is returned when the root itself is asked to move. The root
	// has no parent to detach from and is an ancestor of every target.
	ErrIsRoot = errors.New("cannot move the root rectangle")
)

// Orientation tells how a composite lays out its two children.
type Orientation int

const (
	// None is reported by leaves.
	None Orientation = iota
	// Horizontal places child1 left of child2 at equal height.
	Horizontal
	// Vertical places child1 above child2 at equal width.
	Vertical
)

// String returns the lower-case name of the orientation.
func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "none"
	}
}

// Rectangle is the capability set shared by leaves and composites.
//
// The interface is sealed: only [*Leaf] and [*Composite] implement it, since
// the parent link must be updated in lock-step with the composite's child
// slots.
type Rectangle interface {
	// Width and Height report the current laid-out size.
	Width() float64
	Height() float64

	// SetWidth and SetHeight resize the node, preserving its aspect ratio.
	// The request must not exceed MaxWidth or MaxHeight.
	SetWidth(w float64)
	SetHeight(h float64)

	// MaxWidth and MaxHeight report the largest size the node can take
	// without upscaling any tile beneath it.
	MaxWidth() float64
	MaxHeight() float64

	// AspectRatio is always Width()/Height().
	AspectRatio() float64

	Orientation() Orientation

	// Child1 and Child2 return nil for leaves.
	Child1() Rectangle
	Child2() Rectangle

	// Parent returns nil for a root.
	Parent() *Composite

	// Find returns the leaf under (x, y) in this node's local frame, or nil
	// when the point lies outside.
	Find(x, y float64) Rectangle

	// Description is a short debug label.
	Description() string

	setParent(p *Composite)
}

// node holds the parent back-reference shared by every implementation.
type node struct {
	parent *Composite
}

func (n *node) Parent() *Composite     { return n.parent }
func (n *node) setParent(p *Composite) { n.parent = p }

// Offset returns the position of r's top-left corner in the root's frame.
//
// Walking up, a node that is the second child of a Horizontal parent is
// shifted right by the first child's width, and the second child of a
// Vertical parent is shifted down by the first child's height. The cross-axis
// offset is inherited unchanged.
func Offset(r Rectangle) (x, y float64) {
	for cur := r; cur != nil; {
		p := cur.Parent()
		if p == nil {
			break
		}
		if p.child2 == cur {
			switch p.orientation {
			case Horizontal:
				x += p.child1.Width()
			case Vertical:
				y += p.child1.Height()
			}
		}
		cur = p
	}
	return x, y
}

// Root returns the topmost ancestor of r (r itself when it has no parent).
func Root(r Rectangle) Rectangle {
	if r == nil {
		return nil
	}
	for r.Parent() != nil {
		r = r.Parent()
	}
	return r
}

// IsAncestor reports whether a is b or lies on the path from b to its root.
func IsAncestor(a, b Rectangle) bool {
	if a == nil || b == nil {
		return false
	}
	for cur := b; cur != nil; {
		if cur == a {
			return true
		}
		p := cur.Parent()
		if p == nil {
			return false
		}
		cur = p
	}
	return false
}

// Sibling returns the other child of r's parent, or nil for a root.
func Sibling(r Rectangle) Rectangle {
	p := r.Parent()
	if p == nil {
		return nil
	}
	switch r {
	case p.child1:
		return p.child2
	case p.child2:
		return p.child1
	}
	panic("rect: parent does not hold child")
}

// Depth returns the number of edges between r and its root.
func Depth(r Rectangle) int {
	d := 0
	for p := r.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

// Path returns the child indices leading from the root to r, joined with
// dots ("0" for child1, "1" for child2). The root's path is "".
func Path(r Rectangle) string {
	var parts []string
	for cur := r; cur.Parent() != nil; {
		p := cur.Parent()
		if p.child1 == cur {
			parts = append(parts, "0")
		} else {
			parts = append(parts, "1")
		}
		cur = p
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// ContractError describes a resize request that would upscale a tile.
type ContractError struct {
	Description string
	Axis        string
	Requested   float64
	Max         float64
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return fmt.Sprintf("rect: %s: %s %s exceeds maximum %s", e.Description, e.Axis,
		strconv.FormatFloat(e.Requested, 'f', 3, 64), strconv.FormatFloat(e.Max, 'f', 3, 64))
}

// clampToMax enforces the no-upscale contract for a single dimension.
func clampToMax(desc, axis string, v, limit float64) float64 {
	if v <= limit {
		return v
	}
	if v-limit > Tolerance && strict {
		panic(&ContractError{Description: desc, Axis: axis, Requested: v, Max: limit})
	}
	return limit
}
