package rect

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// ErrInvariant is wrapped by every error [Validate] returns.
var ErrInvariant = errors.New("rectangle invariant violated")

// Walk visits r and its descendants in pre-order (child1 before child2).
// When fn returns false the node's children are skipped.
func Walk(r Rectangle, fn func(Rectangle) bool) {
	if r == nil || !fn(r) {
		return
	}
	if c1 := r.Child1(); c1 != nil {
		Walk(c1, fn)
	}
	if c2 := r.Child2(); c2 != nil {
		Walk(c2, fn)
	}
}

// Leaves returns the leaves under r in left-to-right, top-to-bottom tree
// order.
func Leaves(r Rectangle) []*Leaf {
	var leaves []*Leaf
	Walk(r, func(n Rectangle) bool {
		if l, ok := n.(*Leaf); ok {
			leaves = append(leaves, l)
		}
		return true
	})
	return leaves
}

// Count returns the number of nodes under r, including r.
func Count(r Rectangle) int {
	n := 0
	Walk(r, func(Rectangle) bool { n++; return true })
	return n
}

// FindLeaf returns the leaf under r with the given id.
func FindLeaf(r Rectangle, id string) (*Leaf, bool) {
	var found *Leaf
	Walk(r, func(n Rectangle) bool {
		if found != nil {
			return false
		}
		if l, ok := n.(*Leaf); ok && l.id == id {
			found = l
		}
		return true
	})
	return found, found != nil
}

// Validate checks that root is a consistent tree: the root has no parent,
// every composite has two children that point back at it, cross-axis sizes
// agree within [Tolerance], and no leaf is larger than its native size.
func Validate(root Rectangle) error {
	if root == nil {
		return ErrNilRectangle
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root has a parent", ErrInvariant)
	}

	// Size checks rely on every composite having two children, so they only
	// run once the links are sound.
	if err := validateAll(root, validateLinks); err != nil {
		return err
	}
	return validateAll(root, validateSizes)
}

// validateAll runs check on every node under root and combines the failures.
func validateAll(root Rectangle, check func(Rectangle) error) error {
	var err error
	Walk(root, func(n Rectangle) bool {
		err = multierr.Append(err, check(n))
		return true
	})
	return err
}

func validateLinks(n Rectangle) error {
	v, ok := n.(*Composite)
	if !ok {
		return nil
	}
	if v.orientation != Horizontal && v.orientation != Vertical {
		return invariantf(n, "composite without orientation")
	}
	if v.child1 == nil || v.child2 == nil {
		return invariantf(n, "missing child")
	}
	if v.child1.Parent() != v || v.child2.Parent() != v {
		return invariantf(n, "child parent link does not point back")
	}
	return nil
}

func validateSizes(n Rectangle) error {
	if !(n.Width() > 0) || !(n.Height() > 0) {
		return invariantf(n, "non-positive size %gx%g", n.Width(), n.Height())
	}

	switch v := n.(type) {
	case *Leaf:
		if v.width > v.maxWidth+Tolerance || v.height > v.maxHeight+Tolerance {
			return invariantf(n, "size %gx%g exceeds native %gx%g", v.width, v.height, v.maxWidth, v.maxHeight)
		}
	case *Composite:
		if v.orientation == Horizontal {
			if math.Abs(v.child1.Height()-v.child2.Height()) > Tolerance {
				return invariantf(n, "child heights differ: %g vs %g", v.child1.Height(), v.child2.Height())
			}
		} else if math.Abs(v.child1.Width()-v.child2.Width()) > Tolerance {
			return invariantf(n, "child widths differ: %g vs %g", v.child1.Width(), v.child2.Width())
		}
	}
	return nil
}

func invariantf(n Rectangle, format string, args ...any) error {
	return fmt.Errorf("%w: %s at %q: %s", ErrInvariant, n.Description(), Path(n), fmt.Sprintf(format, args...))
}

// Dissolve tears down every composite under r, clearing all parent links and
// restoring each leaf to its native size. The freed leaves are returned in
// tree order. r must be a root.
func Dissolve(r Rectangle) []*Leaf {
	leaves := Leaves(r)
	var composites []*Composite
	Walk(r, func(n Rectangle) bool {
		if c, ok := n.(*Composite); ok {
			composites = append(composites, c)
		}
		return true
	})
	for _, c := range composites {
		c.detachChildren()
	}
	for _, l := range leaves {
		l.Reset()
	}
	return leaves
}
