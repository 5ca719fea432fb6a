package rect

import (
	"fmt"
	"math"
)

// Leaf is a rectangle wrapping one source tile.
//
// Its maximum size is the tile's native size and never changes. Resizing one
// dimension rescales the other so the native aspect ratio is preserved.
type Leaf struct {
	node
	id    string
	label string

	width, height       float64
	maxWidth, maxHeight float64
}

// NewLeaf creates a leaf at its native size. Width and height must be
// positive; the collaborator supplying tiles is responsible for rejecting
// empty images before they reach the tree.
func NewLeaf(id, label string, width, height float64) *Leaf {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		panic(fmt.Sprintf("rect: invalid leaf size %vx%v", width, height))
	}
	return &Leaf{
		id:        id,
		label:     label,
		width:     width,
		height:    height,
		maxWidth:  width,
		maxHeight: height,
	}
}

// ID returns the identifier supplied at construction.
func (l *Leaf) ID() string { return l.id }

// Label returns the human-readable label supplied at construction.
func (l *Leaf) Label() string { return l.label }

func (l *Leaf) Width() float64     { return l.width }
func (l *Leaf) Height() float64    { return l.height }
func (l *Leaf) MaxWidth() float64  { return l.maxWidth }
func (l *Leaf) MaxHeight() float64 { return l.maxHeight }

// AspectRatio returns Width()/Height().
func (l *Leaf) AspectRatio() float64 { return l.width / l.height }

// NativeAspectRatio returns the aspect ratio of the source tile.
func (l *Leaf) NativeAspectRatio() float64 { return l.maxWidth / l.maxHeight }

func (l *Leaf) Orientation() Orientation { return None }
func (l *Leaf) Child1() Rectangle        { return nil }
func (l *Leaf) Child2() Rectangle        { return nil }

// SetWidth resizes the leaf to width w and recomputes the height from the
// native aspect ratio.
func (l *Leaf) SetWidth(w float64) {
	if w == l.width {
		return
	}
	w = clampToMax(l.Description(), "width", w, l.maxWidth)
	l.width = w
	l.height = w / l.NativeAspectRatio()
}

// SetHeight resizes the leaf to height h and recomputes the width from the
// native aspect ratio.
func (l *Leaf) SetHeight(h float64) {
	if h == l.height {
		return
	}
	h = clampToMax(l.Description(), "height", h, l.maxHeight)
	l.height = h
	l.width = h * l.NativeAspectRatio()
}

// Reset restores the native size.
func (l *Leaf) Reset() {
	l.width, l.height = l.maxWidth, l.maxHeight
}

// Find returns l if (x, y) lies in [0,Width) x [0,Height).
func (l *Leaf) Find(x, y float64) Rectangle {
	if x >= 0 && y >= 0 && x < l.width && y < l.height {
		return l
	}
	return nil
}

// Description returns the label (or id) and the native size.
func (l *Leaf) Description() string {
	name := l.label
	if name == "" {
		name = l.id
	}
	if name == "" {
		name = "Leaf"
	}
	return fmt.Sprintf("%s %gx%g", name, l.maxWidth, l.maxHeight)
}

var _ Rectangle = (*Leaf)(nil)
