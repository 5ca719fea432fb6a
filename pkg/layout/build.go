package layout

import "github.com/hyperair/imgpack/pkg/core/rect"

type placement struct {
	r    rect.Rectangle
	x, y float64
}

// Build walks the tree under root breadth-first and records every leaf at
// its absolute position. Offsets are accumulated on the way down rather than
// recomputed per leaf with [rect.Offset].
func Build(root rect.Rectangle) Layout {
	l := Layout{
		Width:  root.Width(),
		Height: root.Height(),
		Tree:   buildNode(root),
	}

	queue := []placement{{r: root}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if leaf, ok := p.r.(*rect.Leaf); ok {
			l.Tiles = append(l.Tiles, Tile{
				ID:           leaf.ID(),
				Label:        leaf.Label(),
				X:            p.x,
				Y:            p.y,
				Width:        leaf.Width(),
				Height:       leaf.Height(),
				NativeWidth:  leaf.MaxWidth(),
				NativeHeight: leaf.MaxHeight(),
				Path:         rect.Path(leaf),
				Depth:        rect.Depth(leaf),
			})
			continue
		}

		c1, c2 := p.r.Child1(), p.r.Child2()
		x2, y2 := p.x, p.y
		if p.r.Orientation() == rect.Horizontal {
			x2 += c1.Width()
		} else {
			y2 += c1.Height()
		}
		queue = append(queue, placement{c1, p.x, p.y}, placement{c2, x2, y2})
	}
	return l
}

func buildNode(r rect.Rectangle) *Node {
	n := &Node{Width: r.Width(), Height: r.Height()}
	switch v := r.(type) {
	case *rect.Leaf:
		n.Kind = KindLeaf
		n.ID = v.ID()
		n.Label = v.Label()
	default:
		n.Kind = KindHorizontal
		if r.Orientation() == rect.Vertical {
			n.Kind = KindVertical
		}
		n.Children = []*Node{buildNode(r.Child1()), buildNode(r.Child2())}
	}
	return n
}
