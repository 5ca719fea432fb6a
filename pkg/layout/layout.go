package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// Node kinds.
const (
	KindLeaf       = "leaf"
	KindHorizontal = "horizontal"
	KindVertical   = "vertical"
)

// Layout is a packed collage with absolute tile placements.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// TargetAspect and Metric record the packing options, when known.
	TargetAspect float64 `json:"target_aspect,omitempty"`
	Metric       string  `json:"metric,omitempty"`

	Tiles []Tile `json:"tiles"`
	Tree  *Node  `json:"tree"`
}

// Tile is one leaf at its laid-out position and size.
type Tile struct {
	ID     string  `json:"id"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	NativeWidth  float64 `json:"native_width"`
	NativeHeight float64 `json:"native_height"`

	// Path is the tile's position in the tree, see [rect.Path].
	Path  string `json:"path"`
	Depth int    `json:"depth"`
}

// Scale returns how much the tile was shrunk from its native size (1 means
// native size).
func (t Tile) Scale() float64 {
	if t.NativeWidth == 0 {
		return 0
	}
	return t.Width / t.NativeWidth
}

// Node mirrors the rectangle tree: leaves carry a tile id, composites
// carry their orientation and two children.
type Node struct {
	Kind     string  `json:"kind"`
	ID       string  `json:"id,omitempty"`
	Label    string  `json:"label,omitempty"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Children []*Node `json:"children,omitempty"`
}

// IsLeaf reports whether n is a leaf node.
func (n *Node) IsLeaf() bool { return n.Kind == KindLeaf }

// Tile returns the tile with the given id.
func (l *Layout) Tile(id string) (Tile, bool) {
	for _, t := range l.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return Tile{}, false
}

// TileAt returns the tile covering (x, y), using the same half-open bounds
// as [rect.Rectangle.Find].
func (l *Layout) TileAt(x, y float64) (Tile, bool) {
	for _, t := range l.Tiles {
		if x >= t.X && y >= t.Y && x < t.X+t.Width && y < t.Y+t.Height {
			return t, true
		}
	}
	return Tile{}, false
}

// Scaled returns a copy of l resized so its width is w. Tiles keep their
// native sizes; only placements change.
func (l Layout) Scaled(w float64) Layout {
	if l.Width == 0 || w == l.Width {
		return l
	}
	f := w / l.Width
	out := l
	out.Width, out.Height = l.Width*f, l.Height*f
	out.Tiles = make([]Tile, len(l.Tiles))
	for i, t := range l.Tiles {
		t.X, t.Y, t.Width, t.Height = t.X*f, t.Y*f, t.Width*f, t.Height*f
		out.Tiles[i] = t
	}
	out.Tree = scaleNode(l.Tree, f)
	return out
}

func scaleNode(n *Node, f float64) *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Width, c.Height = n.Width*f, n.Height*f
	c.Children = make([]*Node, len(n.Children))
	for i, ch := range n.Children {
		c.Children[i] = scaleNode(ch, f)
	}
	if len(c.Children) == 0 {
		c.Children = nil
	}
	return &c
}

// =============================================================================
// Serialization
// =============================================================================

// Marshal serializes a Layout to pretty-printed JSON.
func Marshal(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal parses JSON produced by [Marshal] and checks that it describes
// at least one tile with a positive size.
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Tiles) == 0 {
		return Layout{}, fmt.Errorf("layout must contain tiles")
	}
	if !(l.Width > 0) || !(l.Height > 0) {
		return Layout{}, fmt.Errorf("layout size must be positive, got %gx%g", l.Width, l.Height)
	}
	return l, nil
}

// WriteFile writes a Layout to a JSON file.
func WriteFile(l Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a Layout from a JSON file.
func ReadFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
