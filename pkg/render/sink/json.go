package sink

import "github.com/hyperair/imgpack/pkg/layout"

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	width  float64
	noTree bool
}

// WithJSONWidth scales the layout to the given width before encoding.
func WithJSONWidth(w float64) JSONOption { return func(r *jsonRenderer) { r.width = w } }

// WithoutTree drops the tree from the output, leaving only tile placements.
func WithoutTree() JSONOption { return func(r *jsonRenderer) { r.noTree = true } }

// RenderJSON encodes l as indented JSON.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	var r jsonRenderer
	for _, opt := range opts {
		opt(&r)
	}
	if r.width > 0 {
		l = l.Scaled(r.width)
	}
	if r.noTree {
		l.Tree = nil
	}
	return layout.Marshal(l)
}
