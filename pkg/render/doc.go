// Package render groups the collage renderers.
//
// # Overview
//
// Renderers take a [layout.Layout], never a live tree, so a cached layout
// renders exactly like a freshly packed one:
//
//   - [sink]: wireframe SVG of the tile placements, and JSON
//   - [treeviz]: the rectangle tree as a Graphviz diagram (DOT or SVG)
//
// # Wireframes
//
// The wireframe shades each tile by how far it was scaled down, so tiles
// shown well below their native resolution stand out:
//
//	svg := sink.RenderSVG(l, sink.WithWidth(1200), sink.WithLabels())
//
// # Tree Diagrams
//
//	dot := treeviz.ToDOT(l.Tree, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// [layout.Layout]: github.com/hyperair/imgpack/pkg/layout
// [sink]: github.com/hyperair/imgpack/pkg/render/sink
// [treeviz]: github.com/hyperair/imgpack/pkg/render/treeviz
package render
