// Package sink writes a packed [layout.Layout] out in a final format.
//
// # Formats
//
//   - JSON: the layout itself, for viewers and other tools ([RenderJSON])
//   - SVG: a wireframe of the collage with one outlined box per tile
//     ([RenderSVG])
//
// Neither sink touches pixel data. The SVG shows where each tile goes and
// how far it was scaled down, which is enough to check a layout before the
// images are composited elsewhere.
//
//	svg := sink.RenderSVG(l, sink.WithWidth(800), sink.WithLabels())
package sink
