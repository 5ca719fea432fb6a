// Package treeviz draws the shape of a packed rectangle tree.
//
// Composites appear as small boxes labelled with their orientation and
// size, leaves as rounded boxes with the tile id. The graph reads top down
// from the root, child1 to the left of child2:
//
//	dot := treeviz.ToDOT(l.Tree, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// Rendering uses the WebAssembly build of Graphviz bundled with go-graphviz,
// so no system install is needed.
package treeviz
