// Package layout is the serialized form of a packed collage.
//
// A [Layout] records where every tile lands in the root's frame together
// with the shape of the tree that produced it. It is what the renderers
// consume, what the cache stores, and what `imgpack pack -f json` writes:
//
//	{
//	  "width": 296, "height": 200,
//	  "tiles": [
//	    {"id": "c", "x": 96, "y": 0, "width": 200, "height": 200, ...},
//	    {"id": "a", "x": 0, "y": 0, "width": 96, "height": 72, ...}
//	  ],
//	  "tree": {"kind": "horizontal", "children": [...]}
//	}
//
// Tiles are listed in breadth-first order, shallow tiles first, which is
// also the order a viewer paints them in.
package layout
