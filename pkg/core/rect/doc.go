// Package rect implements the recursive rectangle tree behind a collage.
//
// # Overview
//
// A collage is a binary tree. Leaves wrap one source tile with a fixed native
// size; interior nodes pair two subtrees either side by side (Horizontal) or
// stacked (Vertical):
//
//	        H
//	      /   \
//	     V     leaf C
//	    / \
//	leaf A  leaf B
//
// A composite never stores its own size. Its width and height are derived from
// its children: a Horizontal composite is as tall as either child and as wide
// as both together; a Vertical composite is the transpose. When a composite is
// built, both children are resized so the shared (cross axis) dimension is the
// smaller of their two maxima, so no tile is ever scaled above its native
// resolution.
//
// # Parent Links
//
// Every node keeps a non-owning pointer to its parent composite. The pointer
// and the parent's child slot always change together: [Composite.SetChild1],
// [Composite.SetChild2], [NewComposite] and the [Tree] mutation methods are
// the only places that touch either side.
//
// # Coordinates
//
// All coordinates are in the root's frame with the origin at the top-left
// corner. [Offset] walks up from a node to compute its position, and
// [Rectangle.Find] descends from a node to the leaf under a point given in
// that node's local frame.
//
// # Mutation
//
// [Tree.Move] implements drag-and-drop re-layout: it detaches a subtree,
// promotes its former sibling into the vacated slot, and pairs the subtree
// with the drop target under a fresh composite. Sizes are recomputed upward
// from each change with [Composite.RecalculateSize].
//
// # Contract Violations
//
// Asking a leaf to grow past its native size is a programming error. Builds
// with the imgpackdebug tag panic with a [*ContractError]; regular builds
// clamp the request. The packer and the tree mutation methods never issue such
// requests.
//
// None of the types in this package are safe for concurrent use.
package rect
