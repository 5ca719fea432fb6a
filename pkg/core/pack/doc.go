// Package pack builds a collage tree from a list of tiles.
//
// # Algorithm
//
// The [Packer] keeps its inputs in a FIFO queue. Each step pops the two
// rectangles at the front, pairs them, and pushes the new composite onto the
// back, so N inputs take exactly N-1 merges. For aspect ratios a1 and a2 the
// two possible pairings give
//
//	vertical   = a1*a2 / (a1+a2)   (stacked at equal width)
//	horizontal = a1 + a2           (side by side at equal height)
//
// and the one that scores higher against the target aspect under the
// configured [Metric] wins, with ties going to horizontal. The result is
// deterministic for a given input order but not globally optimal.
//
// # Running
//
// [Packer.Start] runs on a separate goroutine; [Packer.Cancel] or the
// context passed to Start stops it before the next merge. A cancelled run
// never exposes a partial tree: the composites it built are released and the
// sources are returned to their native sizes. [Packer.Pack] wraps the whole
// cycle for callers that do not need the asynchronous API.
package pack
