// Package pkg provides the core libraries for imgpack collage layout.
//
// # Overview
//
// imgpack arranges images of fixed aspect ratio into one rectangular
// collage. The collage is a binary tree: leaves are tiles, interior nodes
// place their two children side by side or stacked. The pkg directory is
// organized into these areas:
//
//  1. [core] - Domain logic (rectangle tree, greedy packer)
//  2. [manifest] - TOML tile manifests and command-line size parsing
//  3. [layout] - Serializable placements flattened from a tree
//  4. [render] - Wireframe SVG, JSON and tree diagrams
//  5. [pipeline] - Orchestration (pack → edit → layout → render) with caching
//
// # Architecture
//
// The typical data flow through imgpack:
//
//	TOML manifest / WxH sizes
//	         ↓
//	    [manifest] package (tiles, options, scripted moves)
//	         ↓
//	    [core/pack] package (greedy pairwise merging)
//	         ↓
//	    [core/rect] package (tree, moves)
//	         ↓
//	    [layout] package (absolute placements)
//	         ↓
//	    SVG/JSON/DOT output
//
// # Quick Start
//
// Pack three tiles and render a wireframe:
//
//	import (
//	    "context"
//	    "github.com/hyperair/imgpack/pkg/core/pack"
//	    "github.com/hyperair/imgpack/pkg/core/rect"
//	    "github.com/hyperair/imgpack/pkg/layout"
//	    "github.com/hyperair/imgpack/pkg/render/sink"
//	)
//
//	// 1. Describe the tiles
//	tiles := []rect.Rectangle{
//	    rect.NewLeaf("a", "beach", 4000, 3000),
//	    rect.NewLeaf("b", "dunes", 3000, 4000),
//	    rect.NewLeaf("c", "", 1200, 1200),
//	}
//
//	// 2. Pack them towards A4 portrait
//	root, _ := pack.New(pack.WithTargetAspect(210.0 / 297)).Pack(context.Background(), tiles)
//
//	// 3. Flatten and render
//	svg := sink.RenderSVG(layout.Build(root), sink.WithWidth(1200))
//
// # Main Packages
//
// [core/rect] - The rectangle tree. Leaves never grow beyond their native
// size; composites derive their size from their children. [rect.Tree] moves
// a node next to another one on a chosen side.
//
// [core/pack] - The greedy packer. Each step merges the two oldest
// rectangles in the orientation whose aspect ratio is closest to the target.
// Packing can be cancelled from another goroutine.
//
// [cache] - File, Redis and null caches for layouts and renders.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for packing, pipeline, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test -short ./pkg/...             # Skip Graphviz rendering
//	go test -tags imgpackdebug ./...     # Panic on size contract violations
//
// [core]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/core
// [core/rect]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/core/rect
// [core/pack]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/core/pack
// [manifest]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/manifest
// [layout]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/layout
// [render]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/cache
// [errors]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/errors
// [observability]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/observability
// [rect.Tree]: https://pkg.go.dev/github.com/hyperair/imgpack/pkg/core/rect#Tree
package pkg
