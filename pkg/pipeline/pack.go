package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/hyperair/imgpack/pkg/core/pack"
	"github.com/hyperair/imgpack/pkg/core/rect"
	"github.com/hyperair/imgpack/pkg/errors"
	"github.com/hyperair/imgpack/pkg/manifest"
	"github.com/hyperair/imgpack/pkg/observability"
)

// =============================================================================
// Packing
// =============================================================================

// Pack builds the tree for m and replays its moves. It does not consult any
// cache. opts must already have been through [Options.ValidateAndSetDefaults].
func Pack(ctx context.Context, m *manifest.Manifest, opts Options) (*rect.Tree, Stats, error) {
	stats := Stats{Tiles: len(m.Tiles)}
	metric, err := pack.MetricByName(opts.Metric)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeInvalidMetric, err, "invalid metric")
	}

	p := pack.New(
		pack.WithLogger(opts.Logger),
		pack.WithMetric(metric),
		pack.WithTargetAspect(opts.TargetAspect),
	)

	start := time.Now()
	root, err := p.Pack(ctx, m.Rectangles())
	stats.PackTime = time.Since(start)
	stats.Merges = p.Merges()
	if err != nil {
		if stderrors.Is(err, pack.ErrCancelled) {
			return nil, stats, errors.Wrap(errors.ErrCodeCancelled, err, "packing stopped after %d merges", stats.Merges)
		}
		return nil, stats, errors.Wrap(errors.ErrCodeInternal, err, "pack")
	}

	tree, err := rect.NewTree(root)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeInternal, err, "pack")
	}
	if err := check(tree, opts); err != nil {
		return nil, stats, err
	}

	n, err := ApplyMoves(ctx, tree, m.Moves)
	stats.Moves = n
	if err != nil {
		return nil, stats, err
	}
	if err := check(tree, opts); err != nil {
		return nil, stats, err
	}
	return tree, stats, nil
}

// ApplyMoves replays moves on tree in order and returns how many were
// applied. It stops at the first move that fails or when ctx is cancelled.
func ApplyMoves(ctx context.Context, tree *rect.Tree, moves []manifest.Move) (int, error) {
	hooks := observability.Pipeline()
	for i, mv := range moves {
		if err := ctx.Err(); err != nil {
			return i, errors.Wrap(errors.ErrCodeCancelled, err, "moves stopped after %d of %d", i, len(moves))
		}
		err := applyMove(tree, mv)
		hooks.OnMove(ctx, mv.Side, err)
		if err != nil {
			return i, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	return len(moves), nil
}

func applyMove(tree *rect.Tree, mv manifest.Move) error {
	side, err := rect.ParseSide(mv.Side)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMove, err, "invalid side")
	}
	s, ok := rect.FindLeaf(tree.Root(), mv.Tile)
	if !ok {
		return errors.New(errors.ErrCodeTileNotFound, "tile %q not found", mv.Tile)
	}
	target, ok := rect.FindLeaf(tree.Root(), mv.Target)
	if !ok {
		return errors.New(errors.ErrCodeTileNotFound, "tile %q not found", mv.Target)
	}
	if _, err := tree.Move(s, target, side); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMove, err, "move %s %s of %s", mv.Tile, side, mv.Target)
	}
	return nil
}

func check(tree *rect.Tree, opts Options) error {
	if !opts.Check {
		return nil
	}
	if err := rect.Validate(tree.Root()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "tree check failed")
	}
	return nil
}
