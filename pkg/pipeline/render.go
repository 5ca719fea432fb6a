package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperair/imgpack/pkg/errors"
	"github.com/hyperair/imgpack/pkg/layout"
	"github.com/hyperair/imgpack/pkg/observability"
	"github.com/hyperair/imgpack/pkg/render/sink"
	"github.com/hyperair/imgpack/pkg/render/treeviz"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := render(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	treeDOT := func() string {
		if dot == "" {
			dot = treeviz.ToDOT(l.Tree, treeviz.Options{Detailed: opts.ShowLabels})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			var jsonOpts []sink.JSONOption
			if opts.Width > 0 {
				jsonOpts = append(jsonOpts, sink.WithJSONWidth(opts.Width))
			}
			data, err = sink.RenderJSON(l, jsonOpts...)
		case FormatSVG:
			data = sink.RenderSVG(l, svgOptions(opts)...)
		case FormatDOT:
			data = []byte(treeDOT())
		case FormatTreeSVG:
			if l.Tree == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "layout has no tree to draw")
			}
			data, err = treeviz.RenderSVG(ctx, treeDOT())
		default:
			return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Width > 0 {
		out = append(out, sink.WithWidth(opts.Width))
	}
	if opts.ShowLabels {
		out = append(out, sink.WithLabels(), sink.WithGap(2))
	}
	return out
}
