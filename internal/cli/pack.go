package cli

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hyperair/imgpack/pkg/pipeline"
)

// packOpts holds the flags of the pack command.
type packOpts struct {
	packFlags

	output     string  // output file, base path for several formats, or "-" for stdout
	formats    string  // comma-separated output formats
	width      float64 // rendered collage width; zero keeps the native width
	showLabels bool    // draw tile labels in the wireframe
	refresh    bool    // bypass cached layouts and renders
}

// packCommand creates the pack command, the main entry point of imgpack.
func (c *CLI) packCommand() *cobra.Command {
	var opts packOpts

	cmd := &cobra.Command{
		Use:   "pack [manifest.toml | WxH[:label]...]",
		Short: "Pack tiles into a collage layout",
		Long: `Pack tiles into a collage layout.

Tiles come either from a TOML manifest or from size arguments:

  imgpack pack photos.toml
  imgpack pack 4000x3000:beach 3000x4000:dunes 1200x1200

The packer merges tiles greedily until one rectangle is left, choosing the
orientation of every merge so the collage gets close to the target aspect
ratio. Moves listed in the manifest are applied afterwards.

Layouts and renders are cached locally; use --refresh to recompute them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPack(cmd.Context(), args, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, base path for several formats, or - for stdout")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, dot, tree-svg (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "rendered width (default: native width)")
	cmd.Flags().BoolVar(&opts.showLabels, "labels", false, "draw tile labels")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

// runPack loads the tiles, runs the pipeline and writes one file per format.
func (c *CLI) runPack(ctx context.Context, args []string, opts packOpts) error {
	m, input, err := loadManifest(args)
	if err != nil {
		return err
	}

	popts, err := opts.options()
	if err != nil {
		return err
	}
	popts.Formats = parseFormats(opts.formats)
	popts.Width = opts.width
	popts.ShowLabels = opts.showLabels
	popts.Refresh = opts.refresh
	popts.Logger = c.Logger
	if err := pipeline.ValidateFormats(popts.Formats); err != nil {
		return err
	}
	if opts.output == "-" && len(popts.Formats) > 1 {
		return fmt.Errorf("cannot write %d formats to stdout", len(popts.Formats))
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	c.Logger.Infof("Packing %d tiles", len(m.Tiles))
	prog := newProgress(c.Logger)

	spinner := newSpinner(ctx, fmt.Sprintf("Packing %d tiles...", len(m.Tiles)))
	spinner.Start()

	result, err := runner.Execute(ctx, m, popts)
	if err != nil {
		spinner.StopWithError("Pack failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Packed %d tiles", result.Stats.Tiles))

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if opts.output == "-" {
		_, err := c.out.Write(result.Artifacts[popts.Formats[0]])
		return err
	}

	printSuccess("Collage complete")
	for _, format := range slices.Sorted(maps.Keys(result.Artifacts)) {
		path := outputPath(opts.output, input, format)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(result.Stats.Tiles, result.Stats.Merges, result.Layout.Width, result.Layout.Height, result.CacheInfo.LayoutHit)
	if input != "" && len(m.Moves) == 0 {
		printNextStep("Rearrange", appName+" edit "+input)
	}

	return nil
}
