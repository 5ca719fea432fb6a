// Package cli implements the imgpack command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hyperair/imgpack/pkg/buildinfo"
	"github.com/hyperair/imgpack/pkg/cache"
	"github.com/hyperair/imgpack/pkg/errors"
	"github.com/hyperair/imgpack/pkg/manifest"
	"github.com/hyperair/imgpack/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "imgpack"

	// envRedisAddr selects a shared Redis cache when set.
	envRedisAddr = "IMGPACK_REDIS_ADDR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// out receives command output; status lines and logs go to stderr.
	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "imgpack lays out images as a collage",
		Long:         `imgpack packs a set of images of fixed aspect ratio into one rectangular collage close to a target aspect ratio, without ever scaling an image above its native size.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.packCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache picks Redis when IMGPACK_REDIS_ADDR is set, the file cache
// otherwise. An unusable cache directory disables caching rather than
// failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(envRedisAddr); addr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: addr})
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		c.Logger.Warn("caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Input Helpers
// =============================================================================

// loadManifest reads tiles from a single manifest file, or from "WxH[:label]"
// arguments when the first argument is not a file.
func loadManifest(args []string) (*manifest.Manifest, string, error) {
	if len(args) == 0 {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "no tiles given: pass a manifest file or WxH sizes")
	}
	if len(args) == 1 && isManifestPath(args[0]) {
		m, err := manifest.ReadFile(args[0])
		return m, args[0], err
	}
	m, err := manifest.FromSizes(args)
	return m, "", err
}

func isManifestPath(arg string) bool {
	if strings.EqualFold(filepath.Ext(arg), ".toml") {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// packFlags are the packing options shared by pack, tree and edit.
type packFlags struct {
	aspect  string
	metric  string
	noCache bool
	check   bool
}

func (f *packFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.aspect, "aspect", "a", "", "target aspect ratio: number, W:H, or a4, a4-landscape, letter, square (default a4)")
	cmd.Flags().StringVarP(&f.metric, "metric", "m", "", "orientation metric: closeness (default), absdiff")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.check, "check", false, "verify tree invariants after each stage")
}

// options converts the flags to pipeline options. Unset flags are left zero
// so the manifest can supply them.
func (f *packFlags) options() (pipeline.Options, error) {
	var opts pipeline.Options
	if f.aspect != "" {
		r, err := manifest.ParseAspect(f.aspect)
		if err != nil {
			return opts, err
		}
		opts.TargetAspect = r
	}
	opts.Metric = f.metric
	opts.Check = f.check
	return opts, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// outputPath derives the file for one format. base may carry a known
// extension, which is stripped first; an empty base derives from the input
// manifest, or "collage" for size arguments.
func outputPath(base, input, format string) string {
	if base == "" {
		base = "collage"
		if input != "" {
			base = strings.TrimSuffix(input, filepath.Ext(input))
		}
	}
	exts := slices.Collect(maps.Values(pipeline.FormatExtensions))
	slices.SortFunc(exts, func(a, b string) int { return len(b) - len(a) })
	for _, ext := range exts {
		if strings.HasSuffix(base, ext) {
			base = strings.TrimSuffix(base, ext)
			break
		}
	}
	return base + pipeline.FormatExtensions[format]
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
