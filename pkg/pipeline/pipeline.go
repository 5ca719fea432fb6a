// Package pipeline runs manifests through imgpack's pack → edit → render
// pipeline.
//
// This package is shared by the CLI and the API server so that both pack,
// cache and render in exactly the same way.
//
// # Stages
//
//  1. Pack: build a rectangle tree from the manifest tiles with pack.Packer
//  2. Edit: replay the manifest's scripted moves on the tree
//  3. Layout: flatten the tree into a [layout.Layout]
//  4. Render: produce the requested formats (JSON, wireframe SVG, DOT, tree SVG)
//
// Stages 1 to 3 are cached together under a key derived from the manifest
// content and the packing options; stage 4 is cached per format.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, m, pipeline.Options{
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hyperair/imgpack/pkg/cache"
	"github.com/hyperair/imgpack/pkg/core/pack"
	"github.com/hyperair/imgpack/pkg/core/rect"
	"github.com/hyperair/imgpack/pkg/errors"
	"github.com/hyperair/imgpack/pkg/layout"
	"github.com/hyperair/imgpack/pkg/manifest"
)

// Format constants for output formats.
const (
	FormatJSON    = "json"
	FormatSVG     = "svg"
	FormatDOT     = "dot"
	FormatTreeSVG = "tree-svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:    true,
	FormatSVG:     true,
	FormatDOT:     true,
	FormatTreeSVG: true,
}

// FormatExtensions maps formats to the file extension the CLI writes them with.
var FormatExtensions = map[string]string{
	FormatJSON:    ".json",
	FormatSVG:     ".svg",
	FormatDOT:     ".dot",
	FormatTreeSVG: ".tree.svg",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. Zero values fall back to the manifest
// and then to the package defaults. It is JSON-tagged for API requests.
type Options struct {
	// Pack options
	TargetAspect float64 `json:"target_aspect,omitempty"`
	Metric       string  `json:"metric,omitempty"`
	Refresh      bool    `json:"refresh,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Width      float64  `json:"width,omitempty"`
	ShowLabels bool     `json:"show_labels,omitempty"`

	// Check runs rect.Validate on the tree after every stage that mutates it.
	Check bool `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the packed and edited tree. It is nil when the layout came
	// from the cache.
	Tree *rect.Tree

	// ManifestHash is the content hash of the normalized manifest.
	ManifestHash string

	Layout    layout.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Tiles      int
	Merges     int
	Moves      int
	PackTime   time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(slices.Sorted(maps.Keys(ValidFormats)), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMetric checks that a metric name is registered.
func ValidateMetric(name string) error {
	if _, err := pack.MetricByName(name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidMetric, err, "invalid metric")
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// WithManifest fills options the caller left unset from m.
func (o Options) WithManifest(m *manifest.Manifest) Options {
	if o.TargetAspect == 0 {
		o.TargetAspect = m.TargetAspect
	}
	if o.Metric == "" {
		o.Metric = m.Metric
	}
	return o
}

// ValidateAndSetDefaults checks the options and applies defaults. Calling it
// again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.TargetAspect == 0 {
		o.TargetAspect = pack.DefaultTargetAspect
	}
	if err := errors.ValidateAspect(o.TargetAspect); err != nil {
		return err
	}
	if o.Metric == "" {
		o.Metric = pack.DefaultMetric
	}
	if err := ValidateMetric(o.Metric); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Width < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width must not be negative, got %g", o.Width)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for packing.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		TargetAspect: o.TargetAspect,
		Metric:       o.Metric,
	}
}

// ArtifactKeyOpts returns cache key options for rendering one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Width:      o.Width,
		ShowLabels: o.ShowLabels,
	}
}

func (o *Options) String() string {
	return fmt.Sprintf("aspect=%.4g metric=%s formats=%s", o.TargetAspect, o.Metric, strings.Join(o.Formats, ","))
}
