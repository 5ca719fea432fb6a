// Package manifest reads the tile lists imgpack packs.
//
// A manifest is a TOML file listing tiles by native pixel size, the packing
// options, and optionally a script of moves to replay on the packed tree:
//
//	target_aspect = 0.7071
//	metric = "closeness"
//
//	[[tile]]
//	id = "beach"
//	label = "Beach, 2019"
//	width = 4000
//	height = 3000
//
//	[[move]]
//	tile = "beach"
//	target = "dunes"
//	side = "left"
//
// Tiles keep their manifest order; the packer is order sensitive. The same
// structure can be built from `WxH[:label]` strings with [FromSizes].
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/hyperair/imgpack/pkg/core/pack"
	"github.com/hyperair/imgpack/pkg/core/rect"
	"github.com/hyperair/imgpack/pkg/errors"
)

// Manifest is a parsed tile manifest.
type Manifest struct {
	// TargetAspect is the desired width/height of the collage. Zero means
	// the packer default.
	TargetAspect float64 `toml:"target_aspect,omitempty" json:"target_aspect,omitempty"`
	Metric       string  `toml:"metric,omitempty" json:"metric,omitempty"`

	Tiles []Tile `toml:"tile" json:"tiles"`
	Moves []Move `toml:"move,omitempty" json:"moves,omitempty"`
}

// Tile is one source image, described by its native size.
type Tile struct {
	ID     string  `toml:"id" json:"id,omitempty"`
	Label  string  `toml:"label,omitempty" json:"label,omitempty"`
	Width  float64 `toml:"width" json:"width"`
	Height float64 `toml:"height" json:"height"`
}

// Move re-inserts Tile next to Target on the given side after packing.
type Move struct {
	Tile   string `toml:"tile" json:"tile"`
	Target string `toml:"target" json:"target"`
	Side   string `toml:"side" json:"side"`
}

// tileNamespace seeds the ids of tiles that do not name one, so the same
// manifest always yields the same ids.
var tileNamespace = uuid.MustParse("6f1d9b8e-3c1a-4f55-9d1e-4b7e0a2c9f10")

// Parse decodes and validates a manifest. Keys the manifest does not define
// are errors rather than being silently ignored.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	return &m, nil
}

// ReadFile reads and parses the manifest at path.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Encode writes m back out as TOML. The output is stable for a given
// manifest and is what cache keys are derived from.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize gives every tile without an id a generated one and validates
// the result. Manifests built in code or decoded from JSON go through it
// before use.
func (m *Manifest) Normalize() error {
	m.assignIDs()
	return m.Validate()
}

func (m *Manifest) assignIDs() {
	for i := range m.Tiles {
		t := &m.Tiles[i]
		if t.ID != "" {
			continue
		}
		name := fmt.Sprintf("%d:%gx%g:%s", i, t.Width, t.Height, t.Label)
		t.ID = uuid.NewSHA1(tileNamespace, []byte(name)).String()
	}
}

// Validate reports every problem in m at once.
func (m *Manifest) Validate() error {
	var err error
	if len(m.Tiles) == 0 {
		err = multierr.Append(err, fmt.Errorf("manifest has no tiles"))
	}
	if m.TargetAspect != 0 {
		err = multierr.Append(err, errors.ValidateAspect(m.TargetAspect))
	}
	if m.Metric != "" {
		if _, e := pack.MetricByName(m.Metric); e != nil {
			err = multierr.Append(err, e)
		}
	}

	seen := make(map[string]int, len(m.Tiles))
	for i, t := range m.Tiles {
		if e := validateTile(t); e != nil {
			err = multierr.Append(err, fmt.Errorf("tile %d: %w", i+1, e))
		}
		if j, dup := seen[t.ID]; dup {
			err = multierr.Append(err, fmt.Errorf("tile %d: duplicate id %q (first used by tile %d)", i+1, t.ID, j+1))
			continue
		}
		seen[t.ID] = i
	}

	for i, mv := range m.Moves {
		if e := validateMove(mv, seen); e != nil {
			err = multierr.Append(err, fmt.Errorf("move %d: %w", i+1, e))
		}
	}

	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid manifest")
	}
	return nil
}

func validateTile(t Tile) error {
	return multierr.Combine(
		errors.ValidateTileID(t.ID),
		errors.ValidateLabel(t.Label),
		errors.ValidateDimensions(t.Width, t.Height),
	)
}

func validateMove(mv Move, tiles map[string]int) error {
	var err error
	if _, ok := tiles[mv.Tile]; !ok {
		err = multierr.Append(err, fmt.Errorf("unknown tile %q", mv.Tile))
	}
	if _, ok := tiles[mv.Target]; !ok {
		err = multierr.Append(err, fmt.Errorf("unknown target %q", mv.Target))
	}
	if mv.Tile == mv.Target {
		err = multierr.Append(err, fmt.Errorf("tile %q cannot move next to itself", mv.Tile))
	}
	if _, e := rect.ParseSide(mv.Side); e != nil {
		err = multierr.Append(err, e)
	}
	return err
}

// Leaves creates one fresh leaf per tile, in manifest order.
func (m *Manifest) Leaves() []*rect.Leaf {
	out := make([]*rect.Leaf, len(m.Tiles))
	for i, t := range m.Tiles {
		out[i] = rect.NewLeaf(t.ID, t.Label, t.Width, t.Height)
	}
	return out
}

// Rectangles is [Manifest.Leaves] typed for [pack.Packer.SetSourceRectangles].
func (m *Manifest) Rectangles() []rect.Rectangle {
	leaves := m.Leaves()
	out := make([]rect.Rectangle, len(leaves))
	for i, l := range leaves {
		out[i] = l
	}
	return out
}

// Area returns the summed native area of all tiles in pixels.
func (m *Manifest) Area() float64 {
	var a float64
	for _, t := range m.Tiles {
		a += t.Width * t.Height
	}
	return a
}
