package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperair/imgpack/pkg/errors"
)

// Named aspect ratios accepted by [ParseAspect].
var namedAspects = map[string]float64{
	"a4":           210.0 / 297.0,
	"a4-landscape": 297.0 / 210.0,
	"letter":       8.5 / 11,
	"square":       1,
}

// ParseSize parses a tile given as "WxH" or "WxH:label", e.g. "4000x3000"
// or "1920x1080:wallpaper".
func ParseSize(s string) (Tile, error) {
	dims, label, _ := strings.Cut(s, ":")
	ws, hs, ok := strings.Cut(strings.ToLower(dims), "x")
	if !ok {
		return Tile{}, errors.New(errors.ErrCodeInvalidInput, "invalid size %q, want WxH", s)
	}
	w, err1 := strconv.ParseFloat(strings.TrimSpace(ws), 64)
	h, err2 := strconv.ParseFloat(strings.TrimSpace(hs), 64)
	if err1 != nil || err2 != nil {
		return Tile{}, errors.New(errors.ErrCodeInvalidInput, "invalid size %q, want WxH", s)
	}
	if err := errors.ValidateDimensions(w, h); err != nil {
		return Tile{}, err
	}
	return Tile{Label: label, Width: w, Height: h}, nil
}

// FromSizes builds a manifest from "WxH[:label]" strings. Tiles get
// generated ids, the same ones [Parse] would assign.
func FromSizes(sizes []string) (*Manifest, error) {
	m := &Manifest{Tiles: make([]Tile, 0, len(sizes))}
	for _, s := range sizes {
		t, err := ParseSize(s)
		if err != nil {
			return nil, err
		}
		m.Tiles = append(m.Tiles, t)
	}
	if err := m.Normalize(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseAspect parses a target aspect ratio written as a number ("0.75"), a
// ratio ("3:4" or "3/4") or a name ("a4", "a4-landscape", "letter",
// "square").
func ParseAspect(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := namedAspects[s]; ok {
		return r, nil
	}

	var r float64
	if a, b, ok := cutAny(s, ":/"); ok {
		n, err1 := strconv.ParseFloat(a, 64)
		d, err2 := strconv.ParseFloat(b, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, errors.New(errors.ErrCodeInvalidAspect, "invalid aspect ratio %q", s)
		}
		r = n / d
	} else {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.New(errors.ErrCodeInvalidAspect, "invalid aspect ratio %q", s)
		}
		r = v
	}
	if err := errors.ValidateAspect(r); err != nil {
		return 0, err
	}
	return r, nil
}

func cutAny(s, seps string) (before, after string, found bool) {
	if i := strings.IndexAny(s, seps); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

// FormatSize renders a size the way [ParseSize] reads it.
func FormatSize(w, h float64) string {
	return fmt.Sprintf("%gx%g", w, h)
}
