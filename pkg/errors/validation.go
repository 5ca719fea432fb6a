package errors

import (
	"math"
	"regexp"
	"unicode"
)

const (
	maxTileIDLength = 128
	maxLabelLength  = 256

	// MaxDimension bounds tile sizes accepted from manifests and the API.
	MaxDimension = 1 << 20
)

// tileIDRegex matches ids that are safe to embed in file names, DOT graphs and
// SVG element ids.
var tileIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateTileID validates a tile identifier.
//
// Validation rules:
//   - Id cannot be empty
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
func ValidateTileID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "tile id cannot be empty")
	}
	if len(id) > maxTileIDLength {
		return New(ErrCodeInvalidInput, "tile id too long (max %d characters)", maxTileIDLength)
	}
	if !tileIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid tile id: %q", id)
	}
	return nil
}

// ValidateLabel validates a free-form tile label. Empty labels are allowed.
func ValidateLabel(label string) error {
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "label contains invalid control characters")
		}
	}
	return nil
}

// ValidateDimensions checks that a tile's native size is positive, finite
// and no larger than [MaxDimension] on either axis.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "tile size must be finite, got %gx%g", width, height)
		}
		if v <= 0 {
			return New(ErrCodeInvalidInput, "tile size must be positive, got %gx%g", width, height)
		}
		if v > MaxDimension {
			return New(ErrCodeInvalidInput, "tile size too large (max %d), got %gx%g", MaxDimension, width, height)
		}
	}
	return nil
}

// ValidateAspect checks a target aspect ratio (width / height).
func ValidateAspect(ratio float64) error {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) || ratio <= 0 {
		return New(ErrCodeInvalidAspect, "aspect ratio must be positive and finite, got %g", ratio)
	}
	return nil
}
