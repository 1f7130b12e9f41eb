package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateFilename validates an output filename for a PNG download.
// It must be a simple basename: the download target is chosen by the saver,
// never by the caller-supplied name.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 255 characters
//   - No control characters or null bytes
//   - No path separators or traversal sequences
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilename, "filename cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidFilename, "filename too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidFilename, "filename cannot contain path separators")
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidFilename, "filename %q is reserved", name)
	}

	return nil
}

// ValidateScale checks that a rasterization scale factor is usable.
func ValidateScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return New(ErrCodeInvalidOptions, "scale must be a positive number, got %v", scale)
	}
	if scale > 16 {
		return New(ErrCodeInvalidOptions, "scale %v exceeds maximum of 16", scale)
	}
	return nil
}

// ValidateQuality checks that an encoder quality lies in [0, 1].
func ValidateQuality(q float64) error {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return New(ErrCodeInvalidOptions, "encoder quality must be between 0 and 1, got %v", q)
	}
	return nil
}
