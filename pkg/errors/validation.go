package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePositive checks that v is a finite number strictly greater than zero.
// name is used in the error message (e.g. "wavelength").
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %g", name, v)
	}
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateFinite checks that v is neither NaN nor infinite.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be finite, got %g", name, v)
	}
	return nil
}

// ValidateElementID validates an element id used for selection.
//
// The validation rules follow XML name constraints loosely:
//   - No empty ids
//   - No whitespace or control characters
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidConfig, "element id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidConfig, "element id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "element id %q contains whitespace or control characters", id)
		}
	}
	return nil
}

// ValidateFontFamily validates a font family name before it is written into a
// style attribute. Semicolons and braces would corrupt the declaration list.
func ValidateFontFamily(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidFont, "font family cannot be empty")
	}
	if strings.ContainsAny(name, ";{}") {
		return New(ErrCodeInvalidFont, "font family %q contains invalid characters", name)
	}
	return nil
}

// ValidateFontPath checks that path names a TrueType or OpenType file.
func ValidateFontPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidFont, "font path cannot be empty")
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return nil
	default:
		return New(ErrCodeInvalidFont, "font file must be .ttf or .otf: %q", path)
	}
}
