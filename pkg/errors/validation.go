package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// hexColorRegex matches #rgb, #rgba, #rrggbb and #rrggbbaa.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// cssNameRegex matches bare color keywords such as "teal" or "none".
var cssNameRegex = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)

// ValidateColor validates a fill color. Hex colors and bare CSS keywords are
// accepted; anything that could break out of an attribute is not.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if hexColorRegex.MatchString(color) || cssNameRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidColor, "invalid color: %q", color)
}

// shapeIDRegex matches ids safe to embed in attributes and URLs.
var shapeIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)

// ValidateShapeID validates a shape id supplied by a caller.
//
// Validation rules:
//   - Id cannot be empty
//   - Maximum length of 128 characters
//   - Letters, digits, '_', '.', ':' and '-' only
func ValidateShapeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "shape id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "shape id too long (max 128 characters)")
	}
	if !shapeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid shape id: %q", id)
	}
	return nil
}

// ValidateDocumentName validates a human-readable document name.
func ValidateDocumentName(name string) error {
	if len(name) > 200 {
		return New(ErrCodeInvalidInput, "document name too long (max 200 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates an output file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}
