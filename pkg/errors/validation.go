package errors

import (
	"strings"
	"unicode"
)

// ValidatePattern validates a texture file pattern for safety and
// correctness before it is used to drive directory scanning.
//
// The validation rules are intentionally conservative:
//   - No empty patterns
//   - No control characters or null bytes
//   - Maximum length of 500 characters
//
// UDIM-specific shape checks (does the pattern actually address a tiled
// sequence) are done separately by the texture package.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return New(ErrCodeInvalidPattern, "texture pattern cannot be empty")
	}

	const maxPatternLength = 500
	if len(pattern) > maxPatternLength {
		return New(ErrCodeInvalidPattern, "texture pattern too long (max %d characters)", maxPatternLength)
	}

	for _, r := range pattern {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPattern, "texture pattern contains invalid control characters")
		}
	}

	return nil
}

// ValidateOutputPath validates a user-supplied output file path.
// It rejects paths that could escape the intended directory when the
// caller joins them with a base.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "output path cannot contain path traversal sequences (..)")
	}

	return nil
}
