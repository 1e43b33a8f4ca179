package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxRegionNameLength bounds region identifiers accepted from user input.
const maxRegionNameLength = 128

// ValidateViewport checks that viewport dimensions are finite and positive.
func ValidateViewport(width, height float64) error {
	if !finitePositive(width) {
		return New(ErrCodeInvalidViewport, "viewport width must be positive, got %v", width)
	}
	if !finitePositive(height) {
		return New(ErrCodeInvalidViewport, "viewport height must be positive, got %v", height)
	}
	return nil
}

// ValidateRegionName validates a region identifier coming from a URL or flag.
//
// The rules are conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 128 characters
func ValidateRegionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "region name cannot be empty")
	}
	if len(name) > maxRegionNameLength {
		return New(ErrCodeInvalidInput, "region name too long (max %d characters)", maxRegionNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "region name contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a dataset path from configuration.
// It rejects empty paths and null bytes; relative and absolute paths are both allowed.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidPath, "path contains invalid characters")
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
