package errors

import (
	"strings"
	"unicode"
)

// ValidateBookID validates a book identifier used in seed keys and cache keys.
// The ID participates in deterministic seeding, so anything printable is
// acceptable, but control characters and path separators are rejected because
// IDs also appear in cache file paths and URLs.
func ValidateBookID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidBookID, "book ID cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidBookID, "book ID too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBookID, "book ID contains control characters")
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidBookID, "book ID cannot contain path separators")
	}

	return nil
}

// ValidatePageNumber validates a 1-indexed page number.
func ValidatePageNumber(n int) error {
	if n < 1 {
		return New(ErrCodeInvalidPage, "page number must be >= 1, got %d", n)
	}
	return nil
}

// ValidateTemplateName validates a layout template name.
// Unknown names are not an error (the catalog falls back to a default);
// this only rejects names that are structurally unusable as catalog keys.
func ValidateTemplateName(name string) error {
	if len(name) > 64 {
		return New(ErrCodeInvalidTemplate, "template name too long (max 64 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidTemplate, "template name contains whitespace or control characters")
		}
	}
	return nil
}

// ValidateMaskSize validates mask raster dimensions.
// Masks must exactly match the canvas they will be applied to, so zero or
// negative dimensions can never be correct.
func ValidateMaskSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidMaskSize, "mask dimensions must be positive, got %dx%d", width, height)
	}
	const maxDim = 1 << 14
	if width > maxDim || height > maxDim {
		return New(ErrCodeInvalidMaskSize, "mask dimensions too large (max %d), got %dx%d", maxDim, width, height)
	}
	return nil
}
