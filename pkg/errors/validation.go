package errors

import (
	"strings"
	"unicode"
)

// MaxIDLength bounds block and grid identifiers.
const MaxIDLength = 128

// ValidateID validates a block or grid identifier. Empty identifiers are
// allowed (the document loader assigns positional ones).
//
// The validation rules are intentionally conservative:
//   - No control characters
//   - No whitespace
//   - No dots, which are reserved for positional paths such as "r0.e1"
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return nil
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidDocument, "id too long (max %d characters)", MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "id %q contains control characters", id)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidDocument, "id %q contains whitespace", id)
		}
	}

	if strings.Contains(id, ".") {
		return New(ErrCodeInvalidDocument, "id %q contains '.', which is reserved for positional ids", id)
	}

	return nil
}

// ValidatePath validates a document path supplied by a user.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
