package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxIDLength bounds component, snap point and template identifiers.
const maxIDLength = 128

// ValidateID validates a component, snap point or template identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or whitespace
//   - Maximum length of 128 characters
func ValidateID(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "%s id cannot be empty", kind)
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "%s id too long (max %d characters)", kind, maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "%s id %q contains whitespace or control characters", kind, id)
		}
	}

	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidID, "%s id %q cannot contain path separators", kind, id)
	}

	return nil
}

// ValidateFinite rejects NaN and infinite values. The engine assumes finite
// input; callers run this at the boundary.
func ValidateFinite(field string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "%s must be finite, got %v", field, v)
		}
	}
	return nil
}

// ValidateRoom checks that all room extents are positive and finite.
func ValidateRoom(width, depth, height float64) error {
	if err := ValidateFinite("room dimensions", width, depth, height); err != nil {
		return err
	}
	if width <= 0 || depth <= 0 || height <= 0 {
		return New(ErrCodeDegenerateRoom, "room dimensions must be positive, got %gx%gx%g", width, depth, height)
	}
	return nil
}
