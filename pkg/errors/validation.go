package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxIDLength is the longest identifier accepted for nodes, edges and sessions.
const MaxIDLength = 128

// ValidateID validates a caller-supplied identifier (node id, edge id,
// session id) for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No whitespace
//   - Maximum length of MaxIDLength characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "identifier cannot be empty")
	}

	if len(id) > MaxIDLength {
		return New(ErrCodeInvalidID, "identifier too long (max %d characters)", MaxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "identifier contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "identifier contains whitespace: %q", id)
		}
	}

	return nil
}

// hexColorRegex matches #rgb, #rrggbb and #rrggbbaa colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// namedColorRegex matches CSS named colors (e.g. "lightblue").
var namedColorRegex = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)

// ValidateColor validates a color string as either a hex code or a CSS color name.
// An empty color is valid; renderers fall back to a default.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if strings.HasPrefix(color, "#") {
		if !hexColorRegex.MatchString(color) {
			return New(ErrCodeInvalidInput, "invalid hex color: %q", color)
		}
		return nil
	}
	if !namedColorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color name: %q", color)
	}
	return nil
}
