package site

import (
	"fmt"
	"strings"
)

const (
	minNameLength = 5
	maxNameLength = 50

	// sanitizedNameLength caps names derived from fallback fields.
	sanitizedNameLength = 15
)

// ValidName reports whether a site name has an acceptable trimmed length.
func ValidName(name string) bool {
	length := len(strings.TrimSpace(name))
	return length >= minNameLength && length <= maxNameLength
}

// SanitizeName strips all whitespace, caps the length and lower-cases, so
// a fallback field like "Kampala Central Division" becomes a usable name.
func SanitizeName(name string) string {
	stripped := strings.Join(strings.Fields(name), "")
	if len(stripped) > sanitizedNameLength {
		stripped = stripped[:sanitizedNameLength]
	}
	return strings.ToLower(stripped)
}

// PickAvailableName returns the first non-empty candidate. Candidates are
// evaluated in priority order: explicit name, then parish, county,
// district.
func PickAvailableName(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// SequentialName formats the minted generated name for a counter value.
func SequentialName(count int64) string {
	return fmt.Sprintf("site_%d", count)
}
