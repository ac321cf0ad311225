// Package slug turns arbitrary project display names into filesystem- and
// branch-name-safe slugs.
package slug

import "strings"

// Sanitize lowercases ascii letters, keeps ascii digits, and collapses every
// run of anything else into a single hyphen. Leading input before the first
// kept character never produces a leading hyphen (prevDash starts false but
// out is also empty, so the empty-out guard suppresses it); trailing hyphens
// are trimmed. An input with no ascii-alphanumerics sanitizes to "project".
func Sanitize(input string) string {
	var out strings.Builder
	out.Grow(len(input))
	prevDash := false

	for _, ch := range input {
		mapped, ok := mapRune(ch)
		if ok {
			out.WriteRune(mapped)
			prevDash = false
			continue
		}
		if !prevDash && out.Len() > 0 {
			out.WriteByte('-')
			prevDash = true
		}
	}

	result := strings.TrimRight(out.String(), "-")
	if result == "" {
		return "project"
	}
	return result
}

func mapRune(ch rune) (rune, bool) {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		return ch, true
	case ch >= 'A' && ch <= 'Z':
		return ch - 'A' + 'a', true
	default:
		return 0, false
	}
}
