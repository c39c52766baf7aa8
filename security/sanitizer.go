package security

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

const maxSanitizePasses = 4

// SanitizeText strips all markup, null bytes and surrounding space, then caps the length in runes.
// Entities are decoded for readability, and the policy runs again until decoding yields no new markup.
func SanitizeText(input string, maxRunes int) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = stripMarkup(input)
	input = strings.TrimSpace(input)

	if maxRunes > 0 && utf8.RuneCountInString(input) > maxRunes {
		input = string([]rune(input)[:maxRunes])
	}
	return input
}

func stripMarkup(input string) string {
	current := input
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(htmlPolicy.Sanitize(current))
		if next == current {
			return next
		}
		current = next
	}
	// Still changing: keep the escaped form.
	return htmlPolicy.Sanitize(current)
}
