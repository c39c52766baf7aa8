package gifting

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// displayName title-cases a recipient name for templated copy ("ana lópez" -> "Ana López").
// Casers keep state, so each call builds its own.
func displayName(name string) string {
	return cases.Title(language.English).String(name)
}
