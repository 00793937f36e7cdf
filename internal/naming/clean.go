package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Clean folds accents, drops characters a name cannot contain and
// collapses whitespace. Clean(Clean(s)) == Clean(s).
func Clean(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if isAllowedRune(r) {
			return r
		}
		return -1
	}, folded)
	return strings.Join(strings.Fields(stripped), " ")
}
