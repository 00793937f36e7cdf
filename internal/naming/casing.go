package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Overrides supplies preferred surname spellings keyed by lower-case
// surname. A nil Overrides has no entries.
type Overrides interface {
	Lookup(lower string) (string, bool)
}

var (
	macCandidate = regexp.MustCompile(`\bMac[A-Za-z]{2,}[^aciozj]\b`)
	macPrefix    = regexp.MustCompile(`\bMac([a-z])`)
	mcPrefix     = regexp.MustCompile(`\bMc([a-z])`)
)

// CaseSurname capitalizes a surname. An override entry wins outright;
// otherwise every word is capitalized, Mac and Mc prefixes are split
// ("MacNay", "McDonald") except for known exceptions, and with lcPrefix
// every word but the last is lower-cased ("van der Berg").
func CaseSurname(text string, lcPrefix bool, overrides Overrides) string {
	if overrides != nil {
		if canon, ok := overrides.Lookup(strings.ToLower(text)); ok {
			return canon
		}
	}

	s := capitalizeAfterBoundaries(strings.ToLower(text))

	if macCandidate.MatchString(s) {
		s = macPrefix.ReplaceAllStringFunc(s, upperLast)
		for _, exc := range macExceptions {
			s = strings.ReplaceAll(s, splitMac(exc), exc)
		}
	} else if strings.Contains(s, "Mc") {
		s = mcPrefix.ReplaceAllStringFunc(s, upperLast)
	}

	for from, to := range fixedCorrections {
		s = strings.ReplaceAll(s, from, to)
	}

	if lcPrefix {
		s = lowerLeadingWords(s)
	}
	return s
}

// capitalizeAfterBoundaries upper-cases every letter that starts the
// string or follows a character other than a letter, digit or underscore.
func capitalizeAfterBoundaries(s string) string {
	out := []rune(s)
	boundary := true
	for i, r := range out {
		if boundary {
			out[i] = unicode.ToUpper(r)
		}
		boundary = !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	}
	return string(out)
}

// upperLast upper-cases the final byte of a regexp match such as "Macn".
func upperLast(m string) string {
	return m[:len(m)-1] + strings.ToUpper(m[len(m)-1:])
}

// splitMac returns the form the Mac pass gives an exception, e.g.
// "Machlin" -> "MacHlin".
func splitMac(exc string) string {
	return exc[:3] + strings.ToUpper(exc[3:4]) + exc[4:]
}

// lowerLeadingWords lower-cases the first letter of every word that is
// followed by a space.
func lowerLeadingWords(s string) string {
	words := strings.Split(s, " ")
	for i := 0; i < len(words)-1; i++ {
		w := words[i]
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToLower(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// caseWords lower-cases s and capitalizes each letter that follows a word
// boundary, so "O'NEIL" becomes "O'Neil" and "LT.COL." becomes "Lt.Col.".
func caseWords(s string) string {
	if s == "" {
		return ""
	}
	return capitalizeAfterBoundaries(cases.Lower(language.Und).String(s))
}

func caseInitials(s string) string {
	return strings.ToUpper(s)
}

// caseSuffix returns the canonical suffix spelling, keeping a trailing dot.
func caseSuffix(s string) string {
	bare := strings.TrimSuffix(s, ".")
	canon, ok := suffixes[strings.ToLower(bare)]
	if !ok {
		return caseWords(s)
	}
	return canon + s[len(bare):]
}

// caseComponent applies the casing rule for k.
func caseComponent(k Key, v string, lcPrefix bool, overrides Overrides) string {
	switch {
	case k.isInitials():
		return caseInitials(v)
	case k.isSurname():
		return CaseSurname(v, lcPrefix, overrides)
	case k == Suffix:
		return caseSuffix(v)
	default:
		return caseWords(v)
	}
}
