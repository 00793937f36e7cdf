package naming

import "strings"

// vowelCheckedKeys are the components subject to the vowel heuristic.
var vowelCheckedKeys = []Key{GivenName1, Surname1, Surname2}

func isAllowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return strings.ContainsRune(" -'.,&/", r)
}

// illegalCharacters returns the disallowed characters of s in order of
// first appearance.
func illegalCharacters(s string) string {
	var b strings.Builder
	seen := make(map[rune]bool)
	for _, r := range s {
		if isAllowedRune(r) || seen[r] {
			continue
		}
		seen[r] = true
		b.WriteRune(r)
	}
	return b.String()
}

// hasNameSound accepts a token containing a vowel-like letter, or the
// surname Ng.
func hasNameSound(s string) bool {
	return strings.ContainsAny(strings.ToLower(s), "aeiouyj") || strings.EqualFold(s, "ng")
}

// validate collects the issues of a matched record. The record is an
// error when any issue is found.
func validate(text string, comps Components, props Properties) []Issue {
	var issues []Issue
	if props.NonMatching != "" {
		issues = append(issues, Issue{Kind: ParseMismatch, Text: props.NonMatching})
	}
	if bad := illegalCharacters(text); bad != "" {
		issues = append(issues, Issue{Kind: IllegalCharacter, Text: bad})
	}
	for _, k := range vowelCheckedKeys {
		f := comps.Get(k)
		if f.Present && !hasNameSound(f.Value) {
			issues = append(issues, Issue{Kind: InvalidNameToken, Key: k, HasKey: true, Text: f.Value})
		}
	}
	return issues
}
