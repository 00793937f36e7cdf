package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

type matcherKind int

const (
	matchPrecursor matcherKind = iota
	matchTitle
	matchConjunction
	matchInitials
	matchGivenName
	matchMiddleInitial
	matchSurname
	matchSuffix
	matchComma

	numMatchers
)

// matcher recognises one component at the start of a string. Every pattern
// is anchored, case-insensitive except for initials, and consumes the
// separator that follows the component.
type matcher struct {
	re *regexp.Regexp
}

// match returns the trimmed component text and the number of bytes
// consumed, separator included.
func (m matcher) match(s string) (string, int, bool) {
	loc := m.re.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", 0, false
	}
	return strings.TrimSpace(s[loc[2]:loc[3]]), loc[1], true
}

func newMatcher(body, sep string) matcher {
	return matcher{re: regexp.MustCompile(`(?i)^(` + body + `)` + sep)}
}

type matcherSet [numMatchers]matcher

// matcherSets is indexed by initials length and the extended-titles flag.
var matcherSets = buildMatcherSets()

func buildMatcherSets() map[int][2]*matcherSet {
	sets := make(map[int][2]*matcherSet, maxInitialsLength)
	extended := extendedTitles()
	for l := minInitialsLength; l <= maxInitialsLength; l++ {
		sets[l] = [2]*matcherSet{
			newMatcherSet(l, baseTitles),
			newMatcherSet(l, append(append([]string(nil), baseTitles...), extended...)),
		}
	}
	return sets
}

func matchersFor(opts Options) *matcherSet {
	idx := 0
	if opts.ExtendedTitles {
		idx = 1
	}
	return matcherSets[opts.Initials][idx]
}

func extendedTitles() []string {
	groups := make([]string, 0, len(extendedTitleGroups))
	for g := range extendedTitleGroups {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	var titles []string
	for _, g := range groups {
		titles = append(titles, extendedTitleGroups[g]...)
	}
	return titles
}

func newMatcherSet(initials int, titles []string) *matcherSet {
	var m matcherSet
	m[matchPrecursor] = newMatcher(`(?:`+phraseAlternation(precursors)+`)\.?`, `\s+`)
	m[matchTitle] = newMatcher(`(?:`+phraseAlternation(titles)+`)\.?`, `\s+`)
	m[matchConjunction] = newMatcher(`and|&`, `\s+`)
	// Initials, middle initials included, are upper-case only so "Jo" or a
	// repeated title reads as a word rather than a pair of initials.
	m[matchInitials] = newMatcher(fmt.Sprintf(`(?-i:(?:[A-Z]\.?\s?){1,%d})`, initials), `(?:\s+|$)`)
	m[matchGivenName] = newMatcher(fmt.Sprintf(`[a-z]{%d,}(?:-[a-z]{2,})?`, initials+1), `(?:\s+|$)`)
	m[matchMiddleInitial] = newMatcher(`(?-i:[A-Z])\.?`, `(?:\s+|$)`)
	m[matchSurname] = newMatcher(surnamePattern(), `\s*`)
	m[matchSuffix] = newMatcher(`(?:`+phraseAlternation(suffixWords())+`)\.?`, `(?:\s+|$|\b)`)
	m[matchComma] = newMatcher(`\s*,`, `\s*`)
	return &m
}

// surnamePattern matches zero or more particles, a core of at least two
// letters, and any number of hyphenated continuations of the same shape.
func surnamePattern() string {
	part := `(?:(?:` + literalAlternation(surnamePrefixes) + `)\s+|` +
		literalAlternation(surnameAttachedPrefixes) + `)*[a-z]{2,}`
	return part + `(?:-` + part + `)*`
}

func suffixWords() []string {
	words := make([]string, 0, len(suffixes))
	for w := range suffixes {
		words = append(words, w)
	}
	return words
}

// phraseAlternation joins multi-word entries so each inner word may carry
// a trailing dot. Longer entries come first.
func phraseAlternation(entries []string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range byLengthDesc(entries) {
		words := strings.Fields(e)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		parts = append(parts, strings.Join(words, `\.?\s+`))
	}
	return strings.Join(parts, "|")
}

func literalAlternation(entries []string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range byLengthDesc(entries) {
		parts = append(parts, regexp.QuoteMeta(e))
	}
	return strings.Join(parts, "|")
}

func byLengthDesc(entries []string) []string {
	out := append([]string(nil), entries...)
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
