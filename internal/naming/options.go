// Package naming parses free-form personal names into layout-tagged
// components and renders them with corrected capitalization.
//
// A Parser is built once from Options and an optional surname override
// table, and is safe for concurrent use. Each call to Parse returns a fresh
// Name that is never shared with other calls.
package naming

import "strings"

const (
	// DefaultInitialsLength is the maximum number of initials accepted when
	// Options.Initials is left at zero.
	DefaultInitialsLength = 2
	minInitialsLength     = 1
	maxInitialsLength     = 3
)

// Options holds parser settings. The zero value is a usable configuration
// with every feature switched off and two-letter initials.
type Options struct {
	// Initials is the maximum number of initials (1-3). Out of range values
	// are clamped; zero selects DefaultInitialsLength.
	Initials int `mapstructure:"initials"`

	// LcPrefix lower-cases surname prefixes ("van der Berg").
	LcPrefix bool `mapstructure:"lc_prefix"`

	// ForceCase appends the cased unmatched tail to CaseAll output.
	ForceCase bool `mapstructure:"force_case"`

	// AutoClean retries a failed parse once on the cleaned input.
	AutoClean bool `mapstructure:"auto_clean"`

	// AllowReversed accepts "Smith, Mr John" style input.
	AllowReversed bool `mapstructure:"allow_reversed"`

	// JointNames accepts two-person layouts such as "Mr A & Ms B Smith".
	JointNames bool `mapstructure:"joint_names"`

	// ExtendedTitles enables the professional title groups and the suffix
	// component.
	ExtendedTitles bool `mapstructure:"extended_titles"`

	// Salutation is the greeting word, e.g. "Dear".
	Salutation string `mapstructure:"salutation"`

	// SalutationDefault is the fallback noun used when no title or surname
	// can be rendered, e.g. "Sir".
	SalutationDefault string `mapstructure:"salutation_default"`
}

// normalized returns a copy with the initials length clamped and the
// salutation words pre-cased.
func (o Options) normalized() Options {
	switch {
	case o.Initials == 0:
		o.Initials = DefaultInitialsLength
	case o.Initials < minInitialsLength:
		o.Initials = minInitialsLength
	case o.Initials > maxInitialsLength:
		o.Initials = maxInitialsLength
	}
	o.Salutation = caseWords(strings.TrimSpace(o.Salutation))
	o.SalutationDefault = caseWords(strings.TrimSpace(o.SalutationDefault))
	return o
}

// ClampInitials reports the initials length a Parser would use for n.
func ClampInitials(n int) int {
	return Options{Initials: n}.normalized().Initials
}
