package naming

import (
	"regexp"
	"strings"
)

var standaloneConjunction = regexp.MustCompile(`(?i)(?:^|\s)(?:and|&)(?:\s|$)`)

// CaseComponents returns the component values with casing applied.
func (n *Name) CaseComponents() Components {
	var cased Components
	for _, k := range n.comps.Keys() {
		cased.set(k, n.caseKey(k))
	}
	return cased
}

func (n *Name) caseKey(k Key) string {
	return caseComponent(k, n.comps.Value(k), n.parser.opts.LcPrefix, n.parser.overrides)
}

// CaseAll renders the cased components in layout order. With ForceCase,
// an unmatched tail is surname-cased and appended.
func (n *Name) CaseAll() string {
	var parts []string
	for _, k := range n.props.Type.Order() {
		if n.comps.Has(k) {
			parts = append(parts, n.caseKey(k))
		}
	}
	if n.props.Error && n.parser.opts.ForceCase && n.props.NonMatching != "" {
		parts = append(parts, n.parser.CaseSurname(n.props.NonMatching, n.parser.opts.LcPrefix))
	}
	return strings.Join(parts, " ")
}

// Salutation renders a greeting such as "Dear Mr Smith". Records with an
// error, an estate precursor or no title fall back to the default noun,
// pluralized when the raw input names two parties.
func (n *Name) Salutation() (string, error) {
	opts := n.parser.opts
	var missing []string
	if opts.Salutation == "" {
		missing = append(missing, "salutation")
	}
	if opts.SalutationDefault == "" {
		missing = append(missing, "salutation_default")
	}
	if len(missing) > 0 {
		return "", &ConfigurationError{Missing: missing}
	}

	if n.props.Error || n.isEstate() || !n.comps.Has(Title1) {
		def := opts.SalutationDefault
		if standaloneConjunction.MatchString(n.input) {
			def += "s"
		}
		return opts.Salutation + " " + def, nil
	}

	parts := []string{opts.Salutation}
	for _, k := range n.props.Type.Order() {
		if skipInSalutation(k) || !n.comps.Has(k) {
			continue
		}
		parts = append(parts, n.caseKey(k))
		if k == Conjunction1 && n.props.Type == LayoutJointInitials {
			parts = append(parts, n.caseKey(Title1))
		}
	}
	return strings.Join(parts, " "), nil
}

// skipInSalutation reports keys left out of a personal greeting.
func skipInSalutation(k Key) bool {
	return k.isInitials() || k == Precursor
}

func (n *Name) isEstate() bool {
	p := n.comps.Get(Precursor)
	return p.Present && strings.Contains(strings.ToLower(p.Value), "estate")
}
