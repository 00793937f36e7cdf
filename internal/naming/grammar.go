package naming

import "strings"

// step is one component of a layout template. Steps without a key (the
// comma of reversed layouts) are matched but not stored.
type step struct {
	kind     matcherKind
	key      Key
	optional bool
	store    bool
}

func req(kind matcherKind, key Key) step { return step{kind: kind, key: key, store: true} }
func opt(kind matcherKind, key Key) step {
	return step{kind: kind, key: key, optional: true, store: true}
}

var comma = step{kind: matchComma}

type template struct {
	layout Layout
	number int
	steps  []step
}

// Joint layouts. Each must precede every template that is a syntactic
// prefix of it.
var jointTemplates = []template{
	{LayoutJointSeparate, 2, []step{
		req(matchTitle, Title1), req(matchInitials, Initials1), req(matchSurname, Surname1),
		req(matchConjunction, Conjunction1),
		req(matchTitle, Title2), req(matchInitials, Initials2), req(matchSurname, Surname2),
	}},
	{LayoutJointTitlesBoth, 2, []step{
		req(matchTitle, Title1), req(matchConjunction, Conjunction1), req(matchTitle, Title2),
		req(matchInitials, Initials1), req(matchConjunction, Conjunction2), req(matchInitials, Initials2),
		req(matchSurname, Surname1),
	}},
	{LayoutJointShared, 2, []step{
		req(matchTitle, Title1), req(matchInitials, Initials1), req(matchConjunction, Conjunction1),
		req(matchTitle, Title2), req(matchInitials, Initials2), req(matchSurname, Surname1),
	}},
	{LayoutJointTitlesOne, 2, []step{
		req(matchTitle, Title1), req(matchConjunction, Conjunction1), req(matchTitle, Title2),
		req(matchInitials, Initials1), req(matchSurname, Surname1),
	}},
	{LayoutJointInitials, 2, []step{
		req(matchTitle, Title1), req(matchInitials, Initials1), req(matchConjunction, Conjunction1),
		req(matchInitials, Initials2), req(matchSurname, Surname1),
	}},
}

// singleForms lists the leading components of the one-person layouts, most
// specific first. The surname (and optional suffix) follows.
var singleForms = []struct {
	layout Layout
	steps  []step
}{
	{LayoutTitleGivenMiddle, []step{req(matchTitle, Title1), req(matchGivenName, GivenName1), req(matchMiddleInitial, Initials1)}},
	{LayoutTitleGiven, []step{req(matchTitle, Title1), req(matchGivenName, GivenName1)}},
	{LayoutTitleInitials, []step{req(matchTitle, Title1), req(matchInitials, Initials1)}},
	{LayoutGivenMiddle, []step{req(matchGivenName, GivenName1), req(matchMiddleInitial, Initials1)}},
	{LayoutGiven, []step{req(matchGivenName, GivenName1)}},
	{LayoutInitials, []step{req(matchInitials, Initials1)}},
}

// buildTemplates returns the ordered template list for opts. Reversed
// layouts need a comma after the surname so they cannot match forward
// input; they are tried first so a forward template cannot claim the
// surname of "De La Cruz, Mr John" as initials.
func buildTemplates(opts Options) []template {
	var out []template
	if opts.AllowReversed {
		for _, f := range singleForms {
			steps := []step{req(matchSurname, Surname1)}
			if opts.ExtendedTitles {
				steps = append(steps, opt(matchSuffix, Suffix))
			}
			steps = append(steps, comma)
			steps = append(steps, f.steps...)
			out = append(out, template{layout: f.layout, number: 1, steps: steps})
		}
	}
	if opts.JointNames {
		out = append(out, jointTemplates...)
	}
	for _, f := range singleForms {
		steps := []step{opt(matchPrecursor, Precursor)}
		steps = append(steps, f.steps...)
		steps = append(steps, req(matchSurname, Surname1))
		if opts.ExtendedTitles {
			steps = append(steps, opt(matchSuffix, Suffix))
		}
		out = append(out, template{layout: f.layout, number: 1, steps: steps})
	}
	return out
}

// match runs a single template against s. On success it returns the
// populated components and the unconsumed tail.
func (t template) match(m *matcherSet, s string) (Components, string, bool) {
	var comps Components
	rest := s
	for _, st := range t.steps {
		val, n, ok := m[st.kind].match(rest)
		if !ok {
			if st.optional {
				continue
			}
			return Components{}, "", false
		}
		if st.store {
			comps.set(st.key, val)
		}
		rest = rest[n:]
	}
	return comps, strings.TrimSpace(rest), true
}

type grammar struct {
	matchers  *matcherSet
	templates []template
}

func newGrammar(opts Options) grammar {
	return grammar{matchers: matchersFor(opts), templates: buildTemplates(opts)}
}

// match tries each template in order; the first that matches a prefix of
// the trimmed input wins. With no match the whole input is unmatched.
func (g grammar) match(text string) (Components, Properties) {
	s := strings.TrimSpace(text)
	for _, t := range g.templates {
		comps, rest, ok := t.match(g.matchers, s)
		if ok {
			return comps, Properties{Type: t.layout, Number: t.number, NonMatching: rest}
		}
	}
	return Components{}, Properties{Type: LayoutUnknown, NonMatching: s}
}
