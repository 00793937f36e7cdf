package naming

// Parser classifies name strings. It is immutable once built.
type Parser struct {
	opts      Options
	overrides Overrides
	grammar   grammar
}

// New builds a Parser. overrides may be nil.
func New(opts Options, overrides Overrides) *Parser {
	opts = opts.normalized()
	return &Parser{
		opts:      opts,
		overrides: overrides,
		grammar:   newGrammar(opts),
	}
}

// Options returns the normalized options the parser was built with.
func (p *Parser) Options() Options {
	return p.opts
}

// Overrides returns the surname override table, which may be nil.
func (p *Parser) Overrides() Overrides {
	return p.overrides
}

// CaseSurname cases text with the parser's override table.
func (p *Parser) CaseSurname(text string, lcPrefix bool) string {
	return CaseSurname(text, lcPrefix, p.overrides)
}

// Parse matches text against the layout templates and validates the
// result. With AutoClean set, a failed parse is retried once on
// Clean(text); the returned Name is the retry's outcome.
func (p *Parser) Parse(text string) *Name {
	n := p.parse(text, text)
	if n.props.Error && p.opts.AutoClean {
		n = p.parse(text, Clean(text))
		n.props.Cleaned = true
	}
	return n
}

func (p *Parser) parse(input, text string) *Name {
	comps, props := p.grammar.match(text)
	issues := validate(text, comps, props)
	props.Error = len(issues) > 0
	return &Name{
		parser: p,
		input:  input,
		text:   text,
		comps:  comps,
		props:  props,
		issues: issues,
	}
}

// Name is the result of a single parse.
type Name struct {
	parser *Parser
	input  string
	text   string
	comps  Components
	props  Properties
	issues []Issue
}

// Input returns the text passed to Parse.
func (n *Name) Input() string { return n.input }

// Matched returns the text the grammar ran on: the input, or its cleaned
// form after an auto-clean retry.
func (n *Name) Matched() string { return n.text }

// HasError reports whether any issue was found.
func (n *Name) HasError() bool { return n.props.Error }

// Components returns the raw component values.
func (n *Name) Components() Components { return n.comps }

// Properties returns the layout, person count, unmatched tail and error flag.
func (n *Name) Properties() Properties { return n.props }

// Issues returns the reasons the parse was flagged, if any.
func (n *Name) Issues() []Issue {
	return append([]Issue(nil), n.issues...)
}
