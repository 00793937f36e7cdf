package resolver

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/graphql-go/graphql"

	"nameparse/internal/naming"
)

// optionFields maps ParseOptions input fields to their option setters.
var optionFields = []struct {
	name  string
	typ   graphql.Input
	apply func(o *naming.Options, v interface{}) bool
}{
	{"initials", graphql.Int, func(o *naming.Options, v interface{}) bool {
		n, ok := v.(int)
		o.Initials = n
		return ok
	}},
	{"lcPrefix", graphql.Boolean, setBool(func(o *naming.Options) *bool { return &o.LcPrefix })},
	{"forceCase", graphql.Boolean, setBool(func(o *naming.Options) *bool { return &o.ForceCase })},
	{"autoClean", graphql.Boolean, setBool(func(o *naming.Options) *bool { return &o.AutoClean })},
	{"allowReversed", graphql.Boolean, setBool(func(o *naming.Options) *bool { return &o.AllowReversed })},
	{"jointNames", graphql.Boolean, setBool(func(o *naming.Options) *bool { return &o.JointNames })},
	{"extendedTitles", graphql.Boolean, setBool(func(o *naming.Options) *bool { return &o.ExtendedTitles })},
	{"salutation", graphql.String, setString(func(o *naming.Options) *string { return &o.Salutation })},
	{"salutationDefault", graphql.String, setString(func(o *naming.Options) *string { return &o.SalutationDefault })},
}

func setBool(field func(*naming.Options) *bool) func(*naming.Options, interface{}) bool {
	return func(o *naming.Options, v interface{}) bool {
		b, ok := v.(bool)
		*field(o) = b
		return ok
	}
}

func setString(field func(*naming.Options) *string) func(*naming.Options, interface{}) bool {
	return func(o *naming.Options, v interface{}) bool {
		s, ok := v.(string)
		*field(o) = s
		return ok
	}
}

// overlayOptions applies the non-null fields of a ParseOptions input on
// top of base.
func overlayOptions(base naming.Options, raw map[string]interface{}) (naming.Options, error) {
	opts := base
	for _, f := range optionFields {
		v, ok := raw[f.name]
		if !ok || v == nil {
			continue
		}
		if !f.apply(&opts, v) {
			return base, fmt.Errorf("invalid value for ParseOptions.%s", f.name)
		}
	}
	return opts, nil
}

// componentFieldName converts a component key such as "given_name_1" into
// its GraphQL field name "givenName1".
func componentFieldName(k naming.Key) string {
	parts := strings.Split(k.String(), "_")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		runes := []rune(p)
		runes[0] = unicode.ToUpper(runes[0])
		b.WriteString(string(runes))
	}
	return b.String()
}

func (r *Resolver) buildTypes() {
	if r.nameParseType != nil {
		return
	}

	componentFields := graphql.Fields{}
	for _, key := range naming.AllKeys() {
		key := key
		componentFields[componentFieldName(key)] = &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				comps, ok := p.Source.(naming.Components)
				if !ok || !comps.Has(key) {
					return nil, nil
				}
				return comps.Value(key), nil
			},
		}
	}
	r.componentsType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "NameComponents",
		Description: "Component values by key; absent components are null",
		Fields:      componentFields,
	})

	r.issueType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ParseIssue",
		Fields: graphql.Fields{
			"kind": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(naming.Issue).Kind.String(), nil
				},
			},
			"component": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					issue := p.Source.(naming.Issue)
					if !issue.HasKey {
						return nil, nil
					}
					return issue.Key.String(), nil
				},
			},
			"text": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(naming.Issue).Text, nil
				},
			},
		},
	})

	r.nameParseType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "NameParse",
		Description: "The outcome of parsing one name",
		Fields: graphql.Fields{
			"input": nameField(graphql.NewNonNull(graphql.String), func(n *naming.Name) (interface{}, error) {
				return n.Input(), nil
			}),
			"type": nameField(graphql.NewNonNull(graphql.String), func(n *naming.Name) (interface{}, error) {
				return string(n.Properties().Type), nil
			}),
			"number": nameField(graphql.NewNonNull(graphql.Int), func(n *naming.Name) (interface{}, error) {
				return n.Properties().Number, nil
			}),
			"nonMatching": nameField(graphql.NewNonNull(graphql.String), func(n *naming.Name) (interface{}, error) {
				return n.Properties().NonMatching, nil
			}),
			"error": nameField(graphql.NewNonNull(graphql.Boolean), func(n *naming.Name) (interface{}, error) {
				return n.HasError(), nil
			}),
			"cleaned": nameField(graphql.NewNonNull(graphql.Boolean), func(n *naming.Name) (interface{}, error) {
				return n.Properties().Cleaned, nil
			}),
			"issues": nameField(graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(r.issueType))), func(n *naming.Name) (interface{}, error) {
				return n.Issues(), nil
			}),
			"components": nameField(graphql.NewNonNull(r.componentsType), func(n *naming.Name) (interface{}, error) {
				return n.Components(), nil
			}),
			"casedComponents": nameField(graphql.NewNonNull(r.componentsType), func(n *naming.Name) (interface{}, error) {
				return n.CaseComponents(), nil
			}),
			"casedName": nameField(graphql.NewNonNull(graphql.String), func(n *naming.Name) (interface{}, error) {
				return n.CaseAll(), nil
			}),
			"salutation": nameField(graphql.String, func(n *naming.Name) (interface{}, error) {
				s, err := n.Salutation()
				if err != nil {
					return nil, err
				}
				return s, nil
			}),
		},
	})

	inputFields := graphql.InputObjectConfigFieldMap{}
	for _, f := range optionFields {
		inputFields[f.name] = &graphql.InputObjectFieldConfig{Type: f.typ}
	}
	r.optionsInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:        "ParseOptions",
		Description: "Parser options; omitted fields keep the server configuration",
		Fields:      inputFields,
	})
}

func nameField(typ graphql.Output, get func(*naming.Name) (interface{}, error)) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			n, ok := p.Source.(*naming.Name)
			if !ok || n == nil {
				return nil, nil
			}
			return get(n)
		},
	}
}
