package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_InitialsLength(t *testing.T) {
	tests := []struct {
		length int
		input  string
	}{
		{1, "A SMITH"},
		{2, "AB SMITH"},
		{3, "ABC SMITH"},
		{3, "A.B.C. SMITH"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := New(Options{Initials: tt.length}, nil)
			n := p.Parse(tt.input)

			props := n.Properties()
			assert.Equal(t, LayoutInitials, props.Type)
			assert.Equal(t, 1, props.Number)
			assert.False(t, props.Error)
			initials := strings.ReplaceAll(n.Components().Value(Initials1), ".", "")
			assert.Len(t, initials, tt.length)
			assert.Equal(t, "SMITH", n.Components().Value(Surname1))
		})
	}
}

func TestParse_InitialsLengthGatesGivenName(t *testing.T) {
	// Two letters are initials with the default length but a given name
	// when only one initial is allowed.
	n := New(Options{}, nil).Parse("MR AB SMITH")
	assert.Equal(t, LayoutTitleInitials, n.Properties().Type)

	n = New(Options{Initials: 1}, nil).Parse("MR AB SMITH")
	assert.Equal(t, LayoutTitleGiven, n.Properties().Type)
	assert.Equal(t, "AB", n.Components().Value(GivenName1))
}

func TestParse_InitialsAreUpperCase(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		input string
	}{
		{"reversed title only", Options{AllowReversed: true}, "Smith, Mr"},
		{"repeated title", Options{}, "Mr Mr Smith"},
		{"title and bare word", Options{AllowReversed: true}, "Mr JOHN"},
		{"lower-case letters", Options{}, "mr ab smith"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(tt.opts, nil).Parse(tt.input)
			assert.False(t, n.Components().Has(Initials1), "components: %v", n.Components().Map())
			assert.True(t, n.HasError())
		})
	}

	n := New(Options{}, nil).Parse("mr AB smith")
	assert.Equal(t, LayoutTitleInitials, n.Properties().Type)
	assert.Equal(t, "AB", n.Components().Value(Initials1))
}

func TestParse_SinglePersonLayouts(t *testing.T) {
	tests := []struct {
		input  string
		layout Layout
		want   map[string]string
	}{
		{
			input:  "Mr John A Smith",
			layout: LayoutTitleGivenMiddle,
			want:   map[string]string{"title_1": "Mr", "given_name_1": "John", "initials_1": "A", "surname_1": "Smith"},
		},
		{
			input:  "Mr John Smith",
			layout: LayoutTitleGiven,
			want:   map[string]string{"title_1": "Mr", "given_name_1": "John", "surname_1": "Smith"},
		},
		{
			input:  "Dr. A.B. Jones",
			layout: LayoutTitleInitials,
			want:   map[string]string{"title_1": "Dr.", "initials_1": "A.B.", "surname_1": "Jones"},
		},
		{
			input:  "John A Smith",
			layout: LayoutGivenMiddle,
			want:   map[string]string{"given_name_1": "John", "initials_1": "A", "surname_1": "Smith"},
		},
		{
			input:  "John Smith",
			layout: LayoutGiven,
			want:   map[string]string{"given_name_1": "John", "surname_1": "Smith"},
		},
		{
			input:  "Mary-Jane Smith",
			layout: LayoutGiven,
			want:   map[string]string{"given_name_1": "Mary-Jane", "surname_1": "Smith"},
		},
		{
			input:  "A Smith",
			layout: LayoutInitials,
			want:   map[string]string{"initials_1": "A", "surname_1": "Smith"},
		},
		{
			input:  "Estate Of The Late Mr John Smith",
			layout: LayoutTitleGiven,
			want:   map[string]string{"precursor": "Estate Of The Late", "title_1": "Mr", "given_name_1": "John", "surname_1": "Smith"},
		},
		{
			input:  "The Honorable Mr John Smith",
			layout: LayoutTitleGiven,
			want:   map[string]string{"precursor": "The Honorable", "title_1": "Mr", "given_name_1": "John", "surname_1": "Smith"},
		},
		{
			input:  "Mr John van der Berg",
			layout: LayoutTitleGiven,
			want:   map[string]string{"title_1": "Mr", "given_name_1": "John", "surname_1": "van der Berg"},
		},
		{
			input:  "Ms Jane Smith-Jones",
			layout: LayoutTitleGiven,
			want:   map[string]string{"title_1": "Ms", "given_name_1": "Jane", "surname_1": "Smith-Jones"},
		},
		{
			input:  "Mrs K O'Brien",
			layout: LayoutTitleInitials,
			want:   map[string]string{"title_1": "Mrs", "initials_1": "K", "surname_1": "O'Brien"},
		},
		{
			input:  "  Mr   John   Smith  ",
			layout: LayoutTitleGiven,
			want:   map[string]string{"title_1": "Mr", "given_name_1": "John", "surname_1": "Smith"},
		},
	}

	p := New(Options{}, nil)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := p.Parse(tt.input)
			props := n.Properties()
			assert.Equal(t, tt.layout, props.Type)
			assert.Equal(t, 1, props.Number)
			assert.Empty(t, props.NonMatching)
			assert.False(t, props.Error, "issues: %v", n.Issues())
			assert.Equal(t, tt.want, n.Components().Map())
		})
	}
}

func TestParse_JointLayouts(t *testing.T) {
	tests := []struct {
		input  string
		layout Layout
		want   map[string]string
	}{
		{
			input:  "MR AB SMITH & MS D.E. JONES",
			layout: LayoutJointSeparate,
			want: map[string]string{
				"title_1": "MR", "initials_1": "AB", "surname_1": "SMITH", "conjunction_1": "&",
				"title_2": "MS", "initials_2": "D.E.", "surname_2": "JONES",
			},
		},
		{
			input:  "MR & MRS A & B SMITH",
			layout: LayoutJointTitlesBoth,
			want: map[string]string{
				"title_1": "MR", "conjunction_1": "&", "title_2": "MRS", "initials_1": "A",
				"conjunction_2": "&", "initials_2": "B", "surname_1": "SMITH",
			},
		},
		{
			input:  "MR A & MRS B SMITH",
			layout: LayoutJointShared,
			want: map[string]string{
				"title_1": "MR", "initials_1": "A", "conjunction_1": "&", "title_2": "MRS",
				"initials_2": "B", "surname_1": "SMITH",
			},
		},
		{
			input:  "MR AND MRS A SMITH",
			layout: LayoutJointTitlesOne,
			want: map[string]string{
				"title_1": "MR", "conjunction_1": "AND", "title_2": "MRS", "initials_1": "A", "surname_1": "SMITH",
			},
		},
		{
			input:  "MR AB AND D.E. JONES",
			layout: LayoutJointInitials,
			want: map[string]string{
				"title_1": "MR", "initials_1": "AB", "conjunction_1": "AND", "initials_2": "D.E.", "surname_1": "JONES",
			},
		},
	}

	p := New(Options{JointNames: true}, nil)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := p.Parse(tt.input)
			props := n.Properties()
			assert.Equal(t, tt.layout, props.Type)
			assert.Equal(t, 2, props.Number)
			assert.False(t, props.Error, "issues: %v", n.Issues())
			assert.Equal(t, tt.want, n.Components().Map())
		})
	}
}

func TestParse_JointDisabled(t *testing.T) {
	n := New(Options{}, nil).Parse("MR AB SMITH & MS D.E. JONES")

	props := n.Properties()
	assert.Equal(t, LayoutTitleInitials, props.Type)
	assert.Equal(t, "& MS D.E. JONES", props.NonMatching)
	assert.True(t, props.Error)
}

func TestParse_Reversed(t *testing.T) {
	tests := []struct {
		input  string
		layout Layout
		want   map[string]string
	}{
		{"Smith, Mr John", LayoutTitleGiven, map[string]string{"surname_1": "Smith", "title_1": "Mr", "given_name_1": "John"}},
		{"Smith, Mr John A", LayoutTitleGivenMiddle, map[string]string{"surname_1": "Smith", "title_1": "Mr", "given_name_1": "John", "initials_1": "A"}},
		{"SMITH , AB", LayoutInitials, map[string]string{"surname_1": "SMITH", "initials_1": "AB"}},
		{"De La Cruz, Mr John", LayoutTitleGiven, map[string]string{"surname_1": "De La Cruz", "title_1": "Mr", "given_name_1": "John"}},
		{"Mr John Smith", LayoutTitleGiven, map[string]string{"surname_1": "Smith", "title_1": "Mr", "given_name_1": "John"}},
	}

	p := New(Options{AllowReversed: true}, nil)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n := p.Parse(tt.input)
			assert.Equal(t, tt.layout, n.Properties().Type)
			assert.False(t, n.HasError(), "issues: %v", n.Issues())
			assert.Equal(t, tt.want, n.Components().Map())
		})
	}

	t.Run("disabled", func(t *testing.T) {
		n := New(Options{}, nil).Parse("Smith, Mr John")
		assert.True(t, n.HasError())
	})
}

func TestParse_ExtendedTitles(t *testing.T) {
	p := New(Options{ExtendedTitles: true}, nil)

	n := p.Parse("Mr John Smith Jnr")
	assert.Equal(t, LayoutTitleGiven, n.Properties().Type)
	assert.Equal(t, "Jnr", n.Components().Value(Suffix))
	assert.False(t, n.HasError())

	n = p.Parse("HIS HONOR JUDGE JOHN SMITH")
	assert.Equal(t, LayoutTitleGiven, n.Properties().Type)
	assert.Equal(t, "HIS HONOR", n.Components().Value(Precursor))
	assert.Equal(t, "JUDGE", n.Components().Value(Title1))
	assert.False(t, n.HasError())

	n = p.Parse("Lt Col John Smith")
	assert.Equal(t, LayoutTitleGiven, n.Properties().Type)
	assert.Equal(t, "Lt Col", n.Components().Value(Title1))

	n = New(Options{ExtendedTitles: true, AllowReversed: true}, nil).Parse("Smith III, Mr John")
	assert.Equal(t, LayoutTitleGiven, n.Properties().Type)
	assert.Equal(t, "III", n.Components().Value(Suffix))
	assert.False(t, n.HasError())

	n = New(Options{}, nil).Parse("Mr John Smith Jnr")
	assert.Equal(t, "Jnr", n.Properties().NonMatching)
	assert.False(t, n.Components().Has(Suffix))
	assert.True(t, n.HasError())
}

func TestParse_Unknown(t *testing.T) {
	p := New(Options{JointNames: true, AllowReversed: true, ExtendedTitles: true}, nil)

	for _, input := range []string{"12345", "&&&", "1st National Bank"} {
		t.Run(input, func(t *testing.T) {
			n := p.Parse(input)
			props := n.Properties()
			assert.Equal(t, LayoutUnknown, props.Type)
			assert.Equal(t, 0, props.Number)
			assert.Equal(t, 0, n.Components().Len())
			assert.Equal(t, input, props.NonMatching)
			assert.True(t, props.Error)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	n := New(Options{}, nil).Parse("   ")

	props := n.Properties()
	assert.Equal(t, LayoutUnknown, props.Type)
	assert.Equal(t, 0, props.Number)
	assert.Empty(t, props.NonMatching)
	assert.False(t, props.Error)
}

func TestBuildTemplates_Order(t *testing.T) {
	layouts := func(opts Options) []Layout {
		var out []Layout
		for _, tpl := range buildTemplates(opts.normalized()) {
			out = append(out, tpl.layout)
		}
		return out
	}

	single := []Layout{
		LayoutTitleGivenMiddle, LayoutTitleGiven, LayoutTitleInitials,
		LayoutGivenMiddle, LayoutGiven, LayoutInitials,
	}
	assert.Equal(t, single, layouts(Options{}))

	joint := []Layout{
		LayoutJointSeparate, LayoutJointTitlesBoth, LayoutJointShared,
		LayoutJointTitlesOne, LayoutJointInitials,
	}
	assert.Equal(t, append(append([]Layout(nil), joint...), single...), layouts(Options{JointNames: true}))

	all := layouts(Options{JointNames: true, AllowReversed: true})
	require.Len(t, all, 17)
	assert.Equal(t, single, all[:6])
}

func TestBuildTemplates_SuffixOnlyWhenExtended(t *testing.T) {
	hasSuffix := func(opts Options) bool {
		for _, tpl := range buildTemplates(opts.normalized()) {
			for _, st := range tpl.steps {
				if st.kind == matchSuffix {
					return true
				}
			}
		}
		return false
	}
	assert.False(t, hasSuffix(Options{AllowReversed: true}))
	assert.True(t, hasSuffix(Options{ExtendedTitles: true}))
}
