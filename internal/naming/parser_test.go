package naming

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_AutoClean(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		n := New(Options{}, nil).Parse("Mr José García")
		assert.True(t, n.HasError())
		assert.False(t, n.Properties().Cleaned)
	})

	t.Run("recovers", func(t *testing.T) {
		n := New(Options{AutoClean: true}, nil).Parse("Mr José García")

		props := n.Properties()
		assert.False(t, props.Error)
		assert.True(t, props.Cleaned)
		assert.Equal(t, LayoutTitleGiven, props.Type)
		assert.Equal(t, "Jose", n.Components().Value(GivenName1))
		assert.Equal(t, "Mr José García", n.Input())
		assert.Equal(t, "Mr Jose Garcia", n.Matched())
	})

	t.Run("strips digits", func(t *testing.T) {
		n := New(Options{AutoClean: true}, nil).Parse("Mr John Sm1ith")
		assert.False(t, n.HasError())
		assert.Equal(t, "Smith", n.Components().Value(Surname1))
	})

	t.Run("single retry keeps final error", func(t *testing.T) {
		n := New(Options{AutoClean: true}, nil).Parse("Mr John Smth!")

		props := n.Properties()
		assert.True(t, props.Error)
		assert.True(t, props.Cleaned)
		assert.Equal(t, "Mr John Smth", n.Matched())
		assert.Len(t, n.Issues(), 1)
	})

	t.Run("clean input is not retried", func(t *testing.T) {
		n := New(Options{AutoClean: true}, nil).Parse("Mr John Smith")
		assert.False(t, n.Properties().Cleaned)
	})
}

func TestNew_NormalizesOptions(t *testing.T) {
	p := New(Options{Initials: 7, Salutation: " dEAR ", SalutationDefault: "sir or madam"}, nil)

	opts := p.Options()
	assert.Equal(t, 3, opts.Initials)
	assert.Equal(t, "Dear", opts.Salutation)
	assert.Equal(t, "Sir Or Madam", opts.SalutationDefault)
}

func TestClampInitials(t *testing.T) {
	tests := []struct {
		in, expected int
	}{
		{0, DefaultInitialsLength},
		{-4, 1},
		{1, 1},
		{2, 2},
		{3, 3},
		{9, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClampInitials(tt.in), "initials %d", tt.in)
	}
}

func TestParser_CaseSurname(t *testing.T) {
	p := New(Options{}, mapOverrides{"macquarie": "Macquarie"})
	assert.Equal(t, "Macquarie", p.CaseSurname("MACQUARIE", true))
	assert.Equal(t, "van der Berg", p.CaseSurname("VAN DER BERG", true))
	assert.NotNil(t, p.Overrides())
}

func TestComponents(t *testing.T) {
	var c Components
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Has(Surname1))
	assert.Equal(t, Field{}, c.Get(Key(99)))

	c.set(Surname1, "Smith")
	c.set(Title1, "Mr")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []Key{Title1, Surname1}, c.Keys())
	assert.Equal(t, map[string]string{"title_1": "Mr", "surname_1": "Smith"}, c.Map())
}

func TestKeyString(t *testing.T) {
	names := make([]string, 0)
	for _, k := range AllKeys() {
		names = append(names, k.String())
	}
	assert.Equal(t, []string{
		"precursor", "title_1", "title_2", "given_name_1", "initials_1", "initials_2",
		"conjunction_1", "conjunction_2", "surname_1", "surname_2", "suffix",
	}, names)
	assert.Equal(t, "unknown", Key(-1).String())
}

func TestParser_ConcurrentUse(t *testing.T) {
	p := New(Options{JointNames: true, Salutation: "Dear", SalutationDefault: "Sir"}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				n := p.Parse("MR A & B SMITH")
				assert.Equal(t, LayoutJointInitials, n.Properties().Type)
				sal, err := n.Salutation()
				assert.NoError(t, err)
				assert.Equal(t, "Dear Mr & Mr Smith", sal)
			}
		}()
	}
	wg.Wait()
}
