package naming

// Key identifies one component of a parsed name.
type Key int

const (
	Precursor Key = iota
	Title1
	Title2
	GivenName1
	Initials1
	Initials2
	Conjunction1
	Conjunction2
	Surname1
	Surname2
	Suffix

	numKeys
)

var keyNames = [numKeys]string{
	Precursor:    "precursor",
	Title1:       "title_1",
	Title2:       "title_2",
	GivenName1:   "given_name_1",
	Initials1:    "initials_1",
	Initials2:    "initials_2",
	Conjunction1: "conjunction_1",
	Conjunction2: "conjunction_2",
	Surname1:     "surname_1",
	Surname2:     "surname_2",
	Suffix:       "suffix",
}

// AllKeys lists every component key in declaration order.
func AllKeys() []Key {
	keys := make([]Key, 0, numKeys)
	for k := Key(0); k < numKeys; k++ {
		keys = append(keys, k)
	}
	return keys
}

func (k Key) String() string {
	if k < 0 || k >= numKeys {
		return "unknown"
	}
	return keyNames[k]
}

func (k Key) isInitials() bool { return k == Initials1 || k == Initials2 }
func (k Key) isSurname() bool  { return k == Surname1 || k == Surname2 }

// Layout names the template that matched an input.
type Layout string

const (
	LayoutUnknown          Layout = "unknown"
	LayoutJointSeparate    Layout = "Mr_A_Smith_&_Ms_B_Jones"
	LayoutJointTitlesBoth  Layout = "Mr_&_Ms_A_&_B_Smith"
	LayoutJointShared      Layout = "Mr_A_&_Ms_B_Smith"
	LayoutJointTitlesOne   Layout = "Mr_&_Ms_A_Smith"
	LayoutJointInitials    Layout = "Mr_A_&_B_Smith"
	LayoutTitleGivenMiddle Layout = "Mr_John_A_Smith"
	LayoutTitleGiven       Layout = "Mr_John_Smith"
	LayoutTitleInitials    Layout = "Mr_A_Smith"
	LayoutGivenMiddle      Layout = "John_A_Smith"
	LayoutGiven            Layout = "John_Smith"
	LayoutInitials         Layout = "A_Smith"
)

// componentOrder is the assembly order of each recognized layout.
var componentOrder = map[Layout][]Key{
	LayoutJointSeparate:    {Title1, Initials1, Surname1, Conjunction1, Title2, Initials2, Surname2},
	LayoutJointTitlesBoth:  {Title1, Conjunction1, Title2, Initials1, Conjunction2, Initials2, Surname1},
	LayoutJointShared:      {Title1, Initials1, Conjunction1, Title2, Initials2, Surname1},
	LayoutJointTitlesOne:   {Title1, Conjunction1, Title2, Initials1, Surname1},
	LayoutJointInitials:    {Title1, Initials1, Conjunction1, Initials2, Surname1},
	LayoutTitleGivenMiddle: {Precursor, Title1, GivenName1, Initials1, Surname1, Suffix},
	LayoutTitleGiven:       {Precursor, Title1, GivenName1, Surname1, Suffix},
	LayoutTitleInitials:    {Precursor, Title1, Initials1, Surname1, Suffix},
	LayoutGivenMiddle:      {Precursor, GivenName1, Initials1, Surname1, Suffix},
	LayoutGiven:            {Precursor, GivenName1, Surname1, Suffix},
	LayoutInitials:         {Precursor, Initials1, Surname1, Suffix},
}

// Order returns the assembly order of the layout's components. Unknown
// layouts have none.
func (l Layout) Order() []Key {
	return componentOrder[l]
}

// Field is an optional component value.
type Field struct {
	Value   string
	Present bool
}

// Components holds one optional value per component key. A key that did
// not occur in the input is not Present; it is never an empty placeholder.
type Components struct {
	fields [numKeys]Field
}

// Get returns the field stored under k.
func (c Components) Get(k Key) Field {
	if k < 0 || k >= numKeys {
		return Field{}
	}
	return c.fields[k]
}

// Value returns the text stored under k, or "" when absent.
func (c Components) Value(k Key) string {
	return c.Get(k).Value
}

// Has reports whether k is populated.
func (c Components) Has(k Key) bool {
	return c.Get(k).Present
}

func (c *Components) set(k Key, v string) {
	c.fields[k] = Field{Value: v, Present: true}
}

// Len returns the number of populated keys.
func (c Components) Len() int {
	n := 0
	for _, f := range c.fields {
		if f.Present {
			n++
		}
	}
	return n
}

// Keys returns the populated keys in declaration order.
func (c Components) Keys() []Key {
	var keys []Key
	for k, f := range c.fields {
		if f.Present {
			keys = append(keys, Key(k))
		}
	}
	return keys
}

// Map returns the populated keys by name.
func (c Components) Map() map[string]string {
	m := make(map[string]string, numKeys)
	for k, f := range c.fields {
		if f.Present {
			m[Key(k).String()] = f.Value
		}
	}
	return m
}

// Properties summarises a parse.
type Properties struct {
	Type        Layout
	Number      int
	NonMatching string
	Error       bool
	// Cleaned is set when the record came from the auto-clean retry.
	Cleaned bool
}
