// Package surnames holds the surname override table: preferred spellings
// consulted before heuristic surname casing.
package surnames

import (
	"context"
	"strings"
)

// Table is an immutable case-insensitive lookup from surname to its
// preferred spelling. The zero value and a nil *Table are empty.
type Table struct {
	entries map[string]string
}

// NewTable builds a table from preferred spellings. Blank entries are
// ignored; when two entries fold to the same key the later one wins.
func NewTable(spellings []string) *Table {
	t := &Table{entries: make(map[string]string, len(spellings))}
	for _, s := range spellings {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		t.entries[strings.ToLower(s)] = s
	}
	return t
}

// Lookup returns the preferred spelling for a lower-case surname.
func (t *Table) Lookup(lower string) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.entries[lower]
	return s, ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Source loads a table from storage.
type Source interface {
	Load(ctx context.Context) (*Table, error)
	// Describe names the source for logs.
	Describe() string
}

// EmptySource always yields an empty table.
type EmptySource struct{}

func (EmptySource) Load(context.Context) (*Table, error) { return NewTable(nil), nil }
func (EmptySource) Describe() string                     { return "none" }
