package naming

import (
	"errors"
	"fmt"
	"strings"
)

// IssueKind classifies a recoverable parse problem.
type IssueKind int

const (
	// ParseMismatch means text was left over after the layout matched.
	ParseMismatch IssueKind = iota
	// IllegalCharacter means the input holds a character outside the
	// accepted set.
	IllegalCharacter
	// InvalidNameToken means a given name or surname failed the vowel check.
	InvalidNameToken
)

func (k IssueKind) String() string {
	switch k {
	case ParseMismatch:
		return "parse_mismatch"
	case IllegalCharacter:
		return "illegal_character"
	case InvalidNameToken:
		return "invalid_name_token"
	default:
		return "unknown"
	}
}

// Issue describes one reason a parse was flagged as an error.
type Issue struct {
	Kind IssueKind
	// Key is the offending component for InvalidNameToken issues.
	Key    Key
	HasKey bool
	// Text is the offending text: the unmatched tail, the illegal
	// characters, or the rejected component value.
	Text string
}

func (i Issue) String() string {
	if i.HasKey {
		return fmt.Sprintf("%s: %s %q", i.Kind, i.Key, i.Text)
	}
	return fmt.Sprintf("%s: %q", i.Kind, i.Text)
}

// ErrSalutationNotConfigured is wrapped by ConfigurationError.
var ErrSalutationNotConfigured = errors.New("salutation words not configured")

// ConfigurationError reports a rendering request the parser options
// cannot satisfy.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s (missing %s)",
		ErrSalutationNotConfigured, strings.Join(e.Missing, ", "))
}

func (e *ConfigurationError) Unwrap() error {
	return ErrSalutationNotConfigured
}
