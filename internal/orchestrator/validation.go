package orchestrator

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength is the longest accepted title, in characters, after trimming.
const MaxTitleLength = 100

var (
	ErrTitleRequired   = errors.New("Todo text is required")
	ErrTitleTooLong    = errors.New("Todo must be at most 100 characters")
	ErrRepetitiveTitle = errors.New("repetitive title")
)

// ValidationError is a pre-flight failure scoped to one input field. It
// never reaches the store.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateTitle checks a candidate title against the titles currently
// visible and returns it trimmed. Duplicate detection is an exact,
// case-sensitive match on the trimmed title.
func ValidateTitle(title string, existing []string) (string, error) {
	t := strings.TrimSpace(title)
	switch {
	case t == "":
		return "", &ValidationError{Field: "todo", Err: ErrTitleRequired}
	case utf8.RuneCountInString(t) > MaxTitleLength:
		return "", &ValidationError{Field: "todo", Err: ErrTitleTooLong}
	case slices.Contains(existing, t):
		return "", &ValidationError{Field: "todo", Err: ErrRepetitiveTitle}
	}
	return t, nil
}
