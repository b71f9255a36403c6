package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSearch the normalized query is empty, nothing should be matched.
	ErrNoSearch = errors.New("no search active")

	// ErrNoMatches a prompt was requested for an empty match set.
	ErrNoMatches = errors.New("no matches")

	// ErrServiceUnavailable the language model could not be reached in time.
	ErrServiceUnavailable = errors.New("explanation service unavailable")

	// ErrMalformedResponse the language model replied without a usable answer.
	ErrMalformedResponse = errors.New("malformed explanation response")

	// ErrEmptyRecord an append was attempted with every field blank.
	ErrEmptyRecord = errors.New("record has no values")
)

// SchemaError a required dataset column is absent.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset schema: missing column %q", e.Column)
}

// IsExplanationError reports whether err is one of the recoverable
// language model failures.
func IsExplanationError(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrMalformedResponse)
}
