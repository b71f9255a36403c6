// Package lookup holds the breakdown search core: string normalization,
// suggestion building, row matching and prompt construction. Everything here
// is pure and works on an in-memory dataset.
package lookup

import (
	"fmt"
	"strings"
)

// Normalize lower-cases the string form of v and drops every character that
// is not an ASCII letter or digit.
func Normalize(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case nil:
		s = ""
	default:
		s = fmt.Sprint(t)
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, strings.ToLower(s))
}

// IsSearchActive reports whether query still has content after normalization.
func IsSearchActive(query string) bool {
	return Normalize(query) != ""
}
