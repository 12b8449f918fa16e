// Package text holds small string helpers shared by the API client and logs.
package text

import (
	"strings"
	"unicode/utf8"
)

// Truncate shortens s to at most max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Snippet collapses whitespace runs to single spaces and truncates the
// result, for one-line error messages built from response bodies.
func Snippet(s string, max int) string {
	return Truncate(strings.Join(strings.Fields(s), " "), max)
}
