package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize decomposes s, strips combining marks and lowercases the result,
// so "Élysée" and "elysee" compare equal.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Lower(language.Und))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Match reports whether the normalized query is a substring of the
// space-joined normalized fields. An empty query matches everything.
func Match(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(Normalize(strings.Join(fields, " ")), Normalize(query))
}
