package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

// bracketedPattern matches a single (...), [...] or {...} fragment. Mixed
// delimiters such as "(live]" are matched too.
var bracketedPattern = regexp.MustCompile(`[\(\[\{][^\)\]\}]*[\)\]\}]`)

// DashStripped replaces every hyphen with a space and trims the result.
func DashStripped(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "-", " "))
}

// SanitizeQuery removes bracketed fragments and any character that is not a
// letter, digit, or whitespace, then collapses whitespace runs to single
// spaces. Used as the fallback query when the plain title finds nothing.
func SanitizeQuery(query string) string {
	cleaned := bracketedPattern.ReplaceAllString(query, " ")
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}
