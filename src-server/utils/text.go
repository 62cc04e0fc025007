package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title uppercases the first letter of every word, e.g. "reactionroles" -> "Reactionroles".
func Title(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}

// Truncate cuts s to at most n runes, ending with "…" when anything was cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
