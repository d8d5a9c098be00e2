package utils

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FoldText lowercases s and strips accent marks so "Café" and "cafe" compare
// equal. Markup entities are decoded first.
func FoldText(s string) string {
	t := norm.NFD.String(html.UnescapeString(s))
	var b strings.Builder
	b.Grow(len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue // remove accent marks
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Tokenize splits folded text on anything that is not a letter or digit.
func Tokenize(s string) []string {
	return strings.FieldsFunc(FoldText(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// UniqueTerms tokenizes a query and drops repeated terms, keeping order.
func UniqueTerms(q string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, t := range Tokenize(q) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
