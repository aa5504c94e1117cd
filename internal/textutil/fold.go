package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold returns s in NFC form and lower case. It is used on both sides of a
// keyword comparison.
func Fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// FoldKeyword trims surrounding whitespace and folds a rule keyword.
func FoldKeyword(keyword string) string {
	return Fold(strings.TrimSpace(keyword))
}
