package news

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s after NFKC normalization so visually equal strings
// compare equal.
func Fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFKC.String(s))
}

// Words splits folded text into words, treating every rune that is not a
// letter or digit as a separator.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// WordSet returns the distinct words of s longer than minLen runes.
func WordSet(s string, minLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(s) {
		if len([]rune(w)) > minLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}

// ReadTime estimates reading minutes at 200 words per minute, at least one.
func ReadTime(text string) int {
	minutes := len(strings.Fields(text)) / 200
	if minutes < 1 {
		return 1
	}
	return minutes
}
