package tracker

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	codePrefixLen   = 3
	defaultCategory = "GEN"
)

// CodePrefix folds a category name to three upper-case ASCII letters:
// "Eletrônica" -> "ELE", "Ar" -> "ARX", "" -> "GEN".
func CodePrefix(category string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		category,
	)
	if err != nil {
		folded = category
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(folded) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() == codePrefixLen {
				break
			}
		}
	}
	p := b.String()
	if p == "" {
		return defaultCategory
	}
	return p + strings.Repeat("X", codePrefixLen-len(p))
}

// NextCode derives the code for the next tool bound in category, given how
// many codes already carry the category's prefix.
func NextCode(category string, coded int64) string {
	return fmt.Sprintf("%s%03d", CodePrefix(category), coded+1)
}
