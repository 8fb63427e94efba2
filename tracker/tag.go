package tracker

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/DeiroLy/Safe-Tools/models"
)

// NormalizeTag upper-cases a scanned identifier and drops all whitespace,
// so "04 a1 b2 c3" and "04A1B2C3" name the same tag.
func NormalizeTag(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, raw)
}

// IsPlaceholderTag reports whether tag is a synthetic placeholder identifier.
func IsPlaceholderTag(tag string) bool {
	return strings.HasPrefix(tag, models.PlaceholderPrefix)
}

// NewPlaceholderTag draws a synthetic tag from a 48-bit random space.
func NewPlaceholderTag() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return models.PlaceholderPrefix + strings.ToUpper(hex.EncodeToString(buf)), nil
}

func physicalTag(raw string) (string, error) {
	tag := NormalizeTag(raw)
	if tag == "" {
		return "", Errorf(KindInvalidInput, "missing tag")
	}
	if IsPlaceholderTag(tag) {
		return "", Errorf(KindInvalidInput, "tag %s uses the reserved placeholder prefix", tag)
	}
	return tag, nil
}
