package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes accented characters and removes the combining marks,
// so "José" normalizes to "jose".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeIDPart(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), "_")
}

// DeriveID builds the human-readable record identifier from the normalized
// full name and current city: lowercase, diacritics stripped, non-
// alphanumerics removed, spaces collapsed to underscores.
//
// Two people with the same normalized name and city derive the same id; the
// store rejects the second registration with a conflict instead of silently
// overwriting the first.
func DeriveID(fullName, currentCity string) string {
	return normalizeIDPart(fullName) + "_" + normalizeIDPart(currentCity)
}
