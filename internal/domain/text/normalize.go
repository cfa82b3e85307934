// Package text provides the canonical string normalization used across the
// answer engine. Every comparison between queries, vocabulary entries and
// record fields goes through Normalize first so that accents, casing and
// stray whitespace never affect matching.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s, strips diacritical marks ("Ibuprofeno 600MG" and
// "ibuprofeno 600mg" compare equal, as do "acción" and "accion") and
// collapses runs of whitespace into single spaces, trimming the ends.
// The function is idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		// Malformed UTF-8: fall back to the raw input rather than dropping
		// the query on the floor.
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Tokens normalizes s and splits it into whitespace-separated tokens.
func Tokens(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// ContainsWord reports whether the normalized form of s contains the
// normalized needle bounded by non-alphanumeric runes, so "¿sirve la
// aspirina?" matches "aspirina" but "naproxeno" does not match "napro".
func ContainsWord(s, needle string) bool {
	n := Normalize(needle)
	if n == "" {
		return false
	}
	hay := Normalize(s)
	for start := 0; ; {
		i := strings.Index(hay[start:], n)
		if i < 0 {
			return false
		}
		i += start
		if boundaryBefore(hay, i) && boundaryAfter(hay, i+len(n)) {
			return true
		}
		start = i + 1
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
