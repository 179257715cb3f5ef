package listing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics so that "Électrique",
// "Electrique" and "ELECTRIQUE" compare equal.
func Fold(s string) string {
	// Transformers carry state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// ContainsWord reports whether word occurs in the folded text delimited by
// non-alphanumeric characters.
func ContainsWord(folded, word string) bool {
	for i := 0; ; {
		idx := strings.Index(folded[i:], word)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(word)
		if boundaryBefore(folded, start) && boundaryAfter(folded, end) {
			return true
		}
		i = start + 1
		if i >= len(folded) {
			return false
		}
	}
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	return !isWordByte(s[i])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b >= 0x80
}
