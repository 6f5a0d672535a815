package cv

import (
	"strings"
	"unicode"
)

// normalizeLine trims a line and collapses internal whitespace runs into single spaces.
// Control characters and byte order marks are dropped.
func normalizeLine(s string) string {
	var sb strings.Builder
	pendingSpace := false
	for _, r := range s {
		switch {
		case r == '\uFEFF':
			continue
		case unicode.IsSpace(r):
			pendingSpace = sb.Len() > 0
		case unicode.IsControl(r):
			continue
		default:
			if pendingSpace {
				sb.WriteByte(' ')
				pendingSpace = false
			}
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// splitLines splits text on any line ending and returns the non-empty normalized lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out []string
	for _, raw := range strings.Split(text, "\n") {
		if line := normalizeLine(raw); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Words lowercases s and splits it on anything that is not a letter, digit, '+' or '#'.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// Tokenize returns the stemmed Words of s ("skills" -> "skill", "technologies" -> "technology").
func Tokenize(s string) []string {
	words := Words(s)
	for i, w := range words {
		words[i] = Stem(w)
	}
	return words
}

// Stem strips a trailing plural suffix from a lowercase token.
func Stem(token string) string {
	switch {
	case len(token) > 4 && strings.HasSuffix(token, "ies"):
		return token[:len(token)-3] + "y"
	case len(token) > 3 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss"):
		return token[:len(token)-1]
	default:
		return token
	}
}
