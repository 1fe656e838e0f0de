package party

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText trims, collapses inner whitespace and composes the string
// to NFC so that visually identical inputs compare equal.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// NormalizeMultiline normalises each line and drops empty ones
func NormalizeMultiline(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		for _, line := range strings.Split(raw, "\n") {
			if line = NormalizeText(line); line != "" {
				out = append(out, line)
			}
		}
	}
	return strings.Join(out, "\n")
}

// FoldKey returns the case-folded form of a normalised string, used for
// case-insensitive equality.
func FoldKey(s string) string {
	return cases.Fold().String(NormalizeMultiline(s))
}

// NormalizePhone keeps the digits of a phone number and a leading plus.
// Inputs without any digit normalise to the empty string.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if strings.TrimPrefix(phone, "+") == "" {
		return ""
	}
	return phone
}
