// Package cpf normalizes and validates Brazilian CPF identifiers.
//
// Normalization is mandatory at the data-model boundary: CPFs are stored and
// compared digits-only, never in their formatted form.
package cpf

import "strings"

// Normalize strips dots, dashes, and whitespace from a CPF, leaving only the
// raw character sequence.
func Normalize(value string) string {
	if value == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch r {
		case '.', '-', ' ', '\t':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// IsValidFormat reports whether the normalized form has exactly 11 digits.
func IsValidFormat(value string) bool {
	normalized := Normalize(value)
	if len(normalized) != 11 {
		return false
	}
	for _, r := range normalized {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
