package crm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder strips combining marks so "Peña" and "Pena" compare equal.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizePhone reduces a phone number to its digit string.
// "555-0100", "(555) 0100" and "555 0100" all normalize to "5550100".
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FoldText uppercases, removes accents, and collapses runs of whitespace
// into single spaces. It is the shared canonical form for name and address
// comparisons.
func FoldText(text string) string {
	folded, _, err := transform.String(accentFolder, text)
	if err != nil {
		// Accent folding is best-effort; fall back to the raw input.
		folded = text
	}
	return strings.Join(strings.Fields(strings.ToUpper(folded)), " ")
}

// NormalizeAddressKey builds the deterministic duplicate-detection key for an
// address: folded components joined by '|' in street|city|state|postal|country
// order.
func NormalizeAddressKey(street, city, state, postalCode, country string) string {
	parts := []string{
		FoldText(street),
		FoldText(city),
		FoldText(state),
		FoldText(postalCode),
		FoldText(country),
	}
	return strings.Join(parts, "|")
}
