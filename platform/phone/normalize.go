// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "IN"

// ErrInvalid is returned when a number cannot be normalized to ten digits.
var ErrInvalid = errors.New("phone number must be exactly 10 digits")

// Normalize canonicalizes a raw phone number string to the bare ten-digit
// form used for storage comparison. Whitespace is stripped, a leading +91
// country code is dropped, and a bare 91 prefix is dropped when the total
// length is twelve digits. Every caller that compares numbers must go
// through this function; duplicate detection relies on a single canonical
// form plus the historical storage variants from Variants.
func Normalize(raw string) (string, error) {
	cleaned := stripSpace(raw)

	switch {
	case strings.HasPrefix(cleaned, "+91"):
		cleaned = cleaned[3:]
	case strings.HasPrefix(cleaned, "91") && len(cleaned) == 12:
		cleaned = cleaned[2:]
	}

	if len(cleaned) != 10 || !allDigits(cleaned) {
		return "", ErrInvalid
	}

	return cleaned, nil
}

// Variants returns the formats a number may be stored under: the bare
// ten-digit form, the +91-prefixed form, and the string as originally typed.
// Legacy records were written in all three, so duplicate lookups must query
// every variant.
func Variants(normalized, raw string) []string {
	variants := []string{normalized, "+91" + normalized}

	typed := strings.TrimSpace(raw)
	if typed != "" && typed != normalized && typed != "+91"+normalized {
		variants = append(variants, typed)
	}

	return variants
}

// IsPlausibleMobile reports whether a normalized ten-digit number parses as
// a valid Indian number. Used only to raise non-blocking warnings during
// bulk validation; a false result never rejects input.
func IsPlausibleMobile(normalized string) bool {
	number, err := phonenumbers.Parse(normalized, defaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(number)
}

func stripSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
