package utils

import "strings"

// DefaultCountryCode is prefixed by NormalizeBR to national numbers.
const DefaultCountryCode = "55"

// ToDispatchForm keeps only the digits of phone. The result is the target
// of a messaging deep link (wa.me/<digits>); "" means no usable phone.
func ToDispatchForm(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToDialForm keeps digits and a leading '+', the form used by tel: links.
// A '+' after the first digit, or a second '+', is dropped.
func ToDialForm(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeBR turns a Brazilian number into the international digits-only
// form: one leading trunk zero is removed and countryCode is prefixed when
// the remaining number has 10 or 11 digits (area code + subscriber).
func NormalizeBR(phone, countryCode string) string {
	cleaned := ToDispatchForm(phone)
	if cleaned == "" {
		return ""
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	cleaned = strings.TrimPrefix(cleaned, "0")

	if len(cleaned) == 10 || len(cleaned) == 11 {
		cleaned = countryCode + cleaned
	}
	return cleaned
}
