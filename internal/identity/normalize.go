// Package identity canonicalizes contact identifiers so that phone numbers
// and emails entered by hand in different formats compare equal.
package identity

import "strings"

// countryCode is the international prefix folded to the local trunk form.
const countryCode = "46"

// CanonicalPhone reduces a phone number to digits only, with a leading
// country prefix ("+46", "0046") rewritten to the local "0…" trunk form.
// "+46 70-123 45 67" and "0701234567" canonicalize to the same string.
func CanonicalPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, "+"+countryCode):
		return "0" + strings.TrimPrefix(digits, countryCode)
	case strings.HasPrefix(digits, "00"+countryCode):
		return "0" + strings.TrimPrefix(digits, "00"+countryCode)
	}
	return digits
}

// CanonicalEmail lowercases and trims an email address.
func CanonicalEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsMobile reports whether the canonical form of the number is a local
// mobile number (07 followed by eight digits), the only numbers the SMS
// channel is offered for.
func IsMobile(raw string) bool {
	p := CanonicalPhone(raw)
	if len(p) != 10 || !strings.HasPrefix(p, "07") {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PhonesMatch reports whether two phone numbers denote the same subscriber,
// ignoring formatting. Empty numbers never match.
func PhonesMatch(a, b string) bool {
	ca, cb := CanonicalPhone(a), CanonicalPhone(b)
	return ca != "" && ca == cb
}

// EmailsMatch reports whether two emails are the same address, ignoring
// case. Empty addresses never match.
func EmailsMatch(a, b string) bool {
	ca, cb := CanonicalEmail(a), CanonicalEmail(b)
	return ca != "" && ca == cb
}
