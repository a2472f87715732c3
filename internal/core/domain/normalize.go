package domain

import (
	"strings"
	"unicode"
)

// NormalizeText lowercases and trims names, emails and usernames.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizePhone keeps only the digits of a phone number.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// IsResetPassword reports whether pw satisfies the password-reset policy:
// at least 8 characters, ASCII letters and digits only.
func IsResetPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	for _, r := range pw {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
