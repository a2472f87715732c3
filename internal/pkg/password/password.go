// Package password compares supplied credentials with stored values.
//
// Stored passwords are plaintext unless hashing was enabled when they were
// written, in which case they are bcrypt hashes. Both forms are accepted.
package password

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Matches reports whether supplied equals the stored credential. An empty
// stored value never matches.
func Matches(stored, supplied string) bool {
	if stored == "" || supplied == "" {
		return false
	}
	if isBcrypt(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// Encode returns the value to store for a new password.
func Encode(plain string, hash bool) (string, error) {
	if !hash {
		return plain, nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isBcrypt(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
