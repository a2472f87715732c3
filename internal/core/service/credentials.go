package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/pkg/password"
)

// CredentialPolicy holds the per-portal fallback passwords and how new
// passwords are stored. It is injected at startup.
type CredentialPolicy struct {
	// Fallbacks maps a role to a password that is always accepted for it.
	// An empty value disables the fallback for that role.
	Fallbacks map[domain.Role]string
	// HashPasswords stores new passwords as bcrypt hashes.
	HashPasswords bool
}

func (p CredentialPolicy) fallback(role domain.Role) string {
	return p.Fallbacks[role]
}

// accepts reports whether supplied is a valid credential for acct: the stored
// password, the provider temp password, or the role's fallback.
func (p CredentialPolicy) accepts(acct domain.Account, supplied string) bool {
	if password.Matches(acct.StoredPassword(), supplied) {
		return true
	}
	if tmp, ok := acct.TempPassword(); ok && password.Matches(tmp, supplied) {
		return true
	}
	return password.Matches(p.fallback(acct.Subject().Role), supplied)
}

func (p CredentialPolicy) encode(plain string) (string, error) {
	return password.Encode(plain, p.HashPasswords)
}

// IPHasher pseudonymises client addresses before they reach the audit trail.
type IPHasher struct {
	secret []byte
}

func NewIPHasher(secret string) IPHasher {
	return IPHasher{secret: []byte(secret)}
}

func (h IPHasher) Hash(ip string) string {
	if ip == "" || len(h.secret) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}
