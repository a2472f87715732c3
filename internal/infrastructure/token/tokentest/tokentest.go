// Package tokentest builds token services backed by throwaway Ed25519 keys.
package tokentest

import (
	"testing"
	"time"

	"github.com/creatorhub/marketplace-api/internal/infrastructure/token"
)

const (
	Issuer   = "marketplace-api"
	Audience = "marketplace-web"
)

// KeyPair returns a freshly generated PEM-encoded Ed25519 key pair.
func KeyPair(t testing.TB) (privPEM, pubPEM []byte) {
	t.Helper()
	privPEM, pubPEM, err := token.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate key pair: %v", err)
	}
	return privPEM, pubPEM
}

// Config returns a token.Config with a new key pair and the given clock.
// A nil clock means time.Now.
func Config(t testing.TB, now func() time.Time) token.Config {
	t.Helper()
	privPEM, pubPEM := KeyPair(t)
	return token.Config{
		Issuer:        Issuer,
		Audience:      Audience,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
		PrivateKeyPEM: privPEM,
		PublicKeyPEM:  pubPEM,
		Now:           now,
	}
}

// NewService builds a ready-to-use token service.
func NewService(t testing.TB, now func() time.Time) *token.Service {
	t.Helper()
	svc, err := token.NewService(Config(t, now))
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}
	return svc
}
