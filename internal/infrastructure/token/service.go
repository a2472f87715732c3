// Package token signs and verifies the API's identity assertions with a
// single Ed25519 key pair shared by access, refresh and password-reset tokens.
package token

import (
	"crypto"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

const (
	// ResetTTL is fixed and independent of the access-token setting.
	ResetTTL = 15 * time.Minute

	defaultAccessTTL  = 900 * time.Second
	defaultRefreshTTL = 2592000 * time.Second
)

// Config captures the token settings loaded at startup.
type Config struct {
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

type tokenClaims struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Purpose  string `json:"purpose,omitempty"`
	jwt.RegisteredClaims
}

// Service implements ports.TokenService.
type Service struct {
	cfg  Config
	priv crypto.PrivateKey
	pub  crypto.PublicKey
}

// NewService parses the PEM key pair and applies TTL defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token: issuer and audience are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	priv, err := jwt.ParseEdPrivateKeyFromPEM(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("token: parse private key: %w", err)
	}
	pub, err := jwt.ParseEdPublicKeyFromPEM(cfg.PublicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("token: parse public key: %w", err)
	}

	return &Service{cfg: cfg, priv: priv, pub: pub}, nil
}

func (s *Service) IssueAccessToken(sub domain.Subject) (string, error) {
	return s.sign(sub, s.cfg.AccessTTL, "")
}

func (s *Service) IssueRefreshToken(sub domain.Subject) (string, error) {
	return s.sign(sub, s.cfg.RefreshTTL, "")
}

// IssuePasswordResetToken mints a 15 minute token tagged with the
// password_reset purpose and a unique id.
func (s *Service) IssuePasswordResetToken(sub domain.Subject) (string, error) {
	return s.sign(sub, ResetTTL, domain.PurposePasswordReset)
}

func (s *Service) sign(sub domain.Subject, ttl time.Duration, purpose string) (string, error) {
	now := s.cfg.Now()
	claims := tokenClaims{
		Role:     string(sub.Role),
		Username: sub.Username,
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.ID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if purpose != "" {
		claims.ID = uuid.NewString()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(s.priv)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates signature, expiry, issuer and audience, in that order.
// Tokens carrying a purpose are accepted here.
func (s *Service) Verify(token string) (*domain.Claims, error) {
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return s.pub, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if parsed.ExpiresAt == nil || !parsed.ExpiresAt.Time.After(s.cfg.Now()) {
		return nil, domain.ErrTokenExpired
	}
	if parsed.Issuer != s.cfg.Issuer || !audienceContains(parsed.Audience, s.cfg.Audience) {
		return nil, domain.ErrTokenIssuerOrAudience
	}
	if parsed.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrTokenMalformed)
	}

	claims := &domain.Claims{
		Subject: domain.Subject{
			ID:       parsed.Subject,
			Role:     domain.Role(parsed.Role),
			Username: parsed.Username,
		},
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
		Purpose:   parsed.Purpose,
		TokenID:   parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// VerifyPasswordResetToken is Verify plus the purpose check.
func (s *Service) VerifyPasswordResetToken(token string) (*domain.Claims, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != domain.PurposePasswordReset {
		return nil, domain.ErrTokenWrongPurpose
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to domain errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
		errors.Is(err, jwt.ErrEd25519Verification) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) {
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalidSignature, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
}

func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}
