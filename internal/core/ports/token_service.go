package ports

import "github.com/creatorhub/marketplace-api/internal/core/domain"

// TokenVerifier validates identity assertions.
type TokenVerifier interface {
	// Verify checks signature, expiry, issuer and audience. It does not look
	// at the purpose claim.
	Verify(token string) (*domain.Claims, error)
	// VerifyPasswordResetToken runs Verify and then requires the
	// password_reset purpose.
	VerifyPasswordResetToken(token string) (*domain.Claims, error)
}

// TokenService mints and validates access, refresh and password-reset tokens.
type TokenService interface {
	TokenVerifier
	IssueAccessToken(sub domain.Subject) (string, error)
	IssueRefreshToken(sub domain.Subject) (string, error)
	IssuePasswordResetToken(sub domain.Subject) (string, error)
}
