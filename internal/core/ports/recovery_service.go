package ports

import (
	"context"
	"time"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

// RecoveryInput holds the partial identity claims of a forgot-password request.
// Empty fields are ignored.
type RecoveryInput struct {
	Portal      domain.Portal
	Name        string
	Email       string
	PhoneNumber string
	OldPassword string
	ClientIP    string
}

// ResetInput consumes a reset token.
type ResetInput struct {
	ResetToken  string
	NewPassword string
	ClientIP    string
}

// RecoveryService implements the two-step forgot-password flow.
type RecoveryService interface {
	// VerifyRecovery returns a short-lived reset token on a 2-of-4 match.
	VerifyRecovery(ctx context.Context, in RecoveryInput) (string, error)
	ResetPassword(ctx context.Context, in ResetInput) error
}

// ResetTokenLedger remembers consumed reset tokens. Only wired when
// single-use reset tokens are enabled.
type ResetTokenLedger interface {
	// Consume reports true the first time a token id is seen.
	Consume(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}
