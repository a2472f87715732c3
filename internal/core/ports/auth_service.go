package ports

import (
	"context"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

// LoginInput is the DTO passed from the transport layer to AuthService.Login.
type LoginInput struct {
	Username string
	Password string
	Portal   domain.Portal
	ClientIP string
}

// ChangePasswordInput carries the caller identity taken from its access token.
type ChangePasswordInput struct {
	Subject         domain.Subject
	CurrentPassword string
	NewPassword     string
	ClientIP        string
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, clientIP string) (*domain.TokenPair, error)
	ChangePassword(ctx context.Context, in ChangePasswordInput) error
}
