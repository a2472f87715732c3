package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
)

// AuthService implements login, token refresh and password change.
type AuthService struct {
	repo   ports.AccountRepository
	tokens ports.TokenService
	policy CredentialPolicy
	audit  auditor
	log    zerolog.Logger
}

func NewAuthService(
	repo ports.AccountRepository,
	tokens ports.TokenService,
	policy CredentialPolicy,
	audit ports.AuditRecorder,
	ips IPHasher,
	log zerolog.Logger,
) *AuthService {
	if policy.Fallbacks == nil {
		policy.Fallbacks = map[domain.Role]string{}
	}
	return &AuthService{
		repo:   repo,
		tokens: tokens,
		policy: policy,
		audit:  newAuditor(audit, ips),
		log:    log,
	}
}

// Login checks credentials against the portal's account table and issues an
// access/refresh pair. Unknown usernames and wrong passwords are reported
// identically.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.TokenPair, error) {
	if _, ok := domain.ParsePortal(string(in.Portal)); !ok {
		return nil, domain.ErrInvalidBody
	}

	username := domain.NormalizeText(in.Username)
	pw := strings.TrimSpace(in.Password)
	attempt := domain.Subject{Role: in.Portal, Username: username}

	if username == "" || pw == "" {
		s.audit.record(domain.EventLogin, in.Portal, attempt, in.ClientIP, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	acct, err := s.repo.FindByUsername(ctx, in.Portal, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.audit.record(domain.EventLogin, in.Portal, attempt, in.ClientIP, domain.ErrInvalidCredentials)
			return nil, domain.ErrInvalidCredentials
		}
		s.log.Error().Err(err).Str("portal", string(in.Portal)).Msg("login lookup failed")
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.policy.accepts(acct, pw) {
		s.audit.record(domain.EventLogin, in.Portal, acct.Subject(), in.ClientIP, domain.ErrInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(acct.Subject())
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.audit.record(domain.EventLogin, in.Portal, acct.Subject(), in.ClientIP, nil)
	s.log.Info().Str("portal", string(in.Portal)).Str("subject", acct.Subject().ID).Msg("login succeeded")
	return pair, nil
}

// Refresh re-issues a token pair from the claims of a still-valid token. The
// credential store is not consulted.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, clientIP string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrInvalidRefresh, err)
		s.audit.record(domain.EventRefresh, "", domain.Subject{}, clientIP, err)
		return nil, err
	}

	pair, err := s.issuePair(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRefresh, err)
	}

	s.audit.record(domain.EventRefresh, claims.Role, claims.Subject, clientIP, nil)
	return pair, nil
}

// ChangePassword replaces the caller's password after checking the current
// one with the same rules as login. The new password only has to be non-empty.
func (s *AuthService) ChangePassword(ctx context.Context, in ports.ChangePasswordInput) error {
	current := strings.TrimSpace(in.CurrentPassword)
	next := strings.TrimSpace(in.NewPassword)
	if current == "" || next == "" {
		return domain.ErrInvalidBody
	}

	err := s.changePassword(ctx, in.Subject, current, next)
	s.audit.record(domain.EventChangePassword, in.Subject.Role, in.Subject, in.ClientIP, err)
	return err
}

func (s *AuthService) changePassword(ctx context.Context, sub domain.Subject, current, next string) error {
	acct, err := s.repo.FindBySubject(ctx, sub.ID, sub.Role)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("change password: %w", err)
	}

	if !s.policy.accepts(acct, current) {
		return domain.ErrInvalidCredentials
	}

	stored, err := s.policy.encode(next)
	if err != nil {
		return fmt.Errorf("change password: encode: %w", err)
	}
	if err := s.repo.SetPassword(ctx, sub.ID, sub.Role, stored); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Str("subject", sub.ID).Str("role", string(sub.Role)).Msg("password changed")
	return nil
}

func (s *AuthService) issuePair(sub domain.Subject) (*domain.TokenPair, error) {
	access, err := s.tokens.IssueAccessToken(sub)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(sub)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
