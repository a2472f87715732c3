package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
	"github.com/creatorhub/marketplace-api/internal/pkg/password"
)

const (
	// minRecoveryMatches is how many identity fields must agree with one account.
	minRecoveryMatches = 2
	ledgerFallbackTTL  = 15 * time.Minute
)

// RecoveryService implements the forgot-password flow. The reset token is the
// only state carried between the two steps.
type RecoveryService struct {
	repo   ports.AccountRepository
	tokens ports.TokenService
	policy CredentialPolicy
	ledger ports.ResetTokenLedger // nil: reset tokens may be replayed until expiry
	audit  auditor
	log    zerolog.Logger
	match  passwordMatcher
}

// passwordMatcher compares a stored password with a supplied one.
type passwordMatcher func(stored, supplied string) bool

func NewRecoveryService(
	repo ports.AccountRepository,
	tokens ports.TokenService,
	policy CredentialPolicy,
	ledger ports.ResetTokenLedger,
	audit ports.AuditRecorder,
	ips IPHasher,
	log zerolog.Logger,
) *RecoveryService {
	if policy.Fallbacks == nil {
		policy.Fallbacks = map[domain.Role]string{}
	}
	return &RecoveryService{
		repo:   repo,
		tokens: tokens,
		policy: policy,
		ledger: ledger,
		audit:  newAuditor(audit, ips),
		log:    log,
		match:  password.Matches,
	}
}

// recoveryQuery is the normalised form of a recovery request.
type recoveryQuery struct {
	name        string
	email       string
	phone       string
	oldPassword string
}

func newRecoveryQuery(in ports.RecoveryInput) recoveryQuery {
	return recoveryQuery{
		name:        domain.NormalizeText(in.Name),
		email:       domain.NormalizeText(in.Email),
		phone:       domain.NormalizePhone(in.PhoneNumber),
		oldPassword: strings.TrimSpace(in.OldPassword),
	}
}

func (p recoveryQuery) provided() int {
	n := 0
	for _, v := range []string{p.name, p.email, p.phone, p.oldPassword} {
		if v != "" {
			n++
		}
	}
	return n
}

// score counts the fields of p found in the account's profile. The role's
// fallback password counts as a matching old password. Passwords are only
// compared when the identity fields leave the account exactly one match short
// of the threshold, so the result is exact only up to minRecoveryMatches.
func (p recoveryQuery) score(prof domain.RecoveryProfile, fallback string, match passwordMatcher) int {
	n := 0
	if p.name != "" && contains(prof.Names, p.name) {
		n++
	}
	if p.email != "" && contains(prof.Emails, p.email) {
		n++
	}
	if p.phone != "" && contains(prof.Phones, p.phone) {
		n++
	}
	if n == minRecoveryMatches-1 && p.oldPassword != "" && matchesAny(match, prof.Passwords, fallback, p.oldPassword) {
		n++
	}
	return n
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v != "" && v == want {
			return true
		}
	}
	return false
}

func matchesAny(match passwordMatcher, stored []string, fallback, supplied string) bool {
	for _, v := range stored {
		if match(v, supplied) {
			return true
		}
	}
	return match(fallback, supplied)
}

// VerifyRecovery scans the portal's accounts in storage order and returns a
// reset token for the first one matching at least two of the four fields.
func (s *RecoveryService) VerifyRecovery(ctx context.Context, in ports.RecoveryInput) (string, error) {
	if _, ok := domain.ParsePortal(string(in.Portal)); !ok {
		return "", domain.ErrInvalidBody
	}

	query := newRecoveryQuery(in)
	if query.provided() < minRecoveryMatches {
		return "", domain.ErrNeedTwoFields
	}

	candidates, err := s.repo.ListByPortal(ctx, in.Portal)
	if err != nil {
		s.log.Error().Err(err).Str("portal", string(in.Portal)).Msg("recovery candidate scan failed")
		return "", fmt.Errorf("verify recovery: %w", err)
	}

	var matched domain.Account
	for _, c := range candidates {
		if query.score(c.RecoveryProfile(), s.policy.fallback(c.Subject().Role), s.match) >= minRecoveryMatches {
			matched = c
			break
		}
	}
	if matched == nil {
		s.audit.record(domain.EventRecoveryVerify, in.Portal, domain.Subject{Role: in.Portal}, in.ClientIP, domain.ErrInvalidRecoveryData)
		return "", domain.ErrInvalidRecoveryData
	}

	sub := matched.Subject()
	tok, err := s.tokens.IssuePasswordResetToken(sub)
	if err != nil {
		return "", fmt.Errorf("verify recovery: %w", err)
	}

	s.audit.record(domain.EventRecoveryVerify, in.Portal, sub, in.ClientIP, nil)
	s.log.Info().Str("portal", string(in.Portal)).Str("subject", sub.ID).Msg("recovery verified")
	return tok, nil
}

// ResetPassword checks the new password against the reset policy before it
// looks at the token, then stores it for the token's subject.
func (s *RecoveryService) ResetPassword(ctx context.Context, in ports.ResetInput) error {
	pw := strings.TrimSpace(in.NewPassword)
	if !domain.IsResetPassword(pw) {
		return domain.ErrInvalidNewPassword
	}

	claims, err := s.tokens.VerifyPasswordResetToken(in.ResetToken)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrInvalidResetToken, err)
		s.audit.record(domain.EventPasswordReset, "", domain.Subject{}, in.ClientIP, err)
		return err
	}

	err = s.reset(ctx, claims, pw)
	s.audit.record(domain.EventPasswordReset, claims.Role, claims.Subject, in.ClientIP, err)
	return err
}

func (s *RecoveryService) reset(ctx context.Context, claims *domain.Claims, pw string) error {
	if s.ledger != nil {
		if claims.TokenID == "" {
			return fmt.Errorf("%w: missing token id", domain.ErrInvalidResetToken)
		}
		ttl := time.Until(claims.ExpiresAt)
		if ttl <= 0 {
			ttl = ledgerFallbackTTL
		}
		first, err := s.ledger.Consume(ctx, claims.TokenID, ttl)
		if err != nil {
			return fmt.Errorf("%w: ledger: %w", domain.ErrInvalidResetToken, err)
		}
		if !first {
			return fmt.Errorf("%w: already used", domain.ErrInvalidResetToken)
		}
	}

	stored, err := s.policy.encode(pw)
	if err != nil {
		return fmt.Errorf("reset password: encode: %w", err)
	}
	if err := s.repo.SetPassword(ctx, claims.ID, claims.Role, stored); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return err
		}
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info().Str("subject", claims.ID).Str("role", string(claims.Role)).Msg("password reset")
	return nil
}
