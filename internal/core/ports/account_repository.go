package ports

import (
	"context"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

// AccountRepository reads and updates credentials for both account tables.
type AccountRepository interface {
	// FindByUsername looks up an account case-insensitively within a portal.
	// Returns domain.ErrAccountNotFound when nothing matches.
	FindByUsername(ctx context.Context, portal domain.Portal, username string) (domain.Account, error)
	// FindBySubject loads the account a token was issued for.
	FindBySubject(ctx context.Context, id string, role domain.Role) (domain.Account, error)
	// ListByPortal returns every account of a portal in storage order.
	ListByPortal(ctx context.Context, portal domain.Portal) ([]domain.Account, error)
	// SetPassword overwrites the stored password. Provider accounts also have
	// their temp password cleared. Returns domain.ErrAccountNotFound when no
	// row was updated.
	SetPassword(ctx context.Context, id string, role domain.Role, password string) error
}
