package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
)

const (
	providerSelect = `
		SELECT uuid::text AS id,
		       username,
		       COALESCE(password, '') AS password,
		       COALESCE(temp_password, '') AS temp_password,
		       COALESCE(model_name, '') AS model_name,
		       COALESCE(email, '') AS email,
		       COALESCE(phone_number, '') AS phone_number,
		       COALESCE(cell_phone, '') AS cell_phone
		  FROM providers`

	standardSelect = `
		SELECT a.id::text AS id,
		       a.role,
		       a.username,
		       COALESCE(a.password, '') AS password,
		       COALESCE(a.email, '') AS email,
		       COALESCE(a.phone, '') AS phone,
		       COALESCE(u.full_name, '') AS full_name
		  FROM app_accounts a
		  LEFT JOIN user_profiles u ON u.account_id = a.id`

	providerSetPassword = `
		UPDATE providers
		   SET password = $1,
		       temp_password = NULL,
		       updated_at = NOW()
		 WHERE uuid = $2::uuid`

	standardSetPassword = `
		UPDATE app_accounts
		   SET password = $1,
		       updated_at = NOW()
		 WHERE id = $2::uuid
		   AND role = $3`
)

// AccountRepository implements ports.AccountRepository over the two account
// tables: app_accounts for admin and user, providers for creators.
type AccountRepository struct {
	store *Store
}

func NewAccountRepository(store *Store) ports.AccountRepository {
	return &AccountRepository{store: store}
}

func (r *AccountRepository) FindByUsername(ctx context.Context, portal domain.Portal, username string) (domain.Account, error) {
	var (
		res *Result
		err error
	)
	if portal.IsProvider() {
		res, err = r.store.Query(ctx, providerSelect+`
		 WHERE LOWER(username) = $1
		 ORDER BY created_at, uuid
		 LIMIT 1`, username)
	} else {
		res, err = r.store.Query(ctx, standardSelect+`
		 WHERE LOWER(a.username) = $1
		   AND a.role = $2
		 LIMIT 1`, username, string(portal))
	}
	if err != nil {
		return nil, err
	}
	return firstAccount(portal, res)
}

func (r *AccountRepository) FindBySubject(ctx context.Context, id string, role domain.Role) (domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrAccountNotFound
	}

	var (
		res *Result
		err error
	)
	if role.IsProvider() {
		res, err = r.store.Query(ctx, providerSelect+`
		 WHERE uuid = $1::uuid
		 LIMIT 1`, id)
	} else {
		res, err = r.store.Query(ctx, standardSelect+`
		 WHERE a.id = $1::uuid
		   AND a.role = $2
		 LIMIT 1`, id, string(role))
	}
	if err != nil {
		return nil, err
	}
	return firstAccount(role, res)
}

func (r *AccountRepository) ListByPortal(ctx context.Context, portal domain.Portal) ([]domain.Account, error) {
	var (
		res *Result
		err error
	)
	if portal.IsProvider() {
		res, err = r.store.Query(ctx, providerSelect+`
		 ORDER BY created_at, uuid`)
	} else {
		res, err = r.store.Query(ctx, standardSelect+`
		 WHERE a.role = $1
		 ORDER BY a.created_at, a.id`, string(portal))
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Account, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, accountFromRow(portal, row))
	}
	return out, nil
}

func (r *AccountRepository) SetPassword(ctx context.Context, id string, role domain.Role, password string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrAccountNotFound
	}

	var (
		res *Result
		err error
	)
	if role.IsProvider() {
		res, err = r.store.Query(ctx, providerSetPassword, password, id)
	} else {
		res, err = r.store.Query(ctx, standardSetPassword, password, id, string(role))
	}
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if res.RowCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func firstAccount(role domain.Role, res *Result) (domain.Account, error) {
	if len(res.Rows) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	return accountFromRow(role, res.Rows[0]), nil
}

func accountFromRow(role domain.Role, row Row) domain.Account {
	if role.IsProvider() {
		return &domain.ProviderAccount{
			ID:          row.String("id"),
			Username:    row.String("username"),
			Password:    row.String("password"),
			Temporary:   row.String("temp_password"),
			ModelName:   row.String("model_name"),
			Email:       row.String("email"),
			PhoneNumber: row.String("phone_number"),
			CellPhone:   row.String("cell_phone"),
		}
	}
	return &domain.StandardAccount{
		ID:       row.String("id"),
		Role:     domain.Role(row.String("role")),
		Username: row.String("username"),
		Password: row.String("password"),
		FullName: row.String("full_name"),
		Email:    row.String("email"),
		Phone:    row.String("phone"),
	}
}
