package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

var errStoreDown = errors.New("store down")

// stubAccountRepo keeps accounts in insertion order, like the candidate scan
// of the real store.
type stubAccountRepo struct {
	accounts []domain.Account
	err      error
	updates  []string
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, portal domain.Portal, username string) (domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.accounts {
		sub := a.Subject()
		if sub.Role == portal && domain.NormalizeText(sub.Username) == username {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindBySubject(_ context.Context, id string, role domain.Role) (domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.accounts {
		if sub := a.Subject(); sub.ID == id && sub.Role == role {
			return a, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) ListByPortal(_ context.Context, portal domain.Portal) ([]domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Account
	for _, a := range r.accounts {
		if a.Subject().Role == portal {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAccountRepo) SetPassword(_ context.Context, id string, role domain.Role, pw string) error {
	if r.err != nil {
		return r.err
	}
	for _, a := range r.accounts {
		if sub := a.Subject(); sub.ID != id || sub.Role != role {
			continue
		}
		switch acct := a.(type) {
		case *domain.StandardAccount:
			acct.Password = pw
		case *domain.ProviderAccount:
			acct.Password = pw
			acct.Temporary = ""
		}
		r.updates = append(r.updates, id)
		return nil
	}
	return domain.ErrAccountNotFound
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (r *recordingAudit) Record(ev domain.AuthEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingAudit) last() domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return domain.AuthEvent{}
	}
	return r.events[len(r.events)-1]
}

type stubLedger struct {
	seen map[string]bool
	err  error
}

func (l *stubLedger) Consume(_ context.Context, id string, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.seen == nil {
		l.seen = map[string]bool{}
	}
	if l.seen[id] {
		return false, nil
	}
	l.seen[id] = true
	return true, nil
}

func seedAccounts() []domain.Account {
	return []domain.Account{
		&domain.StandardAccount{ID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleAdmin, Username: "root", Password: "s3cret", FullName: "Ada Admin", Email: "ada@example.com", Phone: "+62 811 000 111"},
		&domain.StandardAccount{ID: "22222222-2222-2222-2222-222222222222", Role: domain.RoleUser, Username: "bob", Password: "hunter2", FullName: "Bob Buyer", Email: "bob@example.com", Phone: "0812-000-222"},
		&domain.ProviderAccount{ID: "33333333-3333-3333-3333-333333333333", Username: "Luna", Password: "moonlight", Temporary: "tmp-4455", ModelName: "Luna Star", Email: "luna@example.com", PhoneNumber: "0813 111 333", CellPhone: "+62 813 999 333"},
		&domain.ProviderAccount{ID: "44444444-4444-4444-4444-444444444444", Username: "nova", Password: "stardust", ModelName: "Nova", Email: "nova@example.com", CellPhone: "0814 444"},
	}
}

// testFallbacks mirrors the FALLBACK_PASSWORD_* defaults.
func testFallbacks() map[domain.Role]string {
	return map[domain.Role]string{
		domain.RoleAdmin:   "admin123",
		domain.RoleUser:    "user123",
		domain.RoleCreator: "creator123",
	}
}

var testPolicy = CredentialPolicy{Fallbacks: testFallbacks()}

func quietLogger() zerolog.Logger {
	return zerolog.Nop()
}
