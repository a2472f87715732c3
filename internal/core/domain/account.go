package domain

// Role identifies which portal an account belongs to. It never changes after
// the account is created.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
)

// Portal is the login surface a request comes from. Each portal maps to
// exactly one role, so the two share their values.
type Portal = Role

// ParsePortal validates a raw portal name.
func ParsePortal(s string) (Portal, bool) {
	switch Portal(s) {
	case RoleAdmin, RoleUser, RoleCreator:
		return Portal(s), true
	}
	return "", false
}

// IsProvider reports whether accounts with this role live in the providers table.
func (r Role) IsProvider() bool {
	return r == RoleCreator
}

// Subject is the identity carried inside every issued token.
type Subject struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
}

// RecoveryProfile lists the values an account can be matched against during
// identity recovery. Names, emails and phones are already normalised;
// passwords are the raw stored credentials.
type RecoveryProfile struct {
	Names     []string
	Emails    []string
	Phones    []string
	Passwords []string
}

// Account is the common view over standard and provider accounts. Credential
// checks and recovery matching work against this interface only.
type Account interface {
	Subject() Subject
	StoredPassword() string
	// TempPassword returns the provider's alternate credential. Standard
	// accounts never have one.
	TempPassword() (string, bool)
	RecoveryProfile() RecoveryProfile
}

// StandardAccount is a row of app_accounts (admin and user portals).
type StandardAccount struct {
	ID       string
	Role     Role
	Username string
	Password string
	FullName string
	Email    string
	Phone    string
}

func (a *StandardAccount) Subject() Subject {
	return Subject{ID: a.ID, Role: a.Role, Username: a.Username}
}

func (a *StandardAccount) StoredPassword() string { return a.Password }

func (a *StandardAccount) TempPassword() (string, bool) { return "", false }

func (a *StandardAccount) RecoveryProfile() RecoveryProfile {
	return RecoveryProfile{
		Names:     []string{NormalizeText(a.FullName), NormalizeText(a.Username)},
		Emails:    []string{NormalizeText(a.Email)},
		Phones:    []string{NormalizePhone(a.Phone)},
		Passwords: []string{a.Password},
	}
}

// ProviderAccount is a row of providers (creator portal).
type ProviderAccount struct {
	ID          string
	Username    string
	Password    string
	Temporary   string
	ModelName   string
	Email       string
	PhoneNumber string
	CellPhone   string
}

func (a *ProviderAccount) Subject() Subject {
	return Subject{ID: a.ID, Role: RoleCreator, Username: a.Username}
}

func (a *ProviderAccount) StoredPassword() string { return a.Password }

func (a *ProviderAccount) TempPassword() (string, bool) {
	return a.Temporary, a.Temporary != ""
}

func (a *ProviderAccount) RecoveryProfile() RecoveryProfile {
	return RecoveryProfile{
		Names:     []string{NormalizeText(a.ModelName), NormalizeText(a.Username)},
		Emails:    []string{NormalizeText(a.Email)},
		Phones:    []string{NormalizePhone(a.PhoneNumber), NormalizePhone(a.CellPhone)},
		Passwords: []string{a.Password, a.Temporary},
	}
}
