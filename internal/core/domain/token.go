package domain

import "time"

// PurposePasswordReset marks tokens that may only be used to set a new password.
const PurposePasswordReset = "password_reset"

// Claims is the verified content of an identity assertion.
type Claims struct {
	Subject
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Purpose is empty for access and refresh tokens.
	Purpose string
	// TokenID is only set on password-reset tokens.
	TokenID string
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
