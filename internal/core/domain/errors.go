package domain

import "errors"

// Flow errors. Their text doubles as the error code returned over HTTP.
var (
	ErrInvalidBody         = errors.New("invalid_body")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
	ErrInvalidRefresh      = errors.New("invalid_refresh")
	ErrNeedTwoFields       = errors.New("need_two_fields")
	ErrInvalidRecoveryData = errors.New("invalid_recovery_data")
	ErrInvalidNewPassword  = errors.New("invalid_new_password")
	ErrInvalidResetToken   = errors.New("invalid_reset_token")
	ErrAccountNotFound     = errors.New("not_found")
	ErrForbidden           = errors.New("forbidden")
)

// Token verification errors.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenIssuerOrAudience = errors.New("token issuer or audience mismatch")
	ErrTokenWrongPurpose     = errors.New("token has wrong purpose")
)
