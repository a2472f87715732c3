package domain

import "time"

// AuthEventKind names the operation an audit event describes.
type AuthEventKind string

const (
	EventLogin          AuthEventKind = "login"
	EventRefresh        AuthEventKind = "refresh"
	EventChangePassword AuthEventKind = "change_password"
	EventRecoveryVerify AuthEventKind = "recovery_verify"
	EventPasswordReset  AuthEventKind = "password_reset"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthEvent is one entry of the authentication audit trail.
type AuthEvent struct {
	ID         string
	Kind       AuthEventKind
	Portal     Portal
	SubjectID  string
	Username   string
	Outcome    string
	Reason     string // error code on failure
	ClientIP   string // HMAC of the caller address, never the raw IP
	OccurredAt time.Time
}

// ShardKey groups events of the same account so they are persisted in order.
func (e AuthEvent) ShardKey() string {
	if e.SubjectID != "" {
		return e.SubjectID
	}
	return string(e.Portal) + ":" + e.Username
}
