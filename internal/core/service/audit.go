package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
)

// knownReasons are the error codes surfaced as audit reasons, most specific first.
var knownReasons = []error{
	domain.ErrInvalidBody,
	domain.ErrNeedTwoFields,
	domain.ErrInvalidNewPassword,
	domain.ErrInvalidRefresh,
	domain.ErrInvalidResetToken,
	domain.ErrInvalidRecoveryData,
	domain.ErrInvalidCredentials,
	domain.ErrAccountNotFound,
}

type nopRecorder struct{}

func (nopRecorder) Record(domain.AuthEvent) {}

// auditor turns flow outcomes into audit events.
type auditor struct {
	rec ports.AuditRecorder
	ips IPHasher
	now func() time.Time
}

func newAuditor(rec ports.AuditRecorder, ips IPHasher) auditor {
	if rec == nil {
		rec = nopRecorder{}
	}
	return auditor{rec: rec, ips: ips, now: time.Now}
}

func (a auditor) record(kind domain.AuthEventKind, portal domain.Portal, sub domain.Subject, clientIP string, err error) {
	ev := domain.AuthEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Portal:     portal,
		SubjectID:  sub.ID,
		Username:   sub.Username,
		Outcome:    domain.OutcomeSuccess,
		ClientIP:   a.ips.Hash(clientIP),
		OccurredAt: a.now().UTC(),
	}
	if err != nil {
		ev.Outcome = domain.OutcomeFailure
		ev.Reason = reasonOf(err)
	}
	a.rec.Record(ev)
}

func reasonOf(err error) string {
	for _, known := range knownReasons {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "internal_error"
}
