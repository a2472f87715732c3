package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/http/handlers"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/ratelimit"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/token/tokentest"
)

type fixedAuth struct{}

func (fixedAuth) Login(context.Context, ports.LoginInput) (*domain.TokenPair, error) {
	return nil, domain.ErrInvalidCredentials
}

func (fixedAuth) Refresh(context.Context, string, string) (*domain.TokenPair, error) {
	return nil, domain.ErrInvalidRefresh
}

func (fixedAuth) ChangePassword(context.Context, ports.ChangePasswordInput) error { return nil }

type fixedRecovery struct{}

func (fixedRecovery) VerifyRecovery(context.Context, ports.RecoveryInput) (string, error) {
	return "", domain.ErrInvalidRecoveryData
}

func (fixedRecovery) ResetPassword(context.Context, ports.ResetInput) error { return nil }

func newTestRouter(t *testing.T, points int) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Auth:        fixedAuth{},
		Recovery:    fixedRecovery{},
		Tokens:      tokentest.NewService(t, nil),
		Limiter:     ratelimit.NewMemory(points, time.Minute),
		Checks:      map[string]handlers.Check{"noop": func(context.Context) error { return nil }},
		CORSOrigins: []string{"http://localhost:3000"},
		Log:         zerolog.Nop(),
		Registerer:  prometheus.NewRegistry(),
	})
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.10:4000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func bodyCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, rec.Body.String())
	}
	code, _ := body["error"].(string)
	return code
}

func TestRouter_LoginIsRateLimited(t *testing.T) {
	h := newTestRouter(t, 2)
	body := `{"username":"bob","password":"x","portal":"user"}`

	for i := 0; i < 2; i++ {
		if rec := do(h, http.MethodPost, "/auth/login", body); rec.Code != http.StatusUnauthorized {
			t.Fatalf("request %d: expected 401, got %d", i, rec.Code)
		}
	}
	rec := do(h, http.MethodPost, "/auth/login", body)
	if rec.Code != http.StatusTooManyRequests || bodyCode(t, rec) != "rate_limited" {
		t.Fatalf("expected 429 rate_limited, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_ChangePasswordRequiresToken(t *testing.T) {
	h := newTestRouter(t, 20)
	rec := do(h, http.MethodPost, "/auth/change-password", `{"currentPassword":"a","newPassword":"b"}`)
	if rec.Code != http.StatusUnauthorized || bodyCode(t, rec) != "missing_token" {
		t.Fatalf("expected 401 missing_token, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_LogoutAndHealth(t *testing.T) {
	h := newTestRouter(t, 20)

	if rec := do(h, http.MethodPost, "/auth/logout", ""); rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
}

func TestRouter_UnknownRouteEnvelope(t *testing.T) {
	h := newTestRouter(t, 20)
	rec := do(h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound || bodyCode(t, rec) != "not_found" {
		t.Fatalf("expected 404 not_found, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SecureHeadersAndBodyLimit(t *testing.T) {
	h := newTestRouter(t, 20)

	rec := do(h, http.MethodGet, "/health", "")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected secure headers, got %v", rec.Header())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	big := `{"refreshToken":"` + strings.Repeat("a", 2<<20) + `"}`
	rec = do(h, http.MethodPost, "/auth/refresh", big)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 for oversized body, got %d", rec.Code)
	}
}

func TestRouter_MeRequiresAccessToken(t *testing.T) {
	h := newTestRouter(t, 10)
	if rec := do(h, http.MethodGet, "/me", ""); rec.Code != http.StatusUnauthorized || bodyCode(t, rec) != "missing_token" {
		t.Fatalf("expected 401 missing_token, got %d %s", rec.Code, rec.Body.String())
	}
}
