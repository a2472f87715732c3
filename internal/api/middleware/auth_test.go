package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/infrastructure/token/tokentest"
)

var alice = domain.Subject{ID: "22222222-2222-2222-2222-222222222222", Role: domain.RoleUser, Username: "alice"}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body["error"]
}

func TestRequireAuth_ValidToken(t *testing.T) {
	tokens := tokentest.NewService(t, nil)
	signed, err := tokens.IssueAccessToken(alice)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := RequireAuth(tokens)(func(c echo.Context) error {
		called = true
		sub, ok := SubjectFrom(c)
		if !ok || sub != alice {
			t.Fatalf("subject not set: %+v", sub)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	tokens := tokentest.NewService(t, nil)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer"} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := RequireAuth(tokens)(func(c echo.Context) error {
			t.Fatalf("should not reach next handler")
			return nil
		})
		_ = handler(c)

		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "missing_token" {
			t.Fatalf("header %q: expected 401 missing_token, got %d %s", header, rec.Code, rec.Body.String())
		}
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	tokens := tokentest.NewService(t, nil)
	other := tokentest.NewService(t, nil)

	foreign, _ := other.IssueAccessToken(alice)
	reset, _ := tokens.IssuePasswordResetToken(alice)

	for name, tok := range map[string]string{
		"garbage":     "not-a-jwt",
		"foreign key": foreign,
		"reset token": reset,
	} {
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := RequireAuth(tokens)(func(c echo.Context) error {
			t.Fatalf("%s: should not reach next handler", name)
			return nil
		})
		_ = handler(c)

		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "invalid_token" {
			t.Fatalf("%s: expected 401 invalid_token, got %d %s", name, rec.Code, rec.Body.String())
		}
	}
}
