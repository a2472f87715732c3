package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
)

const subjectKey = "auth.subject"

// SetSubject stores the authenticated identity on the request context.
func SetSubject(c echo.Context, sub domain.Subject) {
	c.Set(subjectKey, sub)
}

// SubjectFrom returns the identity stored by RequireAuth.
func SubjectFrom(c echo.Context) (domain.Subject, bool) {
	sub, ok := c.Get(subjectKey).(domain.Subject)
	return sub, ok
}

// RequireAuth verifies the bearer token and stores its subject in the context.
// Password-reset tokens are rejected: they only authorise the reset endpoint.
func RequireAuth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing_token"})
			}

			claims, err := verifier.Verify(token)
			if err != nil || claims.Purpose != "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
			}

			SetSubject(c, claims.Subject)
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
