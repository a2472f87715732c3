package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

// RequireRole enforces role-based access control. It must run after RequireAuth.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sub, ok := SubjectFrom(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing_token"})
			}
			if _, ok := allowed[sub.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": domain.ErrForbidden.Error()})
			}
			return next(c)
		}
	}
}
