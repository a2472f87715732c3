package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/creatorhub/marketplace-api/internal/api/middleware"
	"github.com/creatorhub/marketplace-api/internal/core/domain"
)

// ctxSubject returns the identity injected by middleware.RequireAuth. A route
// reached without it answers 401 missing_token.
func ctxSubject(c echo.Context) (domain.Subject, bool) {
	sub, ok := middleware.SubjectFrom(c)
	if !ok || sub.ID == "" || sub.Role == "" {
		return domain.Subject{}, false
	}
	return sub, true
}
