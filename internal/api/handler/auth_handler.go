package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/creatorhub/marketplace-api/internal/api/metrics"
	"github.com/creatorhub/marketplace-api/internal/core/domain"
	"github.com/creatorhub/marketplace-api/internal/core/ports"
)

// knownErrors maps flow errors to their HTTP status. Order matters: wrapped
// errors match the first entry they satisfy.
var knownErrors = []struct {
	err    error
	status int
}{
	{domain.ErrInvalidBody, http.StatusBadRequest},
	{domain.ErrNeedTwoFields, http.StatusBadRequest},
	{domain.ErrInvalidNewPassword, http.StatusBadRequest},
	{domain.ErrInvalidRefresh, http.StatusUnauthorized},
	{domain.ErrInvalidResetToken, http.StatusUnauthorized},
	{domain.ErrInvalidRecoveryData, http.StatusUnauthorized},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrAccountNotFound, http.StatusNotFound},
}

type AuthHandler struct {
	auth     ports.AuthService
	recovery ports.RecoveryService
	log      zerolog.Logger
}

func NewAuthHandler(auth ports.AuthService, recovery ports.RecoveryService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, recovery: recovery, log: log}
}

// Login authenticates against a portal and returns an access/refresh pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  tokenPairResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := h.bind(c, &req); err != nil {
		metrics.LoginsTotal.WithLabelValues("unknown", domain.ErrInvalidBody.Error()).Inc()
		return h.respondError(c, err, http.StatusBadRequest, domain.ErrInvalidBody.Error())
	}

	pair, err := h.auth.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Portal:   domain.Portal(req.Portal),
		ClientIP: c.RealIP(),
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(req.Portal, errorCode(err, "login_failed")).Inc()
		return h.respondError(c, err, http.StatusInternalServerError, "login_failed")
	}

	metrics.LoginsTotal.WithLabelValues(req.Portal, "success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// Refresh exchanges a valid token for a fresh pair.
//
// @Summary      Refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  tokenPairResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err, http.StatusBadRequest, domain.ErrInvalidBody.Error())
	}

	pair, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken, c.RealIP())
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(domain.ErrInvalidRefresh.Error()).Inc()
		return h.respondError(c, err, http.StatusUnauthorized, domain.ErrInvalidRefresh.Error())
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

// ChangePassword replaces the caller's password.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  okResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	sub, ok := ctxSubject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing_token"})
	}

	var req changePasswordRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err, http.StatusBadRequest, domain.ErrInvalidBody.Error())
	}

	err := h.auth.ChangePassword(c.Request().Context(), ports.ChangePasswordInput{
		Subject:         sub,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
		ClientIP:        c.RealIP(),
	})
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("change", errorCode(err, "password_change_failed")).Inc()
		return h.respondError(c, err, http.StatusInternalServerError, "password_change_failed")
	}

	metrics.PasswordChangesTotal.WithLabelValues("change", "success").Inc()
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// VerifyRecovery checks at least two identity fields and returns a
// short-lived reset token.
//
// @Summary      Forgot password: verify identity
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      recoveryVerifyRequest  true  "Portal and any two identity fields"
// @Success      200   {object}  recoveryVerifyResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/forgot-password/verify [post]
func (h *AuthHandler) VerifyRecovery(c echo.Context) error {
	var req recoveryVerifyRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err, http.StatusBadRequest, domain.ErrInvalidBody.Error())
	}

	tok, err := h.recovery.VerifyRecovery(c.Request().Context(), ports.RecoveryInput{
		Portal:      domain.Portal(req.Portal),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		OldPassword: req.OldPassword,
		ClientIP:    c.RealIP(),
	})
	if err != nil {
		metrics.RecoveryVerificationsTotal.WithLabelValues(req.Portal, errorCode(err, "forgot_password_verify_failed")).Inc()
		return h.respondError(c, err, http.StatusInternalServerError, "forgot_password_verify_failed")
	}

	metrics.RecoveryVerificationsTotal.WithLabelValues(req.Portal, "success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues(domain.PurposePasswordReset).Inc()
	return c.JSON(http.StatusOK, recoveryVerifyResponse{OK: true, ResetToken: tok})
}

// ResetPassword sets a new password using a reset token.
//
// @Summary      Forgot password: reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Reset token and new password"
// @Success      200   {object}  okResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/forgot-password/reset [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := h.bind(c, &req); err != nil {
		return h.respondError(c, err, http.StatusBadRequest, domain.ErrInvalidBody.Error())
	}

	err := h.recovery.ResetPassword(c.Request().Context(), ports.ResetInput{
		ResetToken:  req.ResetToken,
		NewPassword: req.NewPassword,
		ClientIP:    c.RealIP(),
	})
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("reset", errorCode(err, domain.ErrInvalidResetToken.Error())).Inc()
		return h.respondError(c, err, http.StatusUnauthorized, domain.ErrInvalidResetToken.Error())
	}

	metrics.PasswordChangesTotal.WithLabelValues("reset", "success").Inc()
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Logout is a no-op: tokens are stateless and expire on their own.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  okResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Me returns the identity carried by the caller's access token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sub, ok := ctxSubject(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing_token"})
	}
	return c.JSON(http.StatusOK, meResponse{ID: sub.ID, Role: string(sub.Role), Username: sub.Username})
}

// bind decodes and validates the request body. Any failure wraps
// domain.ErrInvalidBody.
func (h *AuthHandler) bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.ErrInvalidBody
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

// respondError writes the JSON envelope for err. Errors that are not flow
// errors are logged and answered with the route's fallback.
func (h *AuthHandler) respondError(c echo.Context, err error, fallbackStatus int, fallbackCode string) error {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			resp := errorResponse{Error: k.err.Error()}
			if k.err == domain.ErrInvalidBody && err != domain.ErrInvalidBody {
				resp.Message = err.Error()
			}
			return c.JSON(k.status, resp)
		}
	}

	h.log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("auth request failed")
	return c.JSON(fallbackStatus, errorResponse{Error: fallbackCode})
}

func errorCode(err error, fallback string) string {
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			return k.err.Error()
		}
	}
	return fallback
}
