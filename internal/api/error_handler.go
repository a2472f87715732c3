package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler for errors that escape
// the handlers: router misses, oversized bodies, panics and the like.
//   - echo.HTTPError values keep their status and get a snake_case code.
//   - Anything else is logged and rendered as 500 internal_error without detail.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		resp := errorResponse{Error: statusCode(he.Code)}
		if msg := fmt.Sprintf("%v", he.Message); msg != "" && msg != http.StatusText(he.Code) {
			resp.Message = msg
		}
		return he.Code, resp
	}

	// Unexpected error: log the real cause, return a generic code.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal_error"}
}

// statusCode turns an HTTP status into the snake_case code used in bodies,
// e.g. 413 → "request_entity_too_large".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
