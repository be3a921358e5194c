package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"session-hub/domain"
)

// writeEnvelope renders a normalized error envelope as the response. The
// envelope's own status drives the HTTP status; transport failures (status
// 0) surface as 502 because the backend never answered.
func writeEnvelope(c echo.Context, env *domain.Envelope) error {
	status := env.StatusCode
	if status == 0 {
		status = http.StatusBadGateway
	}
	if status < 400 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, env)
}

// mapError converts any error bubbling out of the session layer into a
// response. Everything above the gateway only ever sees envelopes or
// sentinel domain errors.
func mapError(c echo.Context, err error) error {
	var env *domain.Envelope
	if errors.As(err, &env) {
		return writeEnvelope(c, env)
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated),
		errors.Is(err, domain.ErrSessionExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

// HTTPErrorHandler renders unmatched routes and framework errors in the
// same envelope shape the rest of the surface uses, so the front-end has a
// single error contract.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var env *domain.Envelope
	if errors.As(err, &env) {
		_ = writeEnvelope(c, env)
		return
	}

	status := http.StatusInternalServerError
	message := "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	code := domain.CodeUnknown
	switch status {
	case http.StatusNotFound:
		code = "NOT_FOUND"
		message = "The page you are looking for does not exist"
	case http.StatusForbidden:
		code = "FORBIDDEN"
		message = "You do not have permission to access this resource"
	case http.StatusInternalServerError:
		code = domain.CodeInternalError
	}

	_ = c.JSON(status, domain.NewEnvelope(message, code, c.Request().URL.Path, status, nil))
}
