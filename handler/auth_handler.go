// Package handler exposes the UI surface of the hub: login, registration,
// session introspection and the protected profile/address views.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"session-hub/domain"
	appmiddleware "session-hub/middleware"
	"session-hub/session"
	"session-hub/validation"
)

// LoginPath is where unauthenticated requests are sent by the guard.
const LoginPath = "/login"

// AuthHandler drives the session store from UI events.
type AuthHandler struct {
	store     *session.Store
	validator *validation.Validator
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(store *session.Store, v *validation.Validator) *AuthHandler {
	return &AuthHandler{store: store, validator: v}
}

// Login handles POST /login. Validation failures never reach the network.
// On success the user is sent back to the location preserved by the guard,
// or given their identity as JSON.
func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var form validation.LoginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	if fields := h.validator.Check(form); fields != nil {
		return writeEnvelope(c, domain.NewValidationError(c.Request().URL.Path, fields))
	}

	err := h.store.Login(ctx, domain.Credentials{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		return mapError(c, err)
	}

	slog.InfoContext(ctx, "login succeeded", "username", form.Username)

	if rt := appmiddleware.SafeReturnTo(c.QueryParam(appmiddleware.ReturnToParam)); rt != "" {
		return c.Redirect(http.StatusSeeOther, rt)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": h.store.User(),
	})
}

// Register handles POST /register. The password confirmation is checked
// here and stripped before transmission; a successful registration does not
// authenticate, it redirects to the login view.
func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var form validation.RegisterForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	if fields := h.validator.Check(form); fields != nil {
		return writeEnvelope(c, domain.NewValidationError(c.Request().URL.Path, fields))
	}

	err := h.store.Register(ctx, domain.Registration{
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Username:        form.Username,
		Email:           form.Email,
		Password:        form.Password,
		ConfirmPassword: form.ConfirmPassword,
	})
	if err != nil {
		return mapError(c, err)
	}

	slog.InfoContext(ctx, "registration succeeded", "username", form.Username)
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

// Logout handles POST /logout. Local state clears no matter what the
// backend says, so this always lands on the login view.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.store.Logout(c.Request().Context())
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

// Refresh handles POST /refresh, a manual session extension.
func (h *AuthHandler) Refresh(c echo.Context) error {
	if err := h.store.Refresh(c.Request().Context()); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": h.store.User(),
	})
}
