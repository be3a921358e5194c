package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"session-hub/domain"
	"session-hub/session"
)

// UserHandler serves the protected identity views.
type UserHandler struct {
	store *session.Store
}

// NewUserHandler creates the user handler.
func NewUserHandler(store *session.Store) *UserHandler {
	return &UserHandler{store: store}
}

// Profile serves GET /profile. It always revalidates against the backend:
// the profile view is an authoritative identity check, and a 401 here
// invalidates the local session.
func (h *UserHandler) Profile(c echo.Context) error {
	if err := h.store.ConfirmIdentity(c.Request().Context()); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user": h.store.User(),
	})
}

// Dashboard serves GET /dashboard from local state. The session can end
// between the guard's check and this read (logout, refresh failure), so a
// missing identity answers 401 rather than rendering.
func (h *UserHandler) Dashboard(c echo.Context) error {
	user := h.store.User()
	if user == nil {
		return mapError(c, domain.ErrNotAuthenticated)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":    user,
		"message": "Welcome back, " + user.FirstName,
	})
}
