package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"session-hub/domain"
	"session-hub/session"
)

// SessionHandler exposes the store to the front-end.
type SessionHandler struct {
	store *session.Store
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(store *session.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

// SessionResponse is the front-end view of the session store.
type SessionResponse struct {
	State           string           `json:"state"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsLoading       bool             `json:"isLoading"`
	IsRefreshing    bool             `json:"isRefreshing"`
	User            *domain.User     `json:"user,omitempty"`
	Error           *domain.Envelope `json:"error,omitempty"`
}

// Handle serves GET /session: the current session state as JSON. This is a
// read of local state only; no backend call is made.
func (h *SessionHandler) Handle(c echo.Context) error {
	state := h.store.State()

	resp := SessionResponse{
		State:           state.String(),
		IsAuthenticated: state.Authenticated(),
		IsLoading:       state.Undetermined(),
		IsRefreshing:    state == domain.StateRefreshing,
		Error:           h.store.LastError(),
	}
	if state.Authenticated() {
		resp.User = h.store.User()
	}

	return c.JSON(http.StatusOK, resp)
}
