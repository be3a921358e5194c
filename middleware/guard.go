// Package middleware contains the HTTP middlewares guarding the UI surface.
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"session-hub/session"
)

// ReturnToParam carries the originally requested location through the login
// flow so a successful login can send the user back.
const ReturnToParam = "return_to"

// Guard gates protected routes on session store state.
//
// While the state is still being determined (a login in flight or a
// hydrated snapshot awaiting confirmation) it answers 503 with Retry-After:
// never the protected content, never a premature redirect. Once determined,
// unauthenticated requests are redirected to the login view with the
// original location preserved; authenticated ones pass through.
func Guard(store *session.Store, loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := store.State()

			if state.Undetermined() {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "loading",
				})
			}

			if !state.Authenticated() {
				target := loginPath
				if rt := SafeReturnTo(c.Request().RequestURI); rt != "" {
					target += "?" + ReturnToParam + "=" + url.QueryEscape(rt)
				}
				return c.Redirect(http.StatusSeeOther, target)
			}

			return next(c)
		}
	}
}

// SafeReturnTo accepts only same-site relative paths, so the login flow can
// never be used as an open redirect. Returns "" for anything else.
func SafeReturnTo(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	if strings.ContainsAny(raw, "\r\n") {
		return ""
	}
	return raw
}
