package token

import (
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthCookie is the name of the HTTP-only cookie carrying the access token.
// Matches the IdentityX backend's Set-Cookie.
const AuthCookie = "jwt"

// CookieExpiry reads the access-token cookie out of the jar and returns the
// expiry claim of the JWT it carries. The token is parsed without signature
// verification: verification is the backend's job, the claim is only used to
// schedule a refresh ahead of expiry. Returns false when no usable token is
// present.
func CookieExpiry(jar http.CookieJar, base *url.URL) (time.Time, bool) {
	if jar == nil || base == nil {
		return time.Time{}, false
	}

	for _, c := range jar.Cookies(base) {
		if c.Name != AuthCookie || c.Value == "" {
			continue
		}
		return Expiry(c.Value)
	}
	return time.Time{}, false
}

// Expiry extracts the exp claim from a raw JWT without verifying it.
func Expiry(raw string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
