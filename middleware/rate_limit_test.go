package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLimiter(t *testing.T) {
	t.Run("allows requests within the burst", func(t *testing.T) {
		limiter := NewLoginLimiter(1, 3)
		e := echo.New()
		h := limiter.Middleware()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			require.NoError(t, h(c))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("rejects requests beyond the burst", func(t *testing.T) {
		limiter := NewLoginLimiter(1, 2)
		e := echo.New()
		h := limiter.Middleware()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		var lastErr error
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			lastErr = h(c)
		}

		var he *echo.HTTPError
		require.ErrorAs(t, lastErr, &he)
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
	})

	t.Run("limits are per IP", func(t *testing.T) {
		limiter := NewLoginLimiter(1, 1)
		e := echo.New()
		h := limiter.Middleware()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		for _, ip := range []string{"10.0.0.1:1234", "10.0.0.2:1234"} {
			req := httptest.NewRequest(http.MethodPost, "/login", nil)
			req.RemoteAddr = ip
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			require.NoError(t, h(c))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})
}
