// Package gateway is the single chokepoint for outbound IdentityX API calls.
// It owns the credential carrier (a cookie jar holding the HTTP-only auth
// cookies) and normalizes every failure into the domain error envelope; no
// raw HTTP response or transport error ever escapes this package.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"session-hub/domain"
	"session-hub/token"
)

// Client talks to the IdentityX API.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	retryOn401 bool
}

// Option configures the client.
type Option func(*Client)

// WithRetryOn401 enables the refresh-and-retry policy: a 401 on a normal
// call triggers one token refresh followed by a single retry of the
// original request. Off by default.
func WithRetryOn401() Option {
	return func(c *Client) { c.retryOn401 = true }
}

// WithHTTPClient replaces the underlying HTTP client. The cookie jar is
// still installed on it so credentials keep flowing automatically.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a client for the given API base URL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		base: base,
		jar:  jar,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.Jar = jar

	return c, nil
}

// appResponse is the IdentityX success envelope.
type appResponse[T any] struct {
	Data          T      `json:"data"`
	StatusMessage string `json:"statusMessage"`
}

// errorBody is the shape of IdentityX error payloads. Older endpoints use
// "message" instead of "errorMessage".
type errorBody struct {
	ErrorMessage     string            `json:"errorMessage"`
	Message          string            `json:"message"`
	ErrorCode        string            `json:"errorCode"`
	ValidationErrors map[string]string `json:"validationErrors"`
	APIPath          string            `json:"apiPath"`
}

// Login authenticates with the backend. On success the auth cookies land in
// the jar and the returned identity carries the fields the login endpoint
// exposes (id, username, email); the rest arrives via CurrentUser.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	var out appResponse[domain.User]
	if err := c.do(ctx, http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	user := out.Data
	return &user, nil
}

// Register creates a new account. It never authenticates: the backend sets
// no cookies on this endpoint and the caller is expected to log in next.
func (c *Client) Register(ctx context.Context, reg domain.Registration) error {
	// Registration marshals without ConfirmPassword (json:"-"): the
	// confirmation check is client-side only.
	return c.do(ctx, http.MethodPost, "/user/register", reg, nil)
}

// CurrentUser fetches the identity of the session held in the jar.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var out appResponse[domain.User]
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, &out); err != nil {
		return nil, err
	}
	user := out.Data
	return &user, nil
}

// IsAuthenticated asks the backend whether the session cookies are valid.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	var out appResponse[bool]
	if err := c.do(ctx, http.MethodGet, "/auth/is-authenticated", nil, &out); err != nil {
		return false, err
	}
	return out.Data, nil
}

// refreshResponse may carry updated user fields alongside the new cookies.
type refreshResponse struct {
	User *domain.User `json:"user"`
}

// Refresh extends the session using the refresh cookie in the jar. Returns
// the updated identity when the backend includes one, nil otherwise.
func (c *Client) Refresh(ctx context.Context) (*domain.User, error) {
	var out refreshResponse
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout invalidates the session server-side and drops the auth cookies.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ListAddresses returns the current user's address records.
func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var out appResponse[[]domain.Address]
	if err := c.do(ctx, http.MethodGet, "/addresses", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateAddress submits a new address record.
func (c *Client) CreateAddress(ctx context.Context, addr domain.Address) (*domain.Address, error) {
	var out appResponse[domain.Address]
	if err := c.do(ctx, http.MethodPost, "/addresses", addr, &out); err != nil {
		return nil, err
	}
	created := out.Data
	return &created, nil
}

// TokenExpiry reports the expiry of the access token currently in the jar,
// if one is present and carries an exp claim.
func (c *Client) TokenExpiry() (time.Time, bool) {
	return token.CookieExpiry(c.jar, c.base)
}

// do performs one API call, decoding success envelopes into out and turning
// every failure into a *domain.Envelope.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.retryOn401 && path != "/auth/refresh" && path != "/auth/login" {
		resp.Body.Close()
		if _, err := c.Refresh(ctx); err != nil {
			return err
		}
		if resp, err = c.send(ctx, method, path, body); err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewNetworkError(path)
	}

	if resp.StatusCode >= 400 {
		return normalizeError(path, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return domain.NewEnvelope("unexpected response from server", domain.CodeUnknown, path, resp.StatusCode, nil)
		}
	}
	return nil
}

// send builds and executes one HTTP request. Credentials ride along via the
// jar; callers never set cookies.
func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, domain.NewEnvelope("failed to encode request", domain.CodeUnknown, path, 0, nil)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return nil, domain.NewEnvelope("failed to build request", domain.CodeUnknown, path, 0, nil)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// No response at all: connection refused, DNS failure, timeout.
		return nil, domain.NewNetworkError(path)
	}
	return resp, nil
}

// normalizeError converts an error response body into the envelope. Bodies
// that are not valid JSON still produce a well-formed envelope.
func normalizeError(path string, status int, raw []byte) *domain.Envelope {
	var body errorBody
	_ = json.Unmarshal(raw, &body)

	message := body.ErrorMessage
	if message == "" {
		message = body.Message
	}
	if message == "" {
		message = "Request failed"
	}

	code := body.ErrorCode
	if code == "" {
		code = domain.CodeUnknown
	}

	apiPath := body.APIPath
	if apiPath == "" {
		apiPath = path
	}

	return domain.NewEnvelope(message, code, apiPath, status, body.ValidationErrors)
}
