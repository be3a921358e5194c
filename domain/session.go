package domain

// SessionState describes where the local session is in its lifecycle.
type SessionState int

const (
	// StateAnonymous means no identity is known locally.
	StateAnonymous SessionState = iota
	// StateAuthenticating means an identity is being established: either a
	// login call is in flight or a hydrated snapshot awaits confirmation.
	StateAuthenticating
	// StateAuthenticated means a login, refresh or identity fetch succeeded.
	StateAuthenticated
	// StateRefreshing means an authenticated session has a refresh in flight.
	StateRefreshing
	// StateExpired means a refresh or identity check failed with 401; the
	// identity has been cleared and the state collapses to anonymous once
	// the error is acknowledged.
	StateExpired
)

// String returns the state name for logging.
func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Authenticated reports whether the state carries a confirmed identity.
// A session mid-refresh is still authenticated.
func (s SessionState) Authenticated() bool {
	return s == StateAuthenticated || s == StateRefreshing
}

// Undetermined reports whether the state is still being resolved and
// protected content must not be rendered nor a redirect issued yet.
func (s SessionState) Undetermined() bool {
	return s == StateAuthenticating
}
