package domain

import "errors"

// Session errors.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
)

// Snapshot errors.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Rate limiting errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)
