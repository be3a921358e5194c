package session

import (
	"context"
	"log/slog"
	"time"

	"session-hub/domain"
)

// ExpiryFunc reports when the current access token expires, if known.
type ExpiryFunc func() (time.Time, bool)

// Refresher proactively extends the session before the access token
// expires, so the user is never interrupted mid-session. It only acts while
// the store is authenticated and never overlaps refresh calls.
type Refresher struct {
	store    *Store
	interval time.Duration
	lead     time.Duration
	expiry   ExpiryFunc
}

// NewRefresher creates a refresher. interval is the fixed fallback period
// (strictly shorter than the token lifetime); lead is how long before a
// known token expiry the refresh should fire. expiry may be nil when token
// expiry cannot be observed.
func NewRefresher(store *Store, interval, lead time.Duration, expiry ExpiryFunc) *Refresher {
	return &Refresher{
		store:    store,
		interval: interval,
		lead:     lead,
		expiry:   expiry,
	}
}

// Run drives the refresh loop until ctx is cancelled. The timer is always
// stopped on return; cancelling the context is the cleanup discipline that
// keeps no timer running against a dead session.
func (r *Refresher) Run(ctx context.Context) {
	timer := time.NewTimer(r.next())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			r.tick(ctx)
			timer.Reset(r.next())
		}
	}
}

// tick performs one refresh attempt. Anonymous sessions and sessions with a
// refresh already in flight are skipped.
func (r *Refresher) tick(ctx context.Context) {
	if r.store.State() != domain.StateAuthenticated {
		return
	}

	rctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := r.store.Refresh(rctx); err != nil {
		slog.WarnContext(ctx, "proactive session refresh failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "session refreshed")
}

// next computes the wait until the next refresh attempt: the fixed interval,
// shortened when the observed token expiry is nearer than the lead allows.
func (r *Refresher) next() time.Duration {
	d := r.interval
	if r.expiry != nil {
		if exp, ok := r.expiry(); ok {
			if until := time.Until(exp) - r.lead; until < d {
				d = until
			}
		}
	}
	if d < time.Second {
		d = time.Second
	}
	return d
}
