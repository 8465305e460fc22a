package service

import (
	"context"
	"time"

	"partsgate/internal/domain/entity"
)

// TokenSource supplies bearer credentials to the transport bridge and
// performs the refresh protocol on its behalf.
type TokenSource interface {
	// AccessToken returns the current access token, or "" when none is
	// usable. The bridge sends unauthenticated requests in that case.
	AccessToken(ctx context.Context) string

	// Refresh exchanges the refresh token for a new pair and persists it
	// atomically. Concurrent callers are coalesced into a single exchange;
	// all of them observe the one outcome. On failure all credentials are
	// cleared so concurrent retries fail closed instead of looping.
	Refresh(ctx context.Context) error

	// Invalidate clears all credentials. Called by the bridge when a retried
	// request fails again with an authentication error.
	Invalidate(ctx context.Context) error

	// HasCredentials reports whether a usable token pair is held.
	HasCredentials(ctx context.Context) bool
}

// TokenInspector reads claims from a token without validating its
// signature; validation is the backend's job. Used to decide whether a
// persisted access token is already expired before spending a round trip
// on it.
type TokenInspector interface {
	// ExpiresAt returns the exp claim. ok is false when the token is not a
	// parseable JWT or carries no expiry, in which case the token is used
	// as-is and the backend decides.
	ExpiresAt(token string) (expiry time.Time, ok bool)

	// Identity extracts the subject and role hints from the token, when
	// present. Purely advisory; the identity check endpoint is authoritative.
	Identity(token string) (subject string, role entity.Role, ok bool)
}
