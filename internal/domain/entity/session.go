// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "strings"

// Role represents the kind of account the backend authenticated.
type Role string

const (
	// RoleAdmin indicates a marketplace administrator.
	RoleAdmin Role = "ADMIN"
	// RoleClerk indicates an operations clerk.
	RoleClerk Role = "CLERK"
	// RoleCustomer indicates a storefront customer.
	RoleCustomer Role = "CUSTOMER"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is one of the three enumerated values.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleClerk, RoleCustomer:
		return true
	default:
		return false
	}
}

// ParseRole canonicalizes a backend role string. The backend prefixes roles
// with "ROLE_" in some responses; the prefix is stripped before matching.
// Any value outside the three enumerated roles is rejected.
func ParseRole(raw string) (Role, bool) {
	canonical := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(raw), "ROLE_"))
	role := Role(canonical)
	if !role.IsValid() {
		return "", false
	}

	return role, true
}

// SessionState models the session store lifecycle.
type SessionState string

const (
	// SessionUninitialized is the state before Initialize has run.
	SessionUninitialized SessionState = "UNINITIALIZED"
	// SessionLoading is the transient state while the identity check is in flight.
	SessionLoading SessionState = "LOADING"
	// SessionAuthenticated means a valid session is active.
	SessionAuthenticated SessionState = "AUTHENTICATED"
	// SessionAnonymous means no session is active.
	SessionAnonymous SessionState = "ANONYMOUS"
)

// Session is the authenticated identity for this process. At most one
// Session is active at any time.
type Session struct {
	Identity string `json:"identity"` // Email or username reported by the backend.
	Role     Role   `json:"role"`
}

// TokenPair is the credential pair issued by the backend. Both tokens are
// persisted and invalidated together, never individually.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// tokenSentinels are string values that durable storage may hand back in
// place of a real token after a partial or corrupted write on the original
// client. They must never be transmitted.
var tokenSentinels = map[string]struct{}{
	"":          {},
	"undefined": {},
	"null":      {},
}

// UsableToken reports whether a stored token value is a real credential
// rather than an absent or sentinel value.
func UsableToken(token string) bool {
	_, sentinel := tokenSentinels[token]

	return !sentinel
}

// Usable reports whether both tokens of the pair are transmittable.
func (p TokenPair) Usable() bool {
	return UsableToken(p.AccessToken) && UsableToken(p.RefreshToken)
}
