// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"partsgate/internal/domain/entity"
)

// LoginInput carries the credentials for a login attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyMFAInput completes a second-factor challenge issued by login.
type VerifyMFAInput struct {
	ChallengeToken string `json:"challengeToken" validate:"required"`
	Code           string `json:"code" validate:"required"`
}

// LoginOutput is the result of a login or MFA verification. When the
// backend demands a second factor, MFARequired is set, ChallengeToken
// carries the handle for VerifyMFA, and Session is nil: the session stays
// anonymous until verification completes.
type LoginOutput struct {
	Session        *entity.Session `json:"session,omitempty"`
	MFARequired    bool            `json:"mfaRequired,omitempty"`
	ChallengeToken string          `json:"challengeToken,omitempty"`
}

// SessionUsecase owns the authenticated identity for this process.
type SessionUsecase interface {
	// Initialize rehydrates the session from persisted credentials. It runs
	// the identity check once per process lifetime; repeat calls are no-ops
	// returning the first outcome. Identity-check failures never produce
	// notifications or redirects: revocation clears credentials, anything
	// else retains them for a later retry.
	Initialize(ctx context.Context) error

	// Login authenticates with the backend. On failure the backend's message
	// is returned without mutating session state.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// VerifyMFA completes a second-factor challenge and establishes the session.
	VerifyMFA(ctx context.Context, input *VerifyMFAInput) (*LoginOutput, error)

	// Logout notifies the backend best-effort, unconditionally clears
	// credentials and routes to the login surface.
	Logout(ctx context.Context) error

	// Current returns the active session, if any, and the lifecycle state.
	Current(ctx context.Context) (*entity.Session, entity.SessionState)
}
