// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"

	"partsgate/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrNoCredentials is returned when no token pair is persisted.
var ErrNoCredentials = errors.New("no persisted credentials")

// CredentialStore persists the token pair and the last-known session
// snapshot across process restarts. It is the only durable shared state
// besides idempotency keys, and has a single writer at any instant.
//
// Implementations must write the token pair atomically: both tokens are
// replaced together or not at all, never partially.
type CredentialStore interface {
	// SaveCredentials atomically replaces the token pair and session snapshot.
	SaveCredentials(ctx context.Context, pair entity.TokenPair, session *entity.Session) error

	// LoadTokens returns the persisted pair, or ErrNoCredentials when absent.
	// Sentinel values ("undefined", "null", empty) are reported as absent.
	LoadTokens(ctx context.Context) (entity.TokenPair, error)

	// LoadSession returns the persisted session snapshot, or ErrNoCredentials.
	LoadSession(ctx context.Context) (*entity.Session, error)

	// UpdateTokens atomically replaces the token pair, keeping the session
	// snapshot. Used by the refresh path.
	UpdateTokens(ctx context.Context, pair entity.TokenPair) error

	// Clear removes all persisted credentials. Idempotent.
	Clear(ctx context.Context) error
}
