package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrKeyNotFound is returned when no idempotency key is stored for a context.
var ErrKeyNotFound = errors.New("idempotency key not found")

// KeyStore holds idempotency keys scoped to the process lifetime, mirroring
// session-scoped browser storage: keys die with the process, so an abandoned
// checkout never blocks a future one indefinitely.
type KeyStore interface {
	// Get returns the stored key for a logical transaction context,
	// or ErrKeyNotFound.
	Get(ctx context.Context, scope string) (uuid.UUID, error)

	// Put stores the key for a context, replacing any previous value.
	Put(ctx context.Context, scope string, key uuid.UUID) error

	// Delete removes the stored key. Idempotent.
	Delete(ctx context.Context, scope string) error
}
