package usecase

import (
	"context"

	"github.com/google/uuid"
)

// IdempotencyUsecase issues the deduplication token attached to checkout
// submissions. One key exists per logical transaction context (one per
// cart identity); it survives recoverable failures and is discarded only
// after confirmed settlement, so retries resolve to the same backend
// payment intent instead of creating duplicates.
type IdempotencyUsecase interface {
	// Key returns the stored key for a context, generating and persisting a
	// new one when absent.
	Key(ctx context.Context, scope string) (uuid.UUID, error)

	// Clear removes the stored key. Call only after confirmed settlement
	// success, never after a recoverable failure.
	Clear(ctx context.Context, scope string) error
}
