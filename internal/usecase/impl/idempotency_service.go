package impl

import (
	"context"
	"log/slog"

	"partsgate/internal/domain/repository"
	"partsgate/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// idempotencyService implements the IdempotencyUsecase interface.
type idempotencyService struct {
	store  repository.KeyStore
	logger *slog.Logger
}

// IdempotencyServiceParams holds dependencies for idempotencyService,
// injected by Fx.
type IdempotencyServiceParams struct {
	fx.In

	Store  repository.KeyStore
	Logger *slog.Logger
}

// NewIdempotencyService is the constructor for idempotencyService.
func NewIdempotencyService(params IdempotencyServiceParams) usecase.IdempotencyUsecase {
	return &idempotencyService{
		store:  params.Store,
		logger: params.Logger,
	}
}

// Key returns the stored key for a context, generating one when absent. The
// stored key survives failed attempts, so a retried submission carries the
// same deduplication token and the backend resolves it to the original
// payment intent.
func (srv *idempotencyService) Key(ctx context.Context, scope string) (uuid.UUID, error) {
	key, err := srv.store.Get(ctx, scope)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, repository.ErrKeyNotFound) {
		return uuid.Nil, errors.Wrap(err, "load idempotency key")
	}

	key, err = uuid.NewRandom()
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "generate idempotency key")
	}

	if err := srv.store.Put(ctx, scope, key); err != nil {
		return uuid.Nil, errors.Wrap(err, "store idempotency key")
	}

	srv.logger.Debug("issued idempotency key", slog.String("scope", scope))

	return key, nil
}

// Clear discards the key after confirmed settlement. The next checkout in
// the same scope starts a fresh transaction.
func (srv *idempotencyService) Clear(ctx context.Context, scope string) error {
	if err := srv.store.Delete(ctx, scope); err != nil {
		return errors.Wrap(err, "delete idempotency key")
	}

	return nil
}
