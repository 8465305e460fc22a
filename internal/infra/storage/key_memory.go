package storage

import (
	"context"
	"sync"

	"partsgate/internal/domain/repository"
	"partsgate/internal/errors"

	"github.com/google/uuid"
)

// memoryKeyStore implements repository.KeyStore with a mutex-guarded map.
// Keys live for the process lifetime only, the analogue of session-scoped
// browser storage: an abandoned checkout's key dies with the process instead
// of blocking a future checkout indefinitely.
type memoryKeyStore struct {
	mu   sync.Mutex
	keys map[string]uuid.UUID
}

// NewKeyStore is the constructor for the in-memory idempotency key store.
func NewKeyStore() repository.KeyStore {
	return &memoryKeyStore{keys: make(map[string]uuid.UUID)}
}

// Get returns the stored key for a context.
func (s *memoryKeyStore) Get(ctx context.Context, scope string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.keys[scope]
	if !ok {
		return uuid.Nil, errors.WithStack(repository.ErrKeyNotFound)
	}

	return key, nil
}

// Put stores the key for a context.
func (s *memoryKeyStore) Put(ctx context.Context, scope string, key uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[scope] = key

	return nil
}

// Delete removes the stored key.
func (s *memoryKeyStore) Delete(ctx context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, scope)

	return nil
}
