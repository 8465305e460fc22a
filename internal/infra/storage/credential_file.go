// Package storage provides the durable persistence adapters: the sealed
// credential file and the process-scoped idempotency key store.
package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"partsgate/config"
	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/repository"
	"partsgate/internal/errors"

	"go.uber.org/fx"
	"golang.org/x/crypto/chacha20poly1305"
)

const credentialFile = "credentials.bin"

// credentialRecord is the sealed file's plaintext layout. Tokens and the
// session snapshot live in one record so a pair is always written together.
type credentialRecord struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	Session      *entity.Session `json:"session,omitempty"`
}

// fileCredentialStore implements repository.CredentialStore with a single
// encrypted file. Writes go through a temp file and rename, so a crash can
// never leave one token of a pair updated without the other.
type fileCredentialStore struct {
	path   string
	aead   cipher.AEAD
	logger *slog.Logger

	mu sync.Mutex
}

// CredentialStoreParams holds dependencies for the store, injected by Fx.
type CredentialStoreParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewCredentialStore is the constructor for the file-backed credential store.
func NewCredentialStore(params CredentialStoreParams) (repository.CredentialStore, error) {
	key, err := hex.DecodeString(params.Config.Storage.SealKey)
	if err != nil {
		return nil, errors.Wrap(err, "decode storage seal key")
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "init credential seal")
	}

	if err := os.MkdirAll(params.Config.Storage.Dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}

	return &fileCredentialStore{
		path:   filepath.Join(params.Config.Storage.Dir, credentialFile),
		aead:   aead,
		logger: params.Logger,
	}, nil
}

// SaveCredentials atomically replaces the token pair and session snapshot.
func (s *fileCredentialStore) SaveCredentials(ctx context.Context, pair entity.TokenPair, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(credentialRecord{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Session:      session,
	})
}

// LoadTokens returns the persisted pair. Sentinel or missing tokens are
// reported as absent credentials.
func (s *fileCredentialStore) LoadTokens(ctx context.Context) (entity.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.read()
	if err != nil {
		return entity.TokenPair{}, err
	}

	pair := entity.TokenPair{AccessToken: record.AccessToken, RefreshToken: record.RefreshToken}
	if !pair.Usable() {
		return entity.TokenPair{}, errors.WithStack(repository.ErrNoCredentials)
	}

	return pair, nil
}

// LoadSession returns the persisted session snapshot.
func (s *fileCredentialStore) LoadSession(ctx context.Context) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.read()
	if err != nil {
		return nil, err
	}
	if record.Session == nil {
		return nil, errors.WithStack(repository.ErrNoCredentials)
	}

	return record.Session, nil
}

// UpdateTokens atomically replaces the token pair, keeping the snapshot.
func (s *fileCredentialStore) UpdateTokens(ctx context.Context, pair entity.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.read()
	if err != nil {
		if errors.Is(err, repository.ErrNoCredentials) {
			record = credentialRecord{}
		} else {
			return err
		}
	}

	record.AccessToken = pair.AccessToken
	record.RefreshToken = pair.RefreshToken

	return s.write(record)
}

// Clear removes the credential file. Idempotent.
func (s *fileCredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove credential file")
	}

	return nil
}

func (s *fileCredentialStore) read() (credentialRecord, error) {
	sealed, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return credentialRecord{}, errors.WithStack(repository.ErrNoCredentials)
		}

		return credentialRecord{}, errors.Wrap(err, "read credential file")
	}

	nonceSize := chacha20poly1305.NonceSizeX
	if len(sealed) < nonceSize {
		// Truncated file: treat as absent rather than failing startup.
		s.logger.Warn("credential file truncated, ignoring")

		return credentialRecord{}, errors.WithStack(repository.ErrNoCredentials)
	}

	plain, err := s.aead.Open(nil, sealed[:nonceSize], sealed[nonceSize:], nil)
	if err != nil {
		s.logger.Warn("credential file unreadable, ignoring", slog.Any("error", err))

		return credentialRecord{}, errors.WithStack(repository.ErrNoCredentials)
	}

	var record credentialRecord
	if err := json.Unmarshal(plain, &record); err != nil {
		return credentialRecord{}, errors.Wrap(err, "decode credential record")
	}

	return record, nil
}

func (s *fileCredentialStore) write(record credentialRecord) error {
	plain, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "encode credential record")
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "generate nonce")
	}

	sealed := append(nonce, s.aead.Seal(nil, nonce, plain, nil)...)

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, sealed, 0o600); err != nil {
		return errors.Wrap(err, "write credential file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "replace credential file")
	}

	return nil
}
