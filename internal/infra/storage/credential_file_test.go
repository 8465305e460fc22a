package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"partsgate/config"
	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (repository.CredentialStore, string) {
	t.Helper()

	dir := t.TempDir()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Storage = config.StorageConfig{Dir: dir, SealKey: hex.EncodeToString(key)}

	store, err := NewCredentialStore(CredentialStoreParams{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return store, filepath.Join(dir, credentialFile)
}

func TestFileCredentialStore_SaveAndLoad_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	pair := entity.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"}
	session := &entity.Session{Identity: "casey", Role: entity.RoleCustomer}

	require.NoError(t, store.SaveCredentials(ctx, pair, session))

	got, err := store.LoadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, pair, got)

	loaded, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestFileCredentialStore_LoadTokens_NoFile(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LoadTokens(context.Background())

	assert.ErrorIs(t, err, repository.ErrNoCredentials)
}

func TestFileCredentialStore_SealedAtRest(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCredentials(ctx,
		entity.TokenPair{AccessToken: "secret-access", RefreshToken: "secret-refresh"}, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-access", "tokens never touch disk in plaintext")
	assert.NotContains(t, string(raw), "secret-refresh")
}

func TestFileCredentialStore_UpdateTokens_KeepsSessionSnapshot(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session := &entity.Session{Identity: "casey", Role: entity.RoleClerk}
	require.NoError(t, store.SaveCredentials(ctx,
		entity.TokenPair{AccessToken: "a1", RefreshToken: "r1"}, session))

	require.NoError(t, store.UpdateTokens(ctx, entity.TokenPair{AccessToken: "a2", RefreshToken: "r2"}))

	pair, err := store.LoadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", pair.AccessToken)
	assert.Equal(t, "r2", pair.RefreshToken)

	loaded, err := store.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestFileCredentialStore_SentinelTokens_ReportedAbsent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCredentials(ctx,
		entity.TokenPair{AccessToken: "undefined", RefreshToken: "null"}, nil))

	_, err := store.LoadTokens(ctx)

	assert.ErrorIs(t, err, repository.ErrNoCredentials)
}

func TestFileCredentialStore_Clear_Idempotent(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCredentials(ctx,
		entity.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx), "clearing an empty store is not an error")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileCredentialStore_CorruptedFile_TreatedAsAbsent(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveCredentials(ctx,
		entity.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = store.LoadTokens(ctx)

	assert.ErrorIs(t, err, repository.ErrNoCredentials,
		"a damaged file degrades to a fresh login, never a startup failure")
}

func TestFileCredentialStore_TruncatedFile_TreatedAsAbsent(t *testing.T) {
	store, path := newTestStore(t)

	require.NoError(t, os.WriteFile(path, []byte("short"), 0o600))

	_, err := store.LoadTokens(context.Background())

	assert.ErrorIs(t, err, repository.ErrNoCredentials)
}

func TestFileCredentialStore_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Storage = config.StorageConfig{Dir: dir, SealKey: hex.EncodeToString(key)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := NewCredentialStore(CredentialStoreParams{Config: cfg, Logger: logger})
	require.NoError(t, err)
	require.NoError(t, first.SaveCredentials(context.Background(),
		entity.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil))

	second, err := NewCredentialStore(CredentialStoreParams{Config: cfg, Logger: logger})
	require.NoError(t, err)

	pair, err := second.LoadTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", pair.AccessToken)
}
