package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory CredentialStore for tests.
type memoryStore struct {
	mu   sync.Mutex
	pair entity.TokenPair
	held bool
}

func (s *memoryStore) SaveCredentials(_ context.Context, pair entity.TokenPair, _ *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair, s.held = pair, true

	return nil
}

func (s *memoryStore) LoadTokens(context.Context) (entity.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.held {
		return entity.TokenPair{}, repository.ErrNoCredentials
	}

	return s.pair, nil
}

func (s *memoryStore) LoadSession(context.Context) (*entity.Session, error) {
	return nil, repository.ErrNoCredentials
}

func (s *memoryStore) UpdateTokens(_ context.Context, pair entity.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair, s.held = pair, true

	return nil
}

func (s *memoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair, s.held = entity.TokenPair{}, false

	return nil
}

func newTestManager(t *testing.T, handler http.Handler, store *memoryStore) *tokenManager {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &tokenManager{
		store:      store,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		refreshURL: server.URL + "/api/v1/auth/refresh",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func seedStore(t *testing.T, store *memoryStore, access, refresh string) {
	t.Helper()
	require.NoError(t, store.SaveCredentials(context.Background(),
		entity.TokenPair{AccessToken: access, RefreshToken: refresh}, nil))
}

func TestTokenManager_Refresh_Success_PersistsNewPair(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/refresh", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "old-refresh", body["refreshToken"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "new-access",
			"refreshToken": "new-refresh",
		})
	})

	store := &memoryStore{}
	seedStore(t, store, "old-access", "old-refresh")
	manager := newTestManager(t, handler, store)

	err := manager.Refresh(context.Background())

	require.NoError(t, err)
	pair, loadErr := store.LoadTokens(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken, "both tokens replaced together")
}

func TestTokenManager_Refresh_Rejected_ClearsCredentials(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	store := &memoryStore{}
	seedStore(t, store, "old-access", "revoked-refresh")
	manager := newTestManager(t, handler, store)

	err := manager.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshRejected)
	assert.False(t, manager.HasCredentials(context.Background()), "a rejected refresh fails closed")
}

func TestTokenManager_Refresh_NetworkFailure_FailsClosed(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	store := &memoryStore{}
	seedStore(t, store, "access", "refresh")
	manager := &tokenManager{
		store:      store,
		httpClient: &http.Client{Timeout: time.Second},
		refreshURL: server.URL + "/api/v1/auth/refresh",
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	err := manager.Refresh(context.Background())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRefreshRejected, "an unreachable backend is not a rejection")
	assert.False(t, manager.HasCredentials(context.Background()),
		"any failed refresh clears the pair so coalesced retries land unauthenticated")
}

func TestTokenManager_Refresh_SentinelRefreshToken_Rejected(t *testing.T) {
	var hits atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	store := &memoryStore{}
	seedStore(t, store, "access", "undefined")
	manager := newTestManager(t, handler, store)

	err := manager.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshRejected)
	assert.Zero(t, hits.Load(), "a storage sentinel is never sent to the backend")
	assert.False(t, manager.HasCredentials(context.Background()))
}

func TestTokenManager_Refresh_UnusableResponse_Rejected(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "null",
			"refreshToken": "",
		})
	})

	store := &memoryStore{}
	seedStore(t, store, "access", "refresh")
	manager := newTestManager(t, handler, store)

	err := manager.Refresh(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefreshRejected)
	assert.False(t, manager.HasCredentials(context.Background()),
		"an unusable response pair fails closed")
}

func TestTokenManager_Refresh_ConcurrentCallers_Coalesced(t *testing.T) {
	var exchanges atomic.Int32
	gate := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		<-gate
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "new-access",
			"refreshToken": "new-refresh",
		})
	})

	store := &memoryStore{}
	seedStore(t, store, "access", "refresh")
	manager := newTestManager(t, handler, store)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = manager.Refresh(context.Background())
		}(i)
	}

	// Let every caller reach the manager before the exchange completes.
	require.Eventually(t, func() bool {
		return exchanges.Load() == 1
	}, 2*time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), exchanges.Load(), "one backend exchange for all callers")
	for _, err := range errs {
		assert.NoError(t, err, "every caller observes the shared outcome")
	}
}

func TestTokenManager_AccessToken_SentinelValues_ReportedAbsent(t *testing.T) {
	for _, sentinel := range []string{"", "undefined", "null"} {
		store := &memoryStore{}
		seedStore(t, store, sentinel, "refresh")
		manager := newTestManager(t, http.NotFoundHandler(), store)

		assert.Empty(t, manager.AccessToken(context.Background()), "sentinel %q", sentinel)
	}
}

func TestTokenManager_Invalidate_ClearsStore(t *testing.T) {
	store := &memoryStore{}
	seedStore(t, store, "access", "refresh")
	manager := newTestManager(t, http.NotFoundHandler(), store)

	require.True(t, manager.HasCredentials(context.Background()))
	require.NoError(t, manager.Invalidate(context.Background()))
	assert.False(t, manager.HasCredentials(context.Background()))
}
