package impl

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"time"

	"partsgate/config"
	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/repository"
	"partsgate/internal/infra/api"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBridge builds a transport bridge pointed at an httptest server.
func newTestBridge(server *httptest.Server, tokens *fakeTokens, notifier *fakeNotifier, navigator *fakeNavigator) (*api.Client, error) {
	cfg := &config.Config{}
	cfg.Backend = config.BackendConfig{
		BaseURL:  server.URL,
		BasePath: "/api/v1",
		Timeout:  5 * time.Second,
	}

	return api.NewClient(api.ClientParams{
		Config:    cfg,
		Tokens:    tokens,
		Notifier:  notifier,
		Navigator: navigator,
		Logger:    newDiscardLogger(),
	})
}

// fakeTokens is a canned TokenSource.
type fakeTokens struct {
	mu          sync.Mutex
	token       string
	refreshErr  error
	refreshed   int
	invalidated int
}

func (f *fakeTokens) AccessToken(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.token
}

func (f *fakeTokens) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshed++
	if f.refreshErr != nil {
		// The token source contract: a failed refresh clears the pair.
		f.token = ""
	}

	return f.refreshErr
}

func (f *fakeTokens) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated++
	f.token = ""

	return nil
}

func (f *fakeTokens) HasCredentials(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.token != ""
}

// fakeNotifier records raised notifications.
type fakeNotifier struct {
	mu        sync.Mutex
	infos     []string
	successes []string
	failures  []string
}

func (f *fakeNotifier) Info(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, message)
}

func (f *fakeNotifier) Success(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successes = append(f.successes, message)
}

func (f *fakeNotifier) Error(_ context.Context, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, message)
}

// fakeNavigator records issued redirects.
type fakeNavigator struct {
	mu            sync.Mutex
	logins        []bool // expired flag per ToLogin call
	roleHomes     []entity.Role
	confirmations []string
	storefronts   int
}

func (f *fakeNavigator) ToLogin(_ context.Context, expired bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins = append(f.logins, expired)
}

func (f *fakeNavigator) ToRoleHome(_ context.Context, role entity.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleHomes = append(f.roleHomes, role)
}

func (f *fakeNavigator) ToOrderConfirmation(_ context.Context, orderID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations = append(f.confirmations, orderID)
}

func (f *fakeNavigator) ToStorefront(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storefronts++
}

// fakeInspector reports canned claims for any token.
type fakeInspector struct {
	expiry     time.Time
	ok         bool
	subject    string
	role       entity.Role
	identityOK bool
}

func (f *fakeInspector) ExpiresAt(string) (time.Time, bool) {
	return f.expiry, f.ok
}

func (f *fakeInspector) Identity(string) (string, entity.Role, bool) {
	return f.subject, f.role, f.identityOK
}

// memoryCredentialStore is an in-memory CredentialStore for tests.
type memoryCredentialStore struct {
	mu      sync.Mutex
	pair    entity.TokenPair
	session *entity.Session
	held    bool
}

func (s *memoryCredentialStore) SaveCredentials(_ context.Context, pair entity.TokenPair, session *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair, s.session, s.held = pair, session, true

	return nil
}

func (s *memoryCredentialStore) LoadTokens(context.Context) (entity.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.held || !s.pair.Usable() {
		return entity.TokenPair{}, repository.ErrNoCredentials
	}

	return s.pair, nil
}

func (s *memoryCredentialStore) LoadSession(context.Context) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.held || s.session == nil {
		return nil, repository.ErrNoCredentials
	}

	return s.session, nil
}

func (s *memoryCredentialStore) UpdateTokens(_ context.Context, pair entity.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = pair
	s.held = true

	return nil
}

func (s *memoryCredentialStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair, s.session, s.held = entity.TokenPair{}, nil, false

	return nil
}
