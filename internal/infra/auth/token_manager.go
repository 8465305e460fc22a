// Package auth provides concrete implementations for credential-related
// domain services: the refresh-coalescing token manager and the unverified
// JWT claim inspector.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"partsgate/config"
	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/repository"
	"partsgate/internal/domain/service"
	"partsgate/internal/errors"

	"go.uber.org/fx"
)

// ErrRefreshRejected is returned when the backend refuses the refresh
// token or responds with an unusable pair. Like every refresh failure, the
// persisted credentials are already cleared when it is returned.
var ErrRefreshRejected = errors.New("refresh token rejected")

// tokenManager implements service.TokenSource. It owns the refresh
// exchange and talks to the backend directly rather than through the
// bridge: the bridge's 401 handling must never recurse into itself.
type tokenManager struct {
	store      repository.CredentialStore
	httpClient *http.Client
	refreshURL string
	logger     *slog.Logger

	mu       sync.Mutex
	inflight chan struct{}
	lastErr  error
}

// TokenManagerParams holds dependencies for the token manager, injected by Fx.
type TokenManagerParams struct {
	fx.In

	Config *config.Config
	Store  repository.CredentialStore
	Logger *slog.Logger
}

// NewTokenManager is the constructor for the token manager.
func NewTokenManager(params TokenManagerParams) (service.TokenSource, error) {
	refreshURL, err := url.JoinPath(
		params.Config.Backend.BaseURL, params.Config.Backend.BasePath, "auth/refresh",
	)
	if err != nil {
		return nil, errors.Wrap(err, "join refresh url")
	}

	return &tokenManager{
		store:      params.Store,
		httpClient: &http.Client{Timeout: params.Config.Backend.Timeout},
		refreshURL: refreshURL,
		logger:     params.Logger,
	}, nil
}

// AccessToken returns the persisted access token, or "" when absent or a
// storage sentinel.
func (m *tokenManager) AccessToken(ctx context.Context) string {
	pair, err := m.store.LoadTokens(ctx)
	if err != nil || !entity.UsableToken(pair.AccessToken) {
		return ""
	}

	return pair.AccessToken
}

// HasCredentials reports whether a usable token pair is persisted.
func (m *tokenManager) HasCredentials(ctx context.Context) bool {
	pair, err := m.store.LoadTokens(ctx)

	return err == nil && pair.Usable()
}

// Invalidate clears all persisted credentials.
func (m *tokenManager) Invalidate(ctx context.Context) error {
	return errors.Wrap(m.store.Clear(ctx), "clear credentials")
}

// Refresh exchanges the refresh token for a new pair. Concurrent callers
// coalesce onto a single backend exchange and share its outcome: when many
// in-flight requests hit 401 at once, exactly one refresh runs and every
// waiter either retries with the new pair or fails closed together.
func (m *tokenManager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.inflight != nil {
		done := m.inflight
		m.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait for coalesced refresh")
		}

		m.mu.Lock()
		defer m.mu.Unlock()

		return m.lastErr
	}

	done := make(chan struct{})
	m.inflight = done
	m.mu.Unlock()

	err := m.doRefresh(ctx)

	m.mu.Lock()
	m.lastErr = err
	m.inflight = nil
	close(done)
	m.mu.Unlock()

	return err
}

// doRefresh fails closed: any failed exchange clears the persisted pair, so
// every coalesced waiter lands unauthenticated instead of retrying on a pair
// the backend may never honor again.
func (m *tokenManager) doRefresh(ctx context.Context) error {
	pair, err := m.store.LoadTokens(ctx)
	if err != nil || !entity.UsableToken(pair.RefreshToken) {
		m.closeSession(ctx)

		return errors.Wrap(ErrRefreshRejected, "no usable refresh token")
	}

	if err := m.exchange(ctx, pair.RefreshToken); err != nil {
		m.closeSession(ctx)

		return err
	}

	m.logger.Debug("token pair refreshed")

	return nil
}

func (m *tokenManager) exchange(ctx context.Context, refreshToken string) error {
	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return errors.Wrap(err, "encode refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send refresh request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.logger.Info("refresh token rejected", slog.Int("status", resp.StatusCode))

		return errors.Wrapf(ErrRefreshRejected, "refresh returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read refresh response")
	}

	var fresh entity.TokenPair
	if err := json.Unmarshal(body, &fresh); err != nil {
		return errors.Wrap(err, "decode refresh response")
	}
	if !fresh.Usable() {
		return errors.Wrap(ErrRefreshRejected, "refresh returned unusable tokens")
	}

	return errors.Wrap(m.store.UpdateTokens(ctx, fresh), "persist refreshed tokens")
}

func (m *tokenManager) closeSession(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear credentials", slog.Any("error", err))
	}
	m.logger.Info("refresh failed, session closed")
}
