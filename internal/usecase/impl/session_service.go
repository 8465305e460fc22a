// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"partsgate/internal/domain/entity"
	domainerrors "partsgate/internal/domain/errors"
	"partsgate/internal/domain/repository"
	"partsgate/internal/domain/service"
	"partsgate/internal/infra/api"
	"partsgate/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	bridge    *api.Client
	tokens    service.TokenSource
	store     repository.CredentialStore
	inspector service.TokenInspector
	notifier  service.Notifier
	navigator service.Navigator
	validate  *validator.Validate
	logger    *slog.Logger

	mu      sync.Mutex
	state   entity.SessionState
	session *entity.Session

	initOnce sync.Once
	initErr  error
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	Bridge    *api.Client
	Tokens    service.TokenSource
	Store     repository.CredentialStore
	Inspector service.TokenInspector
	Notifier  service.Notifier
	Navigator service.Navigator
	Logger    *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		bridge:    params.Bridge,
		tokens:    params.Tokens,
		store:     params.Store,
		inspector: params.Inspector,
		notifier:  params.Notifier,
		navigator: params.Navigator,
		validate:  validator.New(),
		logger:    params.Logger,
		state:     entity.SessionUninitialized,
	}
}

// identityResponse is the backend's identity payload, shared by login, MFA
// verification and the identity check.
type identityResponse struct {
	AccessToken    string `json:"accessToken"`
	RefreshToken   string `json:"refreshToken"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	MFARequired    bool   `json:"mfaRequired"`
	ChallengeToken string `json:"challengeToken"`
}

func (r identityResponse) identity() string {
	if r.Username != "" {
		return r.Username
	}

	return r.Email
}

// Initialize rehydrates the session from persisted credentials, once.
func (srv *sessionService) Initialize(ctx context.Context) error {
	srv.initOnce.Do(func() {
		srv.initErr = srv.initialize(ctx)
	})

	return srv.initErr
}

func (srv *sessionService) initialize(ctx context.Context) error {
	srv.setState(entity.SessionLoading, nil)

	pair, err := srv.store.LoadTokens(ctx)
	if err != nil || !pair.Usable() {
		srv.logger.Debug("no persisted credentials, starting anonymous")
		srv.setState(entity.SessionAnonymous, nil)

		return nil
	}

	// A persisted access token that is already past its expiry will bounce
	// off the identity check; exchange it up front and spare the round trip.
	if expiry, ok := srv.inspector.ExpiresAt(pair.AccessToken); ok && time.Now().After(expiry) {
		if err := srv.tokens.Refresh(ctx); err != nil {
			// The token source fails closed: the pair is already cleared.
			srv.logger.Info("startup refresh failed", slog.Any("error", err))
			srv.setState(entity.SessionAnonymous, nil)

			return nil
		}
	}

	resp, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodGet,
		Path:   "auth/me",
		Silent: true,
	})
	if err != nil {
		return srv.classifyIdentityCheckFailure(ctx, err)
	}

	var me identityResponse
	if err := resp.Decode(&me); err != nil {
		// Malformed response is transient: keep credentials for a later run.
		srv.logger.Warn("identity check returned malformed payload", slog.Any("error", err))
		srv.setState(entity.SessionAnonymous, nil)

		return nil
	}

	role, ok := entity.ParseRole(me.Role)
	if !ok {
		srv.logger.Warn("identity check reported unknown role", slog.String("role", me.Role))
		if clearErr := srv.store.Clear(ctx); clearErr != nil {
			srv.logger.Error("failed to clear credentials", slog.Any("error", clearErr))
		}
		srv.setState(entity.SessionAnonymous, nil)

		return errors.WithStack(domainerrors.ErrUnknownRole)
	}

	session := &entity.Session{Identity: me.identity(), Role: role}
	srv.setState(entity.SessionAuthenticated, session)
	srv.logger.Info("session rehydrated", slog.String("identity", session.Identity), slog.String("role", role.String()))

	return nil
}

// classifyIdentityCheckFailure separates revocation from transience: a 401
// or 403 means the backend no longer honors the credentials and they are
// cleared; anything else (network, 5xx) keeps them so a flaky network never
// logs the user out.
func (srv *sessionService) classifyIdentityCheckFailure(ctx context.Context, err error) error {
	var apiErr *domainerrors.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.HTTPCode()
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			srv.logger.Info("persisted session revoked, clearing credentials", slog.Int("status", code))
			if clearErr := srv.store.Clear(ctx); clearErr != nil {
				srv.logger.Error("failed to clear credentials", slog.Any("error", clearErr))
			}
			srv.setState(entity.SessionAnonymous, nil)

			return nil
		}
	}

	srv.logger.Info("identity check failed transiently, credentials retained", slog.Any("error", err))
	srv.setState(entity.SessionAnonymous, srv.recoverSnapshot(ctx))

	return nil
}

// recoverSnapshot loads the persisted session snapshot so the login surface
// can still show who the retained credentials belong to after a transient
// identity-check failure. The snapshot is advisory and never authenticates:
// the state stays anonymous until the backend confirms the identity. A
// snapshot contradicting the access token's own claims is discarded.
func (srv *sessionService) recoverSnapshot(ctx context.Context) *entity.Session {
	snapshot, err := srv.store.LoadSession(ctx)
	if err != nil {
		return nil
	}

	pair, err := srv.store.LoadTokens(ctx)
	if err != nil {
		return nil
	}
	if subject, role, ok := srv.inspector.Identity(pair.AccessToken); ok {
		if subject != snapshot.Identity || role != snapshot.Role {
			srv.logger.Warn("persisted session snapshot contradicts token claims, discarding",
				slog.String("snapshot", snapshot.Identity), slog.String("subject", subject))

			return nil
		}
	}

	return snapshot
}

// Login authenticates against the backend.
func (srv *sessionService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, domainerrors.NewAPIError(
			http.StatusBadRequest,
			domainerrors.ClassDomainValidation,
			"INVALID_INPUT",
			"email and password are required",
		).WrapMessage(err.Error())
	}

	resp, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   "auth/login",
		Body:   input,
		Silent: true,
	})
	if err != nil {
		srv.logger.Info("login rejected", slog.String("email", input.Email))

		return nil, errors.Wrap(err, "login failed")
	}

	var payload identityResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode login response")
	}

	if payload.MFARequired {
		srv.logger.Info("login requires second factor", slog.String("email", input.Email))

		return &usecase.LoginOutput{MFARequired: true, ChallengeToken: payload.ChallengeToken}, nil
	}

	return srv.establishSession(ctx, payload)
}

// VerifyMFA completes a second-factor challenge.
func (srv *sessionService) VerifyMFA(ctx context.Context, input *usecase.VerifyMFAInput) (*usecase.LoginOutput, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, domainerrors.NewAPIError(
			http.StatusBadRequest,
			domainerrors.ClassDomainValidation,
			"INVALID_INPUT",
			"challenge token and code are required",
		).WrapMessage(err.Error())
	}

	resp, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   "auth/mfa/verify",
		Body:   input,
		Silent: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "mfa verification failed")
	}

	var payload identityResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode mfa response")
	}

	return srv.establishSession(ctx, payload)
}

func (srv *sessionService) establishSession(ctx context.Context, payload identityResponse) (*usecase.LoginOutput, error) {
	role, ok := entity.ParseRole(payload.Role)
	if !ok {
		return nil, errors.WithStack(domainerrors.ErrUnknownRole)
	}

	pair := entity.TokenPair{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}
	if !pair.Usable() {
		return nil, errors.New("backend returned unusable token pair")
	}

	session := &entity.Session{Identity: payload.identity(), Role: role}
	if err := srv.store.SaveCredentials(ctx, pair, session); err != nil {
		return nil, errors.Wrap(err, "persist credentials")
	}

	srv.setState(entity.SessionAuthenticated, session)
	srv.notifier.Success(ctx, "signed in as "+session.Identity)
	srv.navigator.ToRoleHome(ctx, role)
	srv.logger.Info("session established", slog.String("identity", session.Identity), slog.String("role", role.String()))

	return &usecase.LoginOutput{Session: session}, nil
}

// Logout ends the session. The backend call is best-effort: client-side
// teardown proceeds regardless.
func (srv *sessionService) Logout(ctx context.Context) error {
	if _, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   "auth/logout",
		Silent: true,
	}); err != nil {
		srv.logger.Warn("backend logout failed, proceeding with local teardown", slog.Any("error", err))
	}

	if err := srv.store.Clear(ctx); err != nil {
		return errors.Wrap(err, "clear credentials")
	}

	srv.setState(entity.SessionAnonymous, nil)
	srv.navigator.ToLogin(ctx, false)
	srv.logger.Info("session ended")

	return nil
}

// Current returns the active session and state. When the transport bridge
// has failed closed and cleared the credentials underneath us, the state
// is corrected to anonymous here.
func (srv *sessionService) Current(ctx context.Context) (*entity.Session, entity.SessionState) {
	srv.mu.Lock()
	state, session := srv.state, srv.session
	srv.mu.Unlock()

	if state == entity.SessionAuthenticated && !srv.tokens.HasCredentials(ctx) {
		srv.setState(entity.SessionAnonymous, nil)

		return nil, entity.SessionAnonymous
	}

	return session, state
}

func (srv *sessionService) setState(state entity.SessionState, session *entity.Session) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.state = state
	srv.session = session
}
