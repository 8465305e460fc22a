// Package handler contains the HTTP handlers of the local gateway API.
package handler

import (
	"log/slog"
	"net/http"

	"partsgate/internal/delivery/http/response"
	"partsgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// SessionHandler holds dependencies for session-related handlers.
type SessionHandler struct {
	uc     usecase.SessionUsecase
	cart   usecase.CartUsecase
	logger *slog.Logger
}

// NewSessionHandler is the constructor for SessionHandler, injected by Fx.
func NewSessionHandler(uc usecase.SessionUsecase, cart usecase.CartUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		uc:     uc,
		cart:   cart,
		logger: logger,
	}
}

// Login handles the login request from the UI surface.
func (h *SessionHandler) Login(c echo.Context) error {
	var input *usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}

	output, err := h.uc.Login(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	if output.MFARequired {
		return response.Success(c, http.StatusOK, output, "Second factor required")
	}

	return response.Success(c, http.StatusOK, output, "Login successful")
}

// VerifyMFA completes a second-factor challenge.
func (h *SessionHandler) VerifyMFA(c echo.Context) error {
	var input *usecase.VerifyMFAInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}

	output, err := h.uc.VerifyMFA(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Login successful")
}

// Logout handles the logout request.
func (h *SessionHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	// Drop the cart while credentials are still valid; a stale cart
	// must not survive into the next sign-in.
	if err := h.cart.Clear(ctx); err != nil {
		h.logger.Warn("failed to clear cart on logout", slog.Any("error", err))
	}

	if err := h.uc.Logout(ctx); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// Current reports the active session and its lifecycle state.
func (h *SessionHandler) Current(c echo.Context) error {
	session, state := h.uc.Current(c.Request().Context())

	return response.Success(c, http.StatusOK, map[string]any{
		"session": session,
		"state":   state,
	}, "")
}
