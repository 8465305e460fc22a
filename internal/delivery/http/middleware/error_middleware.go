// Package middleware contains the echo middleware of the gateway API.
package middleware

import (
	"log/slog"
	"net/http"

	deliverycontext "partsgate/internal/delivery/context"
	"partsgate/internal/delivery/http/response"
	domainerrors "partsgate/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware translates classified errors into gateway responses.
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler.
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *domainerrors.APIError
	if errors.As(err, &apiErr) {
		// The classification decides what the UI does with the failure; the
		// message is already user-facing.
		_ = response.Error(c, apiErr.HTTPCode(), apiErr.Code(), string(apiErr.Class()), apiErr.Message(), "")

		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, _ := httpErr.Message.(string)
		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", string(domainerrors.ClassDomainValidation), message, "")

		return
	}

	m.logger.Error("unhandled error",
		slog.String("request_id", deliverycontext.GetRequestID(c)),
		slog.String("method", c.Request().Method),
		slog.String("path", c.Request().URL.Path),
		slog.Any("error", err),
	)

	_ = response.Error(c, http.StatusInternalServerError,
		"INTERNAL_ERROR", string(domainerrors.ClassTransient), "internal error", err.Error())
}
