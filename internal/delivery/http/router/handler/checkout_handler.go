package handler

import (
	"log/slog"
	"net/http"

	"partsgate/internal/delivery/http/response"
	"partsgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CheckoutHandler holds dependencies for checkout-related handlers.
type CheckoutHandler struct {
	uc     usecase.CheckoutUsecase
	logger *slog.Logger
}

// NewCheckoutHandler is the constructor for CheckoutHandler, injected by Fx.
func NewCheckoutHandler(uc usecase.CheckoutUsecase, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		uc:     uc,
		logger: logger,
	}
}

// Submit runs one checkout attempt.
func (h *CheckoutHandler) Submit(c echo.Context) error {
	var input *usecase.CheckoutInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid checkout input")
	}

	output, err := h.uc.Submit(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output, "Order placed")
}

// State reports the checkout machine state, e.g. for disabling the submit
// button.
func (h *CheckoutHandler) State(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"state": h.uc.State(),
	}, "")
}

// PickupQR renders the pickup QR code for a confirmed order as PNG.
func (h *CheckoutHandler) PickupQR(c echo.Context) error {
	png, err := h.uc.PickupQR(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
