package handler

import (
	"log/slog"
	"net/http"

	"partsgate/internal/delivery/http/response"
	"partsgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CartHandler holds dependencies for cart-related handlers.
type CartHandler struct {
	uc     usecase.CartUsecase
	logger *slog.Logger
}

// NewCartHandler is the constructor for CartHandler, injected by Fx.
func NewCartHandler(uc usecase.CartUsecase, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		uc:     uc,
		logger: logger,
	}
}

type addItemInput struct {
	PartID   string `json:"partId" validate:"required"`
	Quantity int    `json:"quantity" validate:"required"`
}

type updateQuantityInput struct {
	Quantity int `json:"quantity" validate:"required"`
}

// Get fetches the authoritative cart snapshot.
func (h *CartHandler) Get(c echo.Context) error {
	view, err := h.uc.Refresh(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "")
}

// AddItem adds a part to the cart.
func (h *CartHandler) AddItem(c echo.Context) error {
	var input addItemInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	view, err := h.uc.AddItem(c.Request().Context(), input.PartID, input.Quantity)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "Added to cart")
}

// UpdateQuantity sets a cart item's quantity.
func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	var input updateQuantityInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	view, err := h.uc.UpdateQuantity(c.Request().Context(), c.Param("id"), input.Quantity)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "")
}

// RemoveItem deletes a cart item.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	view, err := h.uc.RemoveItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, view, "")
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.uc.Clear(c.Request().Context()); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "")
}
