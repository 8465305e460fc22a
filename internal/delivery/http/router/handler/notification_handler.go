package handler

import (
	"log/slog"
	"net/http"

	"partsgate/internal/delivery/http/response"
	"partsgate/internal/domain/entity"
	"partsgate/internal/infra/notification"

	"github.com/labstack/echo/v4"
)

// NotificationHandler drains buffered toasts and the pending redirect for
// the UI surface's poll.
type NotificationHandler struct {
	center   *notification.Center
	recorder *notification.Recorder
	logger   *slog.Logger
}

// NewNotificationHandler is the constructor for NotificationHandler,
// injected by Fx.
func NewNotificationHandler(center *notification.Center, recorder *notification.Recorder, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		center:   center,
		recorder: recorder,
		logger:   logger,
	}
}

type navigationPayload struct {
	Target  entity.NavigationTarget `json:"target"`
	OrderID string                  `json:"orderId,omitempty"`
}

// Poll returns and clears everything pending: toasts oldest first, plus the
// latest unconsumed redirect, if any.
func (h *NotificationHandler) Poll(c echo.Context) error {
	payload := map[string]any{
		"toasts": h.center.Drain(),
	}

	if target, orderID, ok := h.recorder.Consume(); ok {
		payload["navigation"] = navigationPayload{Target: target, OrderID: orderID}
	}

	return response.Success(c, http.StatusOK, payload, "")
}
