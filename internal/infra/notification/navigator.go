package notification

import (
	"context"
	"log/slog"
	"sync"

	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/service"
)

// Recorder holds the latest full-surface redirect instruction until the UI
// consumes it. It implements service.Navigator. Only the most recent target
// is kept: a redirect supersedes any earlier one the UI has not acted on.
type Recorder struct {
	logger *slog.Logger

	mu      sync.Mutex
	target  entity.NavigationTarget
	orderID string
	pending bool
}

// NewRecorder is the constructor for the navigation recorder.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// NewNavigator exposes the recorder under its domain interface for Fx.
func NewNavigator(recorder *Recorder) service.Navigator {
	return recorder
}

// ToLogin routes to the login surface, with the expired marker when the
// session was closed underneath the user.
func (r *Recorder) ToLogin(ctx context.Context, expired bool) {
	if expired {
		r.set(entity.NavigateLoginExpired, "")

		return
	}
	r.set(entity.NavigateLogin, "")
}

// ToRoleHome routes to the landing surface for a role.
func (r *Recorder) ToRoleHome(ctx context.Context, role entity.Role) {
	switch role {
	case entity.RoleAdmin:
		r.set(entity.NavigateAdminConsole, "")
	case entity.RoleClerk:
		r.set(entity.NavigateOperationsDesk, "")
	default:
		r.set(entity.NavigateStorefront, "")
	}
}

// ToOrderConfirmation routes to the confirmation surface for an order.
func (r *Recorder) ToOrderConfirmation(ctx context.Context, orderID string) {
	r.set(entity.NavigateOrderConfirmation, orderID)
}

// ToStorefront routes back to the catalog.
func (r *Recorder) ToStorefront(ctx context.Context) {
	r.set(entity.NavigateStorefront, "")
}

// Consume returns the pending redirect, if any, and clears it.
func (r *Recorder) Consume() (target entity.NavigationTarget, orderID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.pending {
		return "", "", false
	}
	r.pending = false

	return r.target, r.orderID, true
}

func (r *Recorder) set(target entity.NavigationTarget, orderID string) {
	r.logger.Debug("navigation", slog.String("target", string(target)))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.target = target
	r.orderID = orderID
	r.pending = true
}
