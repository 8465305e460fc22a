// Package service defines interfaces for domain services whose concrete
// implementations live in the infrastructure layer.
package service

import (
	"context"

	"partsgate/internal/domain/entity"
)

// Notifier is the fire-and-forget user notification sink. It is injected
// at construction time into every component that needs to notify, so a
// notification raised before any UI is attached is buffered rather than
// silently dropped.
type Notifier interface {
	Info(ctx context.Context, message string)
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// Navigator is the full-surface redirect sink. Redirects are instructions
// to the UI collaborator, not HTTP redirects of the gateway itself.
type Navigator interface {
	// ToLogin routes to the login surface; expired selects the distinct
	// expired-session message.
	ToLogin(ctx context.Context, expired bool)

	// ToRoleHome routes to the landing surface for an authenticated role.
	ToRoleHome(ctx context.Context, role entity.Role)

	// ToOrderConfirmation routes to the post-checkout confirmation surface.
	ToOrderConfirmation(ctx context.Context, orderID string)

	// ToStorefront routes away from checkout when its preconditions fail.
	ToStorefront(ctx context.Context)
}
