// Package notification implements the user-facing notification sink and the
// navigation recorder. Both are explicit injected services: a toast raised
// before any UI surface has attached is buffered, never silently dropped.
package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"partsgate/internal/domain/entity"
	"partsgate/internal/domain/service"
)

// maxBuffered bounds the toast buffer; the oldest entries are dropped first.
const maxBuffered = 64

// Center buffers toasts until the UI drains them. It implements
// service.Notifier.
type Center struct {
	logger *slog.Logger

	mu     sync.Mutex
	toasts []entity.Notification
}

// NewCenter is the constructor for the notification center.
func NewCenter(logger *slog.Logger) *Center {
	return &Center{logger: logger}
}

// NewNotifier exposes the center under its domain interface for Fx.
func NewNotifier(center *Center) service.Notifier {
	return center
}

// Info buffers an informational toast.
func (c *Center) Info(ctx context.Context, message string) {
	c.push(ctx, entity.SeverityInfo, message)
}

// Success buffers a success toast.
func (c *Center) Success(ctx context.Context, message string) {
	c.push(ctx, entity.SeveritySuccess, message)
}

// Error buffers an error toast.
func (c *Center) Error(ctx context.Context, message string) {
	c.push(ctx, entity.SeverityError, message)
}

// Drain returns and clears all buffered toasts, oldest first.
func (c *Center) Drain() []entity.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	drained := c.toasts
	c.toasts = nil

	return drained
}

func (c *Center) push(ctx context.Context, severity entity.Severity, message string) {
	c.logger.Debug("notification", slog.String("severity", string(severity)), slog.String("message", message))

	c.mu.Lock()
	defer c.mu.Unlock()

	c.toasts = append(c.toasts, entity.Notification{
		Severity: severity,
		Message:  message,
		At:       time.Now(),
	})
	if len(c.toasts) > maxBuffered {
		c.toasts = c.toasts[len(c.toasts)-maxBuffered:]
	}
}
