// Package router contains routing setup for the local gateway API.
package router

import (
	"partsgate/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RouterParams holds the handlers to register, injected by Fx.
type RouterParams struct {
	fx.In

	SessionHandler      *handler.SessionHandler
	CartHandler         *handler.CartHandler
	CheckoutHandler     *handler.CheckoutHandler
	NotificationHandler *handler.NotificationHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	sessionHandler      *handler.SessionHandler
	cartHandler         *handler.CartHandler
	checkoutHandler     *handler.CheckoutHandler
	notificationHandler *handler.NotificationHandler
}

// NewRouter is the constructor for the Router.
func NewRouter(params RouterParams) *router {
	return &router{
		sessionHandler:      params.SessionHandler,
		cartHandler:         params.CartHandler,
		checkoutHandler:     params.CheckoutHandler,
		notificationHandler: params.NotificationHandler,
	}
}

// RegisterRoutes sets up the routes of the local gateway API. Everything is
// served to the loopback UI surfaces; role enforcement happens at the
// marketplace backend, not here.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	sessionGroup := e.Group("/session")
	{
		sessionGroup.POST("/login", r.sessionHandler.Login)
		sessionGroup.POST("/mfa", r.sessionHandler.VerifyMFA)
		sessionGroup.POST("/logout", r.sessionHandler.Logout)
		sessionGroup.GET("", r.sessionHandler.Current)
	}

	cartGroup := e.Group("/cart")
	{
		cartGroup.GET("", r.cartHandler.Get)
		cartGroup.DELETE("", r.cartHandler.Clear)
		cartGroup.POST("/items", r.cartHandler.AddItem)
		cartGroup.PUT("/items/:id", r.cartHandler.UpdateQuantity)
		cartGroup.DELETE("/items/:id", r.cartHandler.RemoveItem)
	}

	e.POST("/checkout", r.checkoutHandler.Submit)
	e.GET("/checkout", r.checkoutHandler.State)
	e.GET("/orders/:id/pickup-qr", r.checkoutHandler.PickupQR)

	e.GET("/notifications", r.notificationHandler.Poll)
}
