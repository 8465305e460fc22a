package entity

import "time"

// Severity is the display class of a user notification.
type Severity string

const (
	// SeverityInfo is a neutral informational toast.
	SeverityInfo Severity = "info"
	// SeveritySuccess confirms a completed action.
	SeveritySuccess Severity = "success"
	// SeverityError reports a failed action.
	SeverityError Severity = "error"
)

// Notification is a fire-and-forget toast destined for the UI surface.
type Notification struct {
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	At       time.Time `json:"at"`
}

// NavigationTarget is a full-surface redirect instruction for the UI.
type NavigationTarget string

const (
	// NavigateLogin sends the user to the login surface.
	NavigateLogin NavigationTarget = "login"
	// NavigateLoginExpired is the login surface with the expired-session marker,
	// so it can show a distinct message.
	NavigateLoginExpired NavigationTarget = "login?expired=1"
	// NavigateStorefront is the customer-facing catalog.
	NavigateStorefront NavigationTarget = "storefront"
	// NavigateOperationsDesk is the clerk console.
	NavigateOperationsDesk NavigationTarget = "operations"
	// NavigateAdminConsole is the admin console.
	NavigateAdminConsole NavigationTarget = "admin"
	// NavigateOrderConfirmation is the post-checkout confirmation surface.
	// The order ID is carried separately.
	NavigateOrderConfirmation NavigationTarget = "order-confirmation"
)
