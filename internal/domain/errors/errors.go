// Package errors defines the classified application errors produced by the
// transport bridge and interpreted by the services and the delivery layer.
package errors

import (
	"net/http"

	"partsgate/internal/errors"
)

// Class is the handling category of a backend or infrastructure failure.
// Classification decides notification, retry and credential policy; it is
// performed once, in the transport bridge.
type Class string

const (
	// ClassAuthExpired is a 401 that may be cured by a silent refresh-and-retry.
	ClassAuthExpired Class = "auth_expired"
	// ClassSessionRevoked means credentials are no longer honored: 401 on the
	// identity check, 401 after a retry, or a failed refresh. Credentials are
	// cleared and the user re-authenticates.
	ClassSessionRevoked Class = "session_revoked"
	// ClassAccessDenied is a 403 outside the identity check: the session is
	// valid but the action is not permitted. No retry.
	ClassAccessDenied Class = "access_denied"
	// ClassDomainValidation is a 400-level business rejection (insufficient
	// stock, invalid quantity). Passed through untouched for inline handling;
	// the bridge never raises its generic notification for this class.
	ClassDomainValidation Class = "domain_validation"
	// ClassTransient covers network failures, 5xx and malformed responses.
	// Credentials are retained: a flaky network must not log the user out.
	ClassTransient Class = "transient"
	// ClassPayment is a payment-provider failure, surfaced with the provider's
	// own message. Recoverable: the checkout returns to IDLE.
	ClassPayment Class = "payment"
)

// AppError is the interface the delivery layer uses to translate classified
// failures into responses.
type AppError interface {
	error
	HTTPCode() int  // HTTP status code for the gateway response.
	Class() Class   // Handling category.
	Message() string // User-facing message.
}

// APIError is a classified failure from the marketplace backend or the
// transport below it.
type APIError struct {
	status  int    // Backend status code, 0 for network-level failures.
	class   Class
	code    string // Backend business code when supplied, e.g. "INSUFFICIENT_STOCK".
	message string
}

// NewAPIError builds a classified error.
func NewAPIError(status int, class Class, code, message string) *APIError {
	return &APIError{status: status, class: class, code: code, message: message}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.message
}

// HTTPCode returns the status the gateway should respond with. Network-level
// failures map to 502: the backend was unreachable, not the gateway broken.
func (e *APIError) HTTPCode() int {
	if e.status == 0 {
		return http.StatusBadGateway
	}

	return e.status
}

// Class returns the handling category.
func (e *APIError) Class() Class {
	return e.class
}

// Code returns the backend business error code, if any.
func (e *APIError) Code() string {
	return e.code
}

// Message returns the user-facing message.
func (e *APIError) Message() string {
	return e.message
}

// WrapMessage wraps the error with additional context message.
func (e *APIError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// ClassOf extracts the handling class from an error tree, or ClassTransient
// when the error carries no classification.
func ClassOf(err error) Class {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class()
	}

	return ClassTransient
}

// Predefined gateway-side errors. These are raised before any request
// reaches the backend.
var (
	// ErrNotAuthenticated is returned when an operation requires a session.
	ErrNotAuthenticated = NewAPIError(
		http.StatusUnauthorized,
		ClassSessionRevoked,
		"NOT_AUTHENTICATED",
		"no active session",
	)

	// ErrInvalidQuantity is returned for cart quantities below one. Removal is
	// the only way to take an item to zero.
	ErrInvalidQuantity = NewAPIError(
		http.StatusBadRequest,
		ClassDomainValidation,
		"INVALID_QUANTITY",
		"quantity must be at least 1",
	)

	// ErrEmptyCart is returned when checkout is attempted with no items.
	ErrEmptyCart = NewAPIError(
		http.StatusConflict,
		ClassDomainValidation,
		"EMPTY_CART",
		"cart is empty",
	)

	// ErrCheckoutInFlight rejects concurrent submission while a payment or
	// settlement step is pending.
	ErrCheckoutInFlight = NewAPIError(
		http.StatusConflict,
		ClassDomainValidation,
		"CHECKOUT_IN_FLIGHT",
		"a checkout attempt is already in progress",
	)

	// ErrUnknownRole is returned when the backend reports a role outside the
	// three enumerated values.
	ErrUnknownRole = NewAPIError(
		http.StatusUnauthorized,
		ClassSessionRevoked,
		"UNKNOWN_ROLE",
		"backend reported an unrecognized role",
	)

	// ErrMFARequired signals that login needs a second factor before a
	// session can be established.
	ErrMFARequired = NewAPIError(
		http.StatusUnauthorized,
		ClassDomainValidation,
		"MFA_REQUIRED",
		"second factor verification required",
	)
)
