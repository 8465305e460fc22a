package service

import "context"

// PaymentResult is the outcome of an external payment capture.
type PaymentResult struct {
	IntentID string // Provider-side payment intent identifier.
	Status   string // Provider-reported status, e.g. "succeeded".
}

// PaymentProvider is the opaque external payment-capture capability. The
// gateway hands it the backend-issued client secret together with the
// payment method token collected by the UI; everything between those two
// values and the capture result is outside this system's control.
type PaymentProvider interface {
	Confirm(ctx context.Context, clientSecret, paymentMethod string) (PaymentResult, error)
}
