package entity

import "encoding/json"

// CheckoutState models the linear checkout state machine. Recoverable
// failures return to IDLE with the idempotency key preserved; FAILED is
// terminal for the current attempt sequence.
type CheckoutState string

const (
	// CheckoutIdle means no checkout step is in flight; submission is allowed.
	CheckoutIdle CheckoutState = "IDLE"
	// CheckoutIntentCreated means the backend order and payment intent exist.
	CheckoutIntentCreated CheckoutState = "INTENT_CREATED"
	// CheckoutAwaitingPayment means the external capture capability holds the flow.
	CheckoutAwaitingPayment CheckoutState = "AWAITING_PAYMENT_CONFIRMATION"
	// CheckoutSettling means payment captured, awaiting backend settlement confirmation.
	CheckoutSettling CheckoutState = "SETTLING"
	// CheckoutComplete means settlement is confirmed.
	CheckoutComplete CheckoutState = "COMPLETE"
	// CheckoutFailed is the terminal non-recoverable state (e.g. missing cart).
	CheckoutFailed CheckoutState = "FAILED"
)

// Order is the backend's record of a placed order, returned by the
// checkout endpoint.
type Order struct {
	ID         string      `json:"id"`
	Status     string      `json:"status"` // Backend-owned: e.g. PLACED, PICKING, MANIFESTED.
	TotalPrice json.Number `json:"totalPrice"`
}

// PaymentIntent is the backend-initiated payment handle. The client secret
// is handed to the external payment-capture capability and never logged.
type PaymentIntent struct {
	OrderID      string `json:"orderId"`
	IntentID     string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

// SettlementConfirmation is the backend's acknowledgement that payment was
// captured and the order finalized.
type SettlementConfirmation struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}
