package usecase

import (
	"context"

	"partsgate/internal/domain/entity"
)

// CheckoutInput carries the UI-collected payment method token into a
// checkout attempt.
type CheckoutInput struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}

// CheckoutOutput is the confirmed order after successful settlement.
type CheckoutOutput struct {
	Order *entity.Order `json:"order"`
}

// CheckoutUsecase sequences payment-intent creation, external payment
// confirmation and server-side settlement, guaranteeing at most one
// successful settlement per cart regardless of retries.
type CheckoutUsecase interface {
	// Submit runs one checkout attempt end to end. Recoverable failures
	// (declined card, transient backend errors) preserve the idempotency
	// key and return the machine to IDLE so a retry resolves to the same
	// backend payment intent. Concurrent submission while a step is
	// pending is rejected.
	Submit(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error)

	// State returns the current checkout machine state.
	State() entity.CheckoutState

	// PickupQR renders the pickup QR code for a confirmed order.
	PickupQR(ctx context.Context, orderID string) ([]byte, error)
}
