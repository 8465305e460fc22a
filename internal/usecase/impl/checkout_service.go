package impl

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"partsgate/internal/domain/entity"
	domainerrors "partsgate/internal/domain/errors"
	"partsgate/internal/domain/service"
	"partsgate/internal/infra/api"
	"partsgate/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// checkoutService implements the CheckoutUsecase interface. One submission
// runs the full order → payment → settlement sequence; the idempotency key
// scoped to the cart guarantees that retried submissions resolve to the
// same backend payment intent.
type checkoutService struct {
	bridge    *api.Client
	cart      usecase.CartUsecase
	keys      usecase.IdempotencyUsecase
	provider  service.PaymentProvider
	qrcode    service.QRCodeService
	notifier  service.Notifier
	navigator service.Navigator
	validate  *validator.Validate
	logger    *slog.Logger

	mu    sync.Mutex
	state entity.CheckoutState
}

// CheckoutServiceParams holds dependencies for checkoutService, injected by Fx.
type CheckoutServiceParams struct {
	fx.In

	Bridge    *api.Client
	Cart      usecase.CartUsecase
	Keys      usecase.IdempotencyUsecase
	Provider  service.PaymentProvider
	QRCode    service.QRCodeService
	Notifier  service.Notifier
	Navigator service.Navigator
	Logger    *slog.Logger
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(params CheckoutServiceParams) usecase.CheckoutUsecase {
	return &checkoutService{
		bridge:    params.Bridge,
		cart:      params.Cart,
		keys:      params.Keys,
		provider:  params.Provider,
		qrcode:    params.QRCode,
		notifier:  params.Notifier,
		navigator: params.Navigator,
		validate:  validator.New(),
		logger:    params.Logger,
		state:     entity.CheckoutIdle,
	}
}

type checkoutResponse struct {
	Order entity.Order `json:"order"`
}

type confirmSettlementRequest struct {
	OrderID  string `json:"orderId"`
	IntentID string `json:"paymentIntentId"`
}

// Submit runs one checkout attempt end to end.
func (srv *checkoutService) Submit(ctx context.Context, input *usecase.CheckoutInput) (*usecase.CheckoutOutput, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, domainerrors.NewAPIError(
			http.StatusBadRequest,
			domainerrors.ClassDomainValidation,
			"INVALID_INPUT",
			"payment method is required",
		).WrapMessage(err.Error())
	}

	if !srv.begin() {
		return nil, errors.WithStack(domainerrors.ErrCheckoutInFlight)
	}

	snapshot := srv.cart.Snapshot(ctx)
	if snapshot.Cart == nil || snapshot.Cart.IsEmpty() {
		srv.finish(entity.CheckoutFailed)
		srv.navigator.ToStorefront(ctx)

		return nil, errors.WithStack(domainerrors.ErrEmptyCart)
	}

	// The key is scoped to the cart identity: a fresh cart after a completed
	// order is a new transaction and gets a new key.
	scope := "cart:" + snapshot.Cart.ID

	key, err := srv.keys.Key(ctx, scope)
	if err != nil {
		srv.finish(entity.CheckoutIdle)

		return nil, errors.Wrap(err, "obtain idempotency key")
	}

	order, err := srv.placeOrder(ctx, key.String())
	if err != nil {
		srv.finish(entity.CheckoutIdle)
		srv.logger.Info("order placement failed, key retained", slog.Any("error", err))

		return nil, err
	}
	srv.transition(entity.CheckoutIntentCreated)

	intent, err := srv.initiatePayment(ctx, order.ID)
	if err != nil {
		srv.finish(entity.CheckoutIdle)
		srv.logger.Info("payment initiation failed, key retained",
			slog.String("orderID", order.ID), slog.Any("error", err))

		return nil, err
	}
	srv.transition(entity.CheckoutAwaitingPayment)

	result, err := srv.provider.Confirm(ctx, intent.ClientSecret, input.PaymentMethod)
	if err != nil {
		srv.finish(entity.CheckoutIdle)
		srv.notifier.Error(ctx, srv.declineMessage(err))
		srv.logger.Info("payment confirmation declined",
			slog.String("orderID", order.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "confirm payment")
	}
	srv.transition(entity.CheckoutSettling)

	if err := srv.confirmSettlement(ctx, order.ID, result.IntentID); err != nil {
		// Payment captured but not settled. The retained key makes the retry
		// safe: the backend deduplicates and never settles twice.
		srv.finish(entity.CheckoutIdle)
		srv.logger.Warn("settlement confirmation failed after capture, key retained",
			slog.String("orderID", order.ID), slog.Any("error", err))

		return nil, err
	}

	srv.finish(entity.CheckoutComplete)
	srv.notifier.Success(ctx, "order placed")

	if err := srv.keys.Clear(ctx, scope); err != nil {
		srv.logger.Warn("failed to clear idempotency key", slog.Any("error", err))
	}
	if _, err := srv.cart.Refresh(ctx); err != nil {
		srv.logger.Warn("post-checkout cart refresh failed", slog.Any("error", err))
	}

	srv.navigator.ToOrderConfirmation(ctx, order.ID)
	srv.logger.Info("checkout complete", slog.String("orderID", order.ID))

	return &usecase.CheckoutOutput{Order: order}, nil
}

func (srv *checkoutService) placeOrder(ctx context.Context, key string) (*entity.Order, error) {
	header := http.Header{}
	header.Set("X-Idempotency-Key", key)

	resp, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   "orders/checkout",
		Header: header,
	})
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	var payload checkoutResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode checkout response")
	}

	return &payload.Order, nil
}

func (srv *checkoutService) initiatePayment(ctx context.Context, orderID string) (*entity.PaymentIntent, error) {
	resp, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   "payments/initiate/" + orderID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "initiate payment")
	}

	var intent entity.PaymentIntent
	if err := resp.Decode(&intent); err != nil {
		return nil, errors.Wrap(err, "decode payment intent")
	}

	return &intent, nil
}

func (srv *checkoutService) confirmSettlement(ctx context.Context, orderID, intentID string) error {
	resp, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   "payments/confirm",
		Body:   confirmSettlementRequest{OrderID: orderID, IntentID: intentID},
	})
	if err != nil {
		return errors.Wrap(err, "confirm settlement")
	}

	var confirmation entity.SettlementConfirmation
	if err := resp.Decode(&confirmation); err != nil {
		return errors.Wrap(err, "decode settlement confirmation")
	}

	return nil
}

// declineMessage surfaces the provider's own wording when the failure
// carries one.
func (srv *checkoutService) declineMessage(err error) string {
	var apiErr *domainerrors.APIError
	if errors.As(err, &apiErr) && apiErr.Message() != "" {
		return apiErr.Message()
	}

	return "payment was declined, please try again"
}

// State returns the current checkout machine state.
func (srv *checkoutService) State() entity.CheckoutState {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return srv.state
}

// PickupQR renders the pickup QR code for a confirmed order.
func (srv *checkoutService) PickupQR(_ context.Context, orderID string) ([]byte, error) {
	png, err := srv.qrcode.GeneratePickupQR(orderID)
	if err != nil {
		return nil, errors.Wrap(err, "generate pickup qr")
	}

	return png, nil
}

// begin claims the submission slot; it fails when a previous attempt still
// holds a non-terminal state.
func (srv *checkoutService) begin() bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	switch srv.state {
	case entity.CheckoutIdle, entity.CheckoutComplete, entity.CheckoutFailed:
		srv.state = entity.CheckoutIdle

		return true
	default:
		return false
	}
}

func (srv *checkoutService) transition(state entity.CheckoutState) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.state = state
}

func (srv *checkoutService) finish(state entity.CheckoutState) {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.state = state
}
