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

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// cartService implements the CartUsecase interface. Every mutation is
// fire-and-refresh: the mutation endpoint is called, then the full cart is
// re-fetched so the view never carries a locally computed total.
type cartService struct {
	bridge   *api.Client
	notifier service.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	state    entity.CartState
	lastGood *entity.Cart
}

// CartServiceParams holds dependencies for cartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	Bridge   *api.Client
	Notifier service.Notifier
	Logger   *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	return &cartService{
		bridge:   params.Bridge,
		notifier: params.Notifier,
		logger:   params.Logger,
		state:    entity.CartEmpty,
	}
}

type addItemRequest struct {
	PartID   string `json:"partId"`
	Quantity int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// Refresh fetches the authoritative snapshot.
func (srv *cartService) Refresh(ctx context.Context) (*usecase.CartView, error) {
	resp, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodGet,
		Path:   "cart",
	})
	if err != nil {
		srv.logger.Info("cart refresh failed", slog.Any("error", err))

		return srv.errored(), errors.Wrap(err, "refresh cart")
	}

	var cart entity.Cart
	if err := resp.Decode(&cart); err != nil {
		return srv.errored(), errors.Wrap(err, "decode cart")
	}

	return srv.loaded(&cart), nil
}

// AddItem adds a part and re-fetches. The backend reserves stock as a side
// effect, so a domain rejection leaves the snapshot untouched.
func (srv *cartService) AddItem(ctx context.Context, partID string, quantity int) (*usecase.CartView, error) {
	if quantity < 1 {
		return srv.Snapshot(ctx), errors.WithStack(domainerrors.ErrInvalidQuantity)
	}

	srv.beginMutation()

	_, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPost,
		Path:   "cart/items",
		Body:   addItemRequest{PartID: partID, Quantity: quantity},
	})
	if err != nil {
		srv.logger.Info("add item rejected",
			slog.String("partID", partID),
			slog.Int("quantity", quantity),
			slog.Any("error", err))

		return srv.settle(), errors.Wrap(err, "add item")
	}

	view, err := srv.Refresh(ctx)
	if err != nil {
		return view, err
	}

	srv.notifier.Success(ctx, "added to cart")
	view.OpenDrawer = true

	return view, nil
}

// UpdateQuantity sets an item's quantity. Quantities below one are rejected
// locally; removal is the only path to zero.
func (srv *cartService) UpdateQuantity(ctx context.Context, itemID string, quantity int) (*usecase.CartView, error) {
	if quantity < 1 {
		return srv.Snapshot(ctx), errors.WithStack(domainerrors.ErrInvalidQuantity)
	}

	srv.beginMutation()

	_, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodPut,
		Path:   "cart/items/" + itemID,
		Body:   updateQuantityRequest{Quantity: quantity},
	})
	if err != nil {
		srv.logger.Info("quantity update rejected",
			slog.String("itemID", itemID),
			slog.Int("quantity", quantity),
			slog.Any("error", err))

		return srv.settle(), errors.Wrap(err, "update quantity")
	}

	return srv.Refresh(ctx)
}

// RemoveItem deletes an item and re-fetches. Unlike other mutations the
// failure raises an explicit notification: a row the user believes gone but
// the backend still holds would silently resurface at checkout.
func (srv *cartService) RemoveItem(ctx context.Context, itemID string) (*usecase.CartView, error) {
	srv.beginMutation()

	_, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodDelete,
		Path:   "cart/items/" + itemID,
	})
	if err != nil {
		srv.notifier.Error(ctx, "could not remove item, please try again")
		srv.logger.Info("remove item failed", slog.String("itemID", itemID), slog.Any("error", err))

		return srv.settle(), errors.Wrap(err, "remove item")
	}

	return srv.Refresh(ctx)
}

// Clear empties the server-side cart.
func (srv *cartService) Clear(ctx context.Context) error {
	if _, err := srv.bridge.Do(ctx, &api.Request{
		Method: http.MethodDelete,
		Path:   "cart",
	}); err != nil {
		return errors.Wrap(err, "clear cart")
	}

	srv.mu.Lock()
	srv.state = entity.CartEmpty
	srv.lastGood = nil
	srv.mu.Unlock()

	return nil
}

// Snapshot returns the current view without a backend round trip.
func (srv *cartService) Snapshot(_ context.Context) *usecase.CartView {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	return &usecase.CartView{Cart: srv.lastGood, State: srv.state}
}

func (srv *cartService) beginMutation() {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.state = entity.CartMutating
}

// loaded records a fresh snapshot and derives the display state from it.
func (srv *cartService) loaded(cart *entity.Cart) *usecase.CartView {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.lastGood = cart
	if cart.IsEmpty() {
		srv.state = entity.CartEmpty
	} else {
		srv.state = entity.CartLoaded
	}

	return &usecase.CartView{Cart: srv.lastGood, State: srv.state}
}

// errored keeps the last good snapshot on display alongside the error state.
func (srv *cartService) errored() *usecase.CartView {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	srv.state = entity.CartErrored

	return &usecase.CartView{Cart: srv.lastGood, State: srv.state}
}

// settle returns the view after a failed mutation: the snapshot is the one
// from before the mutation, the state reflects what is actually known.
func (srv *cartService) settle() *usecase.CartView {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	switch {
	case srv.lastGood == nil || srv.lastGood.IsEmpty():
		srv.state = entity.CartEmpty
	default:
		srv.state = entity.CartLoaded
	}

	return &usecase.CartView{Cart: srv.lastGood, State: srv.state}
}
