package usecase

import (
	"context"

	"partsgate/internal/domain/entity"
)

// CartView is the cart snapshot handed to the UI: the last authoritative
// backend state plus the display phase. OpenDrawer signals the UI to slide
// the cart drawer open after a successful add.
type CartView struct {
	Cart       *entity.Cart     `json:"cart"`
	State      entity.CartState `json:"state"`
	OpenDrawer bool             `json:"openDrawer,omitempty"`
}

// CartUsecase mediates every cart mutation against the backend. The
// snapshot shown to the user is never derived by local arithmetic: each
// mutation is followed by a full re-fetch, so the displayed total always
// equals what the backend will actually charge.
type CartUsecase interface {
	// Refresh fetches the authoritative snapshot, replacing local state
	// entirely.
	Refresh(ctx context.Context) (*CartView, error)

	// AddItem adds quantity (>= 1) of a part. The backend reserves stock as
	// a side effect. Domain rejections (insufficient stock) are returned
	// untouched for the caller to present inline.
	AddItem(ctx context.Context, partID string, quantity int) (*CartView, error)

	// UpdateQuantity sets an item's quantity (>= 1). Lowering to zero is not
	// a supported path; use RemoveItem.
	UpdateQuantity(ctx context.Context, itemID string, quantity int) (*CartView, error)

	// RemoveItem deletes an item, then refreshes.
	RemoveItem(ctx context.Context, itemID string) (*CartView, error)

	// Clear empties the server-side cart. Used after confirmed placement
	// and on logout.
	Clear(ctx context.Context) error

	// Snapshot returns the current view without a backend round trip.
	Snapshot(ctx context.Context) *CartView
}
