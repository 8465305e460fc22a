package entity

import "encoding/json"

// CartState models the cart state machine. MUTATING and ERRORED are
// transient; the displayed snapshot always falls back to the last
// LOADED or EMPTY state.
type CartState string

const (
	// CartEmpty means the authoritative snapshot holds no items.
	CartEmpty CartState = "EMPTY"
	// CartLoaded means a non-empty authoritative snapshot is held.
	CartLoaded CartState = "LOADED"
	// CartMutating means a mutation or refresh is in flight.
	CartMutating CartState = "MUTATING"
	// CartErrored means the last operation failed; the previous snapshot still stands.
	CartErrored CartState = "ERRORED"
)

// Cart is the authoritative view of the in-progress order as last fetched
// from the backend. Totals are carried verbatim as json.Number: the backend
// is the single source of truth for pricing and the client never performs
// price arithmetic.
type Cart struct {
	ID         string      `json:"id"`
	Items      []CartItem  `json:"items"`
	TotalPrice json.Number `json:"totalPrice"`
	ItemCount  int         `json:"itemCount"`
}

// IsEmpty reports whether the cart holds no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// CartItem is a single line of the cart. Quantity is always >= 1; removing
// the item is the only way to reach zero.
type CartItem struct {
	ID       string       `json:"id"`
	PartID   string       `json:"partId"`
	Quantity int          `json:"quantity"`
	Part     PartSnapshot `json:"part"`
}

// PartSnapshot is the denormalized display data for a part, captured by the
// backend when the item was added. It carries no ownership of the part.
type PartSnapshot struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	ImageURL string      `json:"imageUrl"`
}
