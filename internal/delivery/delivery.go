// Package delivery defines the contract every transport surface of the
// gateway fulfills.
package delivery

import "context"

// Delivery is a long-running transport surface, e.g. the local HTTP API.
type Delivery interface {
	// Serve blocks until the surface stops or fails.
	Serve(ctx context.Context) error
}
