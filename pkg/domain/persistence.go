package domain

import "context"

// Storage keys are fixed per logical collection and never shared. The
// address key predates this module and is kept for durable-data
// compatibility with earlier clients.
const (
	// StorageKeyCart is the durable key holding the serialized cart.
	StorageKeyCart = "cart"
	// StorageKeyFavorites is the durable key holding saved products.
	StorageKeyFavorites = "favorites"
	// StorageKeyAddresses is the durable key holding the address book.
	StorageKeyAddresses = "shippingAddresses"
)

// DurableStore is the asynchronous key/value persistence collaborator.
// Values are JSON arrays of entity objects; a missing key means the empty
// collection. Implementations must be safe for concurrent use.
type DurableStore interface {
	// Get returns the value stored under key, reporting presence separately
	// from failure.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
