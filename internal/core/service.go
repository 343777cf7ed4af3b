// Package core wires the reducer engines to durable storage and exposes the
// typed operations the shopping UI calls. One Service owns the cart, the
// favorites list, and the address book.
package core

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/rs/zerolog"

	"cartcore/pkg/domain"
)

// Service is the store facade over the three persistent collections.
type Service struct {
	cart      *collection[domain.CartLine, domain.CartSummary]
	favorites *collection[domain.FavoriteEntry, domain.FavoritesSummary]
	addresses *collection[domain.Address, domain.AddressSummary]
	pricing   domain.PricingPolicy
	log       zerolog.Logger
}

// Option customizes Service construction.
type Option func(*options)

type options struct {
	log     zerolog.Logger
	metrics MetricsRecorder
	pricing domain.PricingPolicy
}

// WithLogger sets the structured logger. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMetrics sets the metrics recorder. Defaults to NopMetricsRecorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) { o.metrics = m }
}

// WithPricing sets the checkout pricing policy. Defaults to
// domain.DefaultPricing.
func WithPricing(p domain.PricingPolicy) Option {
	return func(o *options) { o.pricing = p }
}

// NewService constructs a service over the supplied durable store and starts
// hydrating all three collections in the background.
func NewService(store domain.DurableStore, opts ...Option) *Service {
	o := options{
		log:     zerolog.Nop(),
		metrics: NopMetricsRecorder{},
		pricing: domain.DefaultPricing,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		cart: newCollection(domain.StorageKeyCart,
			domain.NewEngine[domain.CartLine, domain.CartSummary](domain.NewCartPolicy(), domain.SummarizeCart),
			store, o.log, o.metrics),
		favorites: newCollection(domain.StorageKeyFavorites,
			domain.NewEngine[domain.FavoriteEntry, domain.FavoritesSummary](domain.NewFavoritesPolicy(), domain.SummarizeFavorites),
			store, o.log, o.metrics),
		addresses: newCollection(domain.StorageKeyAddresses,
			domain.NewEngine[domain.Address, domain.AddressSummary](domain.NewAddressPolicy(), domain.SummarizeAddresses),
			store, o.log, o.metrics),
		pricing: o.pricing,
		log:     o.log,
	}
}

// AwaitHydration blocks until all three collections loaded their persisted
// snapshots, or until ctx ends. Operations issued before hydration completes
// are valid but will be replaced by the hydrated snapshot.
func (s *Service) AwaitHydration(ctx context.Context) error {
	if err := s.cart.awaitHydration(ctx); err != nil {
		return err
	}
	if err := s.favorites.awaitHydration(ctx); err != nil {
		return err
	}
	return s.addresses.awaitHydration(ctx)
}

// Flush blocks until every pending snapshot write reached the store, or until
// ctx ends. Call before process shutdown.
func (s *Service) Flush(ctx context.Context) error {
	if err := s.cart.flush(ctx); err != nil {
		return err
	}
	if err := s.favorites.flush(ctx); err != nil {
		return err
	}
	return s.addresses.flush(ctx)
}

// Close drains the write queues and stops their workers.
func (s *Service) Close() {
	s.cart.close()
	s.favorites.close()
	s.addresses.close()
}

// Cart operations.

// AddToCart adds a product line. Re-adding a product already in the cart
// increments its quantity in place.
func (s *Service) AddToCart(ctx context.Context, line domain.CartLine) {
	s.cart.dispatch(ctx, "cart.add", domain.Add[domain.CartLine]{Entity: line})
}

// UpdateQuantity sets the quantity of an existing line. Values below one are
// clamped to one; unknown ids are ignored.
func (s *Service) UpdateQuantity(ctx context.Context, id string, quantity int) {
	s.cart.dispatch(ctx, "cart.update_quantity", domain.Update[domain.CartLine]{
		ID:     id,
		Mutate: func(l *domain.CartLine) { l.Quantity = quantity },
	})
}

// RemoveFromCart deletes a line. Unknown ids are ignored.
func (s *Service) RemoveFromCart(ctx context.Context, id string) {
	s.cart.dispatch(ctx, "cart.remove", domain.Remove[domain.CartLine]{ID: id})
}

// ClearCart empties the cart.
func (s *Service) ClearCart(ctx context.Context) {
	s.cart.dispatch(ctx, "cart.clear", domain.Clear[domain.CartLine]{})
}

// Cart returns the current cart state.
func (s *Service) Cart() domain.State[domain.CartLine, domain.CartSummary] {
	return s.cart.snapshot()
}

// CartTotals prices the current cart with the configured pricing policy.
func (s *Service) CartTotals() domain.OrderTotals {
	return s.pricing(s.cart.snapshot().Derived)
}

// Favorites operations.

// AddFavorite marks a product as favorite. Adding an existing favorite is a
// no-op.
func (s *Service) AddFavorite(ctx context.Context, entry domain.FavoriteEntry) {
	s.favorites.dispatch(ctx, "favorites.add", domain.Add[domain.FavoriteEntry]{Entity: entry})
}

// RemoveFavorite unmarks a product. Unknown ids are ignored.
func (s *Service) RemoveFavorite(ctx context.Context, id string) {
	s.favorites.dispatch(ctx, "favorites.remove", domain.Remove[domain.FavoriteEntry]{ID: id})
}

// ClearFavorites empties the favorites list.
func (s *Service) ClearFavorites(ctx context.Context) {
	s.favorites.dispatch(ctx, "favorites.clear", domain.Clear[domain.FavoriteEntry]{})
}

// IsFavorite reports whether the product is currently favorited.
func (s *Service) IsFavorite(id string) bool {
	return domain.ContainsFavorite(s.favorites.snapshot().Entities, id)
}

// Favorites returns the current favorites state.
func (s *Service) Favorites() domain.State[domain.FavoriteEntry, domain.FavoritesSummary] {
	return s.favorites.snapshot()
}

// Address book operations.

// SaveAddress inserts or overwrites an address and returns its id. A missing
// id gets a generated one. Saving an address flagged as default demotes every
// other address.
func (s *Service) SaveAddress(ctx context.Context, addr domain.Address) string {
	if addr.ID == "" {
		addr.ID = newID()
	}
	s.addresses.dispatch(ctx, "addresses.save", domain.Add[domain.Address]{Entity: addr})
	return addr.ID
}

// UpdateAddress mutates an existing address in place. Unknown ids are
// ignored.
func (s *Service) UpdateAddress(ctx context.Context, id string, mutate func(*domain.Address)) {
	s.addresses.dispatch(ctx, "addresses.update", domain.Update[domain.Address]{ID: id, Mutate: mutate})
}

// RemoveAddress deletes an address. Removing the default promotes the first
// remaining address to default.
func (s *Service) RemoveAddress(ctx context.Context, id string) {
	s.addresses.dispatch(ctx, "addresses.remove", domain.Remove[domain.Address]{ID: id})
}

// SetDefaultAddress flags one address as the default shipping target and
// demotes the others.
func (s *Service) SetDefaultAddress(ctx context.Context, id string) {
	s.addresses.dispatch(ctx, "addresses.set_default", domain.Update[domain.Address]{
		ID:     id,
		Mutate: func(a *domain.Address) { a.IsDefault = true },
	})
}

// Addresses returns the current address book state.
func (s *Service) Addresses() domain.State[domain.Address, domain.AddressSummary] {
	return s.addresses.snapshot()
}

// DefaultAddress returns the default shipping address, if the book is
// non-empty.
func (s *Service) DefaultAddress() (domain.Address, bool) {
	d := s.addresses.snapshot().Derived.Default
	if d == nil {
		return domain.Address{}, false
	}
	return *d, true
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("%x", b[:])
}
