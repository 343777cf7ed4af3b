// Package domain defines the entity types, the command set, and the generic
// reducer engine behind cartcore's client-side collection stores (cart,
// favorites, address book), together with their invariant policies and
// derived-aggregate functions.
package domain

// CollectionKind identifies one of the logical collections owned by a session.
type CollectionKind string

// Supported collection identifiers used in metrics labels and storage keys.
const (
	// CollectionCart identifies the shopping-cart collection.
	CollectionCart CollectionKind = "cart"
	// CollectionFavorites identifies the saved-products collection.
	CollectionFavorites CollectionKind = "favorites"
	// CollectionAddresses identifies the shipping-address book.
	CollectionAddresses CollectionKind = "addresses"
)

// Action identifies the kind of mutation recorded in a Change.
type Action string

// Mutation kinds surfaced to invariant policies.
const (
	// ActionHydrate replaces the collection wholesale from persisted data.
	ActionHydrate Action = "hydrate"
	// ActionAdd inserts or merges an entity.
	ActionAdd Action = "add"
	// ActionUpdate mutates a single existing entity.
	ActionUpdate Action = "update"
	// ActionRemove filters an entity out of the collection.
	ActionRemove Action = "remove"
	// ActionClear resets the collection to empty.
	ActionClear Action = "clear"
)

// Change records a single mutation for policy evaluation. ID is empty for
// collection-wide actions (hydrate, clear).
type Change struct {
	Action Action
	ID     string
}

// Entity is implemented by every record stored in a collection. IDs are
// unique within a collection; uniqueness across collections is not assumed.
type Entity interface {
	EntityID() string
}

// CartLine is a quantity-bearing line item in the shopping cart. Quantity is
// always at least one; a removal is an explicit command, never a side effect
// of a quantity update. JSON tags match the persisted payload produced by
// earlier client versions so existing durable data hydrates cleanly.
type CartLine struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"image,omitempty"`
}

// EntityID returns the line's product id.
func (l CartLine) EntityID() string { return l.ID }

// LineTotal returns unit price times quantity for this line.
func (l CartLine) LineTotal() float64 { return l.UnitPrice * float64(l.Quantity) }

// FavoriteEntry is a saved product. The favorites collection has set
// semantics: at most one entry per id.
type FavoriteEntry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	ImageRef string   `json:"image,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
}

// EntityID returns the entry's product id.
func (f FavoriteEntry) EntityID() string { return f.ID }

// Address is a shipping-address book entry. At most one entry in the
// collection carries IsDefault; the address policy enforces this at write
// time and promotes the first remaining entry when the default is removed.
type Address struct {
	ID            string `json:"id"`
	RecipientName string `json:"name"`
	Phone         string `json:"phone"`
	Line          string `json:"address"`
	Province      string `json:"province,omitempty"`
	District      string `json:"district,omitempty"`
	Commune       string `json:"commune,omitempty"`
	PostalCode    string `json:"zipCode,omitempty"`
	IsDefault     bool   `json:"isDefault"`
}

// EntityID returns the address id.
func (a Address) EntityID() string { return a.ID }
