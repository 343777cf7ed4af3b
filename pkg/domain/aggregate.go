package domain

// Derived aggregates are pure functions of the entity sequence. They are
// recomputed in full after every command; at the expected scale (tens of
// entries) a full O(n) pass beats incremental bookkeeping.

// CartSummary is the cart's derived aggregate.
type CartSummary struct {
	// Total is the sum of unit price times quantity over all lines.
	Total float64
	// Units counts individual items, quantities included.
	Units int
	// Lines counts distinct products in the cart.
	Lines int
}

// SummarizeCart computes the cart aggregate.
func SummarizeCart(lines []CartLine) CartSummary {
	var s CartSummary
	for _, l := range lines {
		s.Total += l.LineTotal()
		s.Units += l.Quantity
	}
	s.Lines = len(lines)
	return s
}

// FavoritesSummary is the favorites collection's derived aggregate.
type FavoritesSummary struct {
	Count int
}

// SummarizeFavorites computes the favorites aggregate.
func SummarizeFavorites(entries []FavoriteEntry) FavoritesSummary {
	return FavoritesSummary{Count: len(entries)}
}

// ContainsFavorite reports whether the given product id is saved.
func ContainsFavorite(entries []FavoriteEntry, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// AddressSummary is the address book's derived aggregate.
type AddressSummary struct {
	// Default points at a copy of the default address, nil when the book is
	// empty or no entry carries the flag.
	Default *Address
}

// SummarizeAddresses computes the address-book aggregate.
func SummarizeAddresses(addrs []Address) AddressSummary {
	for _, a := range addrs {
		if a.IsDefault {
			def := a
			return AddressSummary{Default: &def}
		}
	}
	return AddressSummary{}
}
