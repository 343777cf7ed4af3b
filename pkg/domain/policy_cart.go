package domain

// NewCartPolicy returns the cart invariant policy: re-adding an existing
// product increments its quantity in place, and stored quantities never fall
// below one.
func NewCartPolicy() Policy[CartLine] {
	return cartPolicy{}
}

type cartPolicy struct{}

func (cartPolicy) Name() string { return "cart_quantity_floor" }

// Merge increments the existing line by one unit. The incoming quantity is
// intentionally ignored and the line keeps its position in the collection.
func (cartPolicy) Merge(existing, _ CartLine) (CartLine, bool) {
	existing.Quantity++
	return existing, true
}

// Normalize clamps every quantity to the floor of one. A quantity update that
// would drive a line to zero keeps the line at one; removal is a separate
// explicit command.
func (cartPolicy) Normalize(lines []CartLine, _ []Change) []CartLine {
	for i := range lines {
		if lines[i].Quantity < 1 {
			lines[i].Quantity = 1
		}
	}
	return lines
}
