package domain

// OrderTotals is the checkout price breakdown derived from a cart summary.
type OrderTotals struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grand_total"`
}

// PricingPolicy converts a cart summary into order totals. Shipping and tax
// are business rules owned by checkout, not invariants of the store, so the
// policy is injected by the caller.
type PricingPolicy func(CartSummary) OrderTotals

// DefaultPricing charges neither shipping nor tax.
func DefaultPricing(s CartSummary) OrderTotals {
	return OrderTotals{Subtotal: s.Total, GrandTotal: s.Total}
}
