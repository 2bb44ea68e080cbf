// Package pricing derives shipping, tax, and order totals from a cart subtotal.
//
// Every view that shows money (cart page, dropdown summary, checkout
// review) calls Compute with the same Policy so the numbers agree.
package pricing

// Policy holds the pricing constants applied to every cart.
type Policy struct {
	// FreeShippingOver is the subtotal that must be strictly exceeded for free shipping.
	FreeShippingOver Cents
	// FlatShipping is charged when the subtotal does not exceed FreeShippingOver.
	FlatShipping Cents
	// TaxBasisPoints is the flat tax rate in hundredths of a percent (800 = 8%).
	TaxBasisPoints int64
}

// DefaultPolicy is the storefront's canonical pricing: free shipping over
// $50.00, otherwise $9.99, and a flat 8% tax.
var DefaultPolicy = Policy{
	FreeShippingOver: 5000,
	FlatShipping:     999,
	TaxBasisPoints:   800,
}

// Totals is the full monetary breakdown of a cart.
type Totals struct {
	Subtotal Cents `json:"subtotal"`
	Shipping Cents `json:"shipping"`
	Tax      Cents `json:"tax"`
	Total    Cents `json:"total"`
}

// FreeShipping reports whether shipping was waived.
func (t Totals) FreeShipping() bool {
	return t.Shipping == 0
}

// Compute applies DefaultPolicy to a subtotal.
func Compute(subtotal Cents) Totals {
	return DefaultPolicy.Compute(subtotal)
}

// Compute derives shipping, tax, and total from a subtotal.
func (p Policy) Compute(subtotal Cents) Totals {
	t := Totals{
		Subtotal: subtotal,
		Shipping: p.Shipping(subtotal),
		Tax:      p.Tax(subtotal),
	}
	t.Total = t.Subtotal + t.Shipping + t.Tax
	return t
}

// Tax returns the tax on a subtotal, rounded half up to the nearest cent.
func (p Policy) Tax(subtotal Cents) Cents {
	if subtotal <= 0 {
		return 0
	}
	return Cents((int64(subtotal)*p.TaxBasisPoints + 5000) / 10000)
}

// Shipping returns the shipping charge for a subtotal.
func (p Policy) Shipping(subtotal Cents) Cents {
	if subtotal > p.FreeShippingOver {
		return 0
	}
	return p.FlatShipping
}

// RemainingForFreeShipping returns how much more must be added to the cart
// before shipping becomes free. Zero once the threshold is passed.
func (p Policy) RemainingForFreeShipping(subtotal Cents) Cents {
	if subtotal > p.FreeShippingOver {
		return 0
	}
	return p.FreeShippingOver - subtotal + 1
}
