package logic

import (
	"storefront/catalog"
	"storefront/kit"
)

// NewCart builds a cart by adding items in order. Repeated products are
// merged and every item is checked against its product's stock.
func NewCart(items ...CartItem) (Cart, error) {
	var cart Cart
	for _, item := range items {
		next, err := cart.AddItem(item.Product, item.Quantity)
		if err != nil {
			return Cart{}, err
		}
		cart = next
	}
	return cart, nil
}

// AddItem increments the quantity of an existing product or appends a new
// item. On error the receiver is returned unchanged.
func (c Cart) AddItem(product catalog.Product, quantity int) (Cart, error) {
	if err := kit.FirstError(
		kit.RequireNotBlank(product.ID, ErrMsgProductIDRequired),
		kit.RequirePositive(quantity, ErrMsgQuantityPositive),
	); err != nil {
		return c, err
	}
	if !product.Available() {
		return c, kit.NewFailedPreconditionf("%s: %s", ErrMsgOutOfStock, product.ID)
	}

	i := c.indexOf(product.ID)
	if i < 0 {
		if err := kit.RequireAtMost(quantity, product.StockQuantity, ErrMsgExceedsStock); err != nil {
			return c, err
		}
		items := make([]CartItem, len(c.items), len(c.items)+1)
		copy(items, c.items)
		return Cart{items: append(items, CartItem{Product: product, Quantity: quantity})}, nil
	}

	existing := c.items[i]
	if err := kit.RequireAtMost(existing.Quantity+quantity, existing.Product.StockQuantity, ErrMsgExceedsStock); err != nil {
		return c, err
	}
	items := c.Items()
	items[i].Quantity += quantity
	return Cart{items: items}, nil
}

// RemoveItem deletes the item for productID. Absent ids are a no-op.
func (c Cart) RemoveItem(productID string) Cart {
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	items := make([]CartItem, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Cart{items: items}
}

// SetQuantity replaces the quantity for productID. A quantity of zero or
// less removes the item; absent ids are a no-op.
func (c Cart) SetQuantity(productID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return c.RemoveItem(productID), nil
	}
	i := c.indexOf(productID)
	if i < 0 {
		return c, nil
	}
	if err := kit.RequireAtMost(quantity, c.items[i].Product.StockQuantity, ErrMsgExceedsStock); err != nil {
		return c, err
	}
	items := c.Items()
	items[i].Quantity = quantity
	return Cart{items: items}, nil
}

// Subtract lowers each line by the quantity ordered for its product and
// drops lines that reach zero. Lines not in ordered are kept as they are.
func (c Cart) Subtract(ordered []CartItem) Cart {
	taken := make(map[string]int, len(ordered))
	for _, item := range ordered {
		taken[item.Product.ID] += item.Quantity
	}
	items := make([]CartItem, 0, len(c.items))
	for _, item := range c.items {
		item.Quantity -= taken[item.Product.ID]
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return Cart{}
	}
	return Cart{items: items}
}

// Clear returns the empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}
